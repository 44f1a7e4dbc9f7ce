// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package vectorize

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func TestAnalyze(t *testing.T) {
	t.Parallel()

	stop, _ := StopWords("english")
	tests := []struct {
		doc  string
		want []string
	}{
		{"The Dark Knight", []string{"dark", "knight"}},
		{"a b cd", []string{"cd"}},
		{"sci-fi, action!", []string{"sci", "fi", "action"}},
		{"samworthington jamescameron", []string{"samworthington", "jamescameron"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		got := analyze(tt.doc, stop)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("analyze(%q) = %v, want %v", tt.doc, got, tt.want)
		}
	}
}

func TestStopWords(t *testing.T) {
	t.Parallel()

	set, ok := StopWords("english")
	if !ok {
		t.Fatal("english stop words missing")
	}
	if len(set) != 318 {
		t.Errorf("len(english) = %d, want 318", len(set))
	}
	for _, w := range []string{"the", "and", "whereupon", "yourselves"} {
		if _, ok := set[w]; !ok {
			t.Errorf("%q should be a stop word", w)
		}
	}
	if _, ok := StopWords("klingon"); ok {
		t.Error("unknown language should not resolve")
	}
}

func TestFit_MaxFeaturesAndOrder(t *testing.T) {
	t.Parallel()

	docs := []string{
		"space war hero",
		"space alien war",
		"space cooking",
	}
	vocab, err := Fit(docs, Options{MaxFeatures: 3})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	// space=3, war=2, then alien/cooking/hero tie at 1: alien wins alphabetically.
	want := []string{"alien", "space", "war"}
	if !reflect.DeepEqual(vocab.Tokens, want) {
		t.Errorf("Tokens = %v, want %v", vocab.Tokens, want)
	}
}

func TestFit_UnknownStopWords(t *testing.T) {
	t.Parallel()

	_, err := Fit([]string{"x"}, Options{StopWords: "klingon"})
	if !errors.Is(err, ErrUnknownStopWords) {
		t.Fatalf("Fit() error = %v, want ErrUnknownStopWords", err)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	vocab, err := Fit([]string{"space war hero", "space alien war"}, Options{})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	vec := vocab.Encode("war war space unseen the")
	space, _ := vocab.Index("space")
	war, _ := vocab.Index("war")

	wantIdx := []int{space, war}
	wantCnt := []float64{1, 2}
	if space > war {
		wantIdx = []int{war, space}
		wantCnt = []float64{2, 1}
	}
	if !reflect.DeepEqual(vec.Indices, wantIdx) || !reflect.DeepEqual(vec.Counts, wantCnt) {
		t.Errorf("Encode() = %+v, want indices %v counts %v", vec, wantIdx, wantCnt)
	}

	if !vocab.Encode("the and of").IsZero() {
		t.Error("stop-word-only document should encode to a zero vector")
	}
}

func TestVocabulary_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	vocab, err := Fit([]string{"space war hero", "space alien war"}, Options{MaxFeatures: 10})
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	data, err := json.Marshal(vocab)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var restored Vocabulary
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	doc := "hero of the space war"
	if !reflect.DeepEqual(vocab.Encode(doc), restored.Encode(doc)) {
		t.Error("restored vocabulary encodes differently")
	}
}
