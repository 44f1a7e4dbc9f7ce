// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

type queryRequest struct {
	Query string `json:"q" validate:"required,max=20,nocontrol"`
	Limit int    `json:"limit" validate:"min=1,max=100"`
	Lang  string `json:"stop_words" validate:"stopwords"`
}

type nestedConfig struct {
	Server struct {
		Port int    `koanf:"port" validate:"min=1,max=65535"`
		Mode string `koanf:"mode" validate:"oneof=development production"`
	} `koanf:"server"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     queryRequest
		wantField string
		wantTag   string
	}{
		{"valid", queryRequest{Query: "dark", Limit: 10, Lang: "english"}, "", ""},
		{"valid no stop words", queryRequest{Query: "dark", Limit: 1, Lang: "none"}, "", ""},
		{"missing query", queryRequest{Limit: 10, Lang: "english"}, "q", "required"},
		{"query too long", queryRequest{Query: strings.Repeat("x", 21), Limit: 10, Lang: "english"}, "q", "max"},
		{"control character", queryRequest{Query: "dark\x00", Limit: 10, Lang: "english"}, "q", "nocontrol"},
		{"limit zero", queryRequest{Query: "dark", Limit: 0, Lang: "english"}, "limit", "min"},
		{"limit too large", queryRequest{Query: "dark", Limit: 101, Lang: "english"}, "limit", "max"},
		{"unknown stop words", queryRequest{Query: "dark", Limit: 5, Lang: "klingon"}, "stop_words", "stopwords"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field != tt.wantField || errs[0].Tag != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field, errs[0].Tag, tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestValidateStruct_NestedFieldPath(t *testing.T) {
	var cfg nestedConfig
	cfg.Server.Port = 0
	cfg.Server.Mode = "staging"

	err := ValidateStruct(&cfg)
	if err == nil {
		t.Fatal("expected errors")
	}
	fields := map[string]string{}
	for _, e := range err.Errors() {
		fields[e.Field] = e.Message
	}
	if msg := fields["server.port"]; msg != "server.port must be at least 1" {
		t.Errorf("server.port message = %q", msg)
	}
	if msg := fields["server.mode"]; msg != "server.mode must be one of: development production" {
		t.Errorf("server.mode message = %q", msg)
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&queryRequest{Query: "dark", Limit: 0, Lang: "english"})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Message != "limit must be at least 1" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "limit" {
		t.Errorf("Details[field] = %v", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&queryRequest{Limit: 0, Lang: "english"})
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %#v, want two entries", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "q is required; ") || !strings.Contains(apiErr.Message, "; limit must be at least 1") {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	var ve RequestValidationError
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
	if got := ve.ToAPIError(); got.Code != "VALIDATION_ERROR" || got.Message != "Validation failed" {
		t.Errorf("ToAPIError() = %+v", got)
	}
}
