// CineMatch - Content-Based Movie Similarity Index
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinematch/internal/artifact"
)

// infoResult describes the persisted build.
type infoResult struct {
	Artifacts   string            `json:"artifacts"`
	Backend     string            `json:"backend"`
	CatalogSize int               `json:"catalog_size"`
	Manifest    artifact.Manifest `json:"manifest"`
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the persisted artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.loadBundle(cmd.Context())
			if err != nil {
				return err
			}
			out := infoResult{
				Artifacts:   a.cfg.Artifacts.Dir,
				Backend:     a.cfg.Artifacts.Backend,
				CatalogSize: len(b.Catalog),
				Manifest:    b.Manifest,
			}
			return a.output(out, func() {
				m := out.Manifest
				a.outputHuman("artifacts:   %s (%s)\n", out.Artifacts, out.Backend)
				a.outputHuman("build id:    %s\n", m.BuildID)
				a.outputHuman("created:     %s\n", m.CreatedAt.Format(time.RFC3339))
				a.outputHuman("items:       %d\n", out.CatalogSize)
				a.outputHuman("vocabulary:  %d terms (max %d, stop words %q)\n", m.VocabularySize, m.MaxFeatures, m.StopWords)
				for _, src := range m.Sources {
					a.outputHuman("source:      %s\n", src)
				}
			})
		},
	}
}
