// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pagecraft/internal/container"
	"github.com/pdiddy/pagecraft/internal/convert"
	"github.com/pdiddy/pagecraft/internal/session"
	"github.com/pdiddy/pagecraft/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE...",
	Short: "Convert Word documents to PDF",
	Long: `Convert turns .docx files into text-only PDFs: headings, list items and
paragraphs are laid out on US Letter pages with simple word wrap. Layout,
images and fonts of the original are not reproduced.

Backends:
  native   read the document XML directly (default)
  pandoc   run pandoc in a docker or podman container

Each file is converted independently; a file that fails is reported and
skipped. The command fails only when no file could be converted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", "", "conversion backend: native or pandoc (default: conversion.backend)")
	convertCmd.Flags().String("out", "", "output directory (default: conversion.output_dir)")
	convertCmd.Flags().Bool("force", false, "overwrite existing PDFs")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend := cfg.Conversion.Backend
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		backend = types.ConversionBackend(b)
	}
	html, err := htmlConverter(backend)
	if err != nil {
		return err
	}

	sess := session.New(cfg.Limits)
	var docs []*types.SourceDocument
	for _, path := range args {
		doc, err := sess.LoadDocument(path, ".docx")
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed:  %s (%v)\n", path, err)
			continue
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: no readable .docx input", types.ErrEmptySelection)
	}

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.Conversion.OutputDir
	}
	force, _ := cmd.Flags().GetBool("force")

	pipeline := convert.NewPipeline(html, convert.FPDFRenderer{}, sess.Busy)
	progress, done := newProgress(cmd, "converting")
	result, err := pipeline.ConvertBatch(context.Background(), docs, outDir, force, progress, os.Stdout)
	done()
	if err != nil {
		return err
	}
	if result.HasFailures() || len(docs) < len(args) {
		return fmt.Errorf("%d of %d file(s) failed conversion", result.Failed+len(args)-len(docs), len(args))
	}
	return nil
}

func htmlConverter(backend types.ConversionBackend) (convert.HTMLConverter, error) {
	switch backend {
	case types.BackendNative:
		return convert.NativeConverter{}, nil
	case types.BackendPandoc:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		pandoc, err := convert.NewPandocConverter(rt)
		if err != nil {
			return nil, err
		}
		return pandoc, nil
	default:
		return nil, fmt.Errorf("%w: unknown conversion backend %q", types.ErrValidation, backend)
	}
}
