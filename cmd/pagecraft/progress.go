// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pagecraft/internal/session"
)

// newProgress returns a progress callback drawing a percentage bar on
// stderr, and a function that finishes the bar. With --quiet both are
// no-ops.
func newProgress(cmd *cobra.Command, description string) (session.ProgressFunc, func()) {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return nil, func() {}
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	report := func(percent int, message string) {
		bar.Describe(message)
		_ = bar.Set(percent)
	}
	done := func() {
		_ = bar.Finish()
	}
	return report, done
}

// writePlan prints v as YAML.
func writePlan(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return enc.Close()
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
