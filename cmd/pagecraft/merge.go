// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pagecraft/internal/cache"
	"github.com/pdiddy/pagecraft/internal/merge"
	"github.com/pdiddy/pagecraft/internal/pagerange"
	"github.com/pdiddy/pagecraft/internal/pdfdoc"
	"github.com/pdiddy/pagecraft/internal/session"
	"github.com/pdiddy/pagecraft/pkg/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge FILE...",
	Short: "Merge PDFs into one document",
	Long: `Merge concatenates PDFs in the order given.

Without --select every document contributes all of its pages. With one or
more --select flags only the selected documents contribute, each with the
pages of its range expression; documents without a selection are left out
with a warning.

A document that fails to copy is reported and skipped; the merge fails
only when no document could be copied. When the estimated memory use
exceeds limits.memory_budget the merge asks for --yes.`,
	Example: `  pagecraft merge a.pdf b.pdf c.pdf
  pagecraft merge a.pdf b.pdf --select a.pdf=1-3 --select b.pdf=2,4
  pagecraft merge *.pdf --out combined.pdf --plan`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringArray("select", nil, "NAME=RANGES page selection for one document (repeatable)")
	mergeCmd.Flags().String("out", "", "output file (default: generated name in merge.output_dir)")
	mergeCmd.Flags().BoolP("yes", "y", false, "proceed even when the memory estimate exceeds the budget")
	mergeCmd.Flags().Bool("plan", false, "print the planned merge as YAML and write nothing")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess := session.New(cfg.Limits)
	for _, path := range args {
		if _, err := sess.LoadDocument(path, ".pdf"); err != nil {
			return err
		}
	}
	docs := sess.Documents()

	if err := merge.CheckResources(docs, cfg.Limits); err != nil {
		var warn *types.ResourceLimitWarning
		if !errors.As(err, &warn) {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("%w; rerun with --yes to proceed", err)
		}
		warnf("%v", err)
	}

	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := pdfdoc.New(pdfdoc.OptionsFromSecrets(loadedSecrets))
	counter := store.Counter(engine)

	specs, _ := cmd.Flags().GetStringArray("select")
	sel, err := selectionsFromFlags(ctx, counter, docs, specs)
	if err != nil {
		return err
	}

	planner := merge.NewPlanner(sess.Busy)
	job, err := planner.Plan(ctx, counter, docs, sel)
	if err != nil {
		return err
	}
	for _, w := range job.Warnings {
		warnf("%s", w)
	}

	if plan, _ := cmd.Flags().GetBool("plan"); plan {
		return writePlan(os.Stdout, map[string]any{
			"pages": job.PageTotal(),
			"job":   job,
		})
	}

	progress, done := newProgress(cmd, "merging")
	result, err := planner.Execute(ctx, engine, job, progress, os.Stdout)
	done()
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(cfg.Merge.OutputDir, job.OutputName)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(out, result.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stdout, "created: %s (%d document(s), %s)\n",
		out, len(result.Included), types.FormatSize(int64(len(result.Data))))

	if result.HasFailures() {
		return fmt.Errorf("%d document(s) could not be merged", len(result.Failed))
	}
	return nil
}

// selectionsFromFlags parses NAME=RANGES specs. NAME matches a document's
// file name or the path it was given as. No specs means simple mode. A
// document whose pages cannot be counted gets no selection.
func selectionsFromFlags(ctx context.Context, counter types.PageCounter, docs []*types.SourceDocument, specs []string) (merge.Selections, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	sel := merge.Selections{}
	for _, spec := range specs {
		name, text, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("%w: --select %q, want NAME=RANGES", types.ErrValidation, spec)
		}
		doc := findDocument(docs, name)
		if doc == nil {
			return nil, fmt.Errorf("%w: %s", types.ErrUnknownDocument, name)
		}
		total, err := doc.PageCount(ctx, counter)
		if err != nil {
			// The planner reports the document as unreadable and skips it.
			continue
		}
		ranges, err := pagerange.Parse(text, total)
		if err != nil {
			return nil, fmt.Errorf("selection for %s: %w", name, err)
		}
		var pages []int
		for _, r := range ranges {
			pages = append(pages, r.Pages()...)
		}
		sel[doc] = append(sel[doc], pages...)
	}
	return sel, nil
}

func findDocument(docs []*types.SourceDocument, name string) *types.SourceDocument {
	for _, d := range docs {
		if d.Name == name || d.Path == name {
			return d
		}
	}
	return nil
}
