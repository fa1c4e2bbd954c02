// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pagecraft/internal/cache"
	"github.com/pdiddy/pagecraft/internal/pagerange"
	"github.com/pdiddy/pagecraft/internal/pdfdoc"
	"github.com/pdiddy/pagecraft/internal/selection"
	"github.com/pdiddy/pagecraft/internal/session"
	"github.com/pdiddy/pagecraft/internal/split"
	"github.com/pdiddy/pagecraft/pkg/types"
)

var splitCmd = &cobra.Command{
	Use:   "split FILE",
	Short: "Split a PDF into several documents",
	Long: `Split partitions one PDF into several output documents.

Modes:
  all      one file per page (default)
  ranges   one file per range in --ranges, e.g. "1-3, 5, 8-10"
  visual   cut after the pages in --dividers, or, without dividers, one
           file per run of pages selected with --pages
  every    consecutive chunks of --every pages

Outputs are named {name}_page_{n}.pdf or {name}_pages_{start}-{end}.pdf.`,
	Example: `  pagecraft split report.pdf
  pagecraft split report.pdf --mode ranges --ranges "1-3, 7"
  pagecraft split report.pdf --mode visual --dividers 2,5
  pagecraft split report.pdf --every 10 --out chapters/ --plan`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().String("mode", string(split.ModeAll), "split mode: all, ranges, visual, or every")
	splitCmd.Flags().String("ranges", "", "range expression for --mode ranges")
	splitCmd.Flags().IntSlice("dividers", nil, "cut after these pages (--mode visual)")
	splitCmd.Flags().String("pages", "", "pages to keep as a range expression (--mode visual without dividers)")
	splitCmd.Flags().Int("every", 0, "pages per output file; implies --mode every")
	splitCmd.Flags().String("out", "", "output directory (default: split.output_dir)")
	splitCmd.Flags().Bool("plan", false, "print the planned jobs as YAML and write nothing")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sess := session.New(cfg.Limits)
	doc, err := sess.LoadDocument(args[0], ".pdf")
	if err != nil {
		return err
	}

	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := pdfdoc.New(pdfdoc.OptionsFromSecrets(loadedSecrets))
	total, err := doc.PageCount(ctx, store.Counter(engine))
	if err != nil {
		return err
	}

	mode, data, err := splitModeFromFlags(cmd, total)
	if err != nil {
		return err
	}

	planner := split.NewPlanner(sess.Busy)
	jobs, err := planner.Plan(doc, total, mode, data)
	if err != nil {
		return err
	}

	if plan, _ := cmd.Flags().GetBool("plan"); plan {
		return writePlan(os.Stdout, map[string]any{
			"source": doc.Name,
			"pages":  total,
			"mode":   string(mode),
			"jobs":   jobs,
		})
	}

	progress, done := newProgress(cmd, "splitting")
	outputs, err := planner.Execute(ctx, engine, doc, jobs, progress)
	done()
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.Split.OutputDir
	}
	if err := split.WriteOutputs(outputs, outDir, os.Stdout); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "split %s into %d file(s)\n", doc.Name, len(outputs))
	return nil
}

// splitModeFromFlags translates the split flags into a mode and its data.
// For visual mode the flags are replayed onto a selection model, the same
// way interactive divider and checkbox edits would be.
func splitModeFromFlags(cmd *cobra.Command, total int) (split.Mode, split.ModeData, error) {
	modeFlag, _ := cmd.Flags().GetString("mode")
	mode := split.Mode(modeFlag)

	var data split.ModeData
	if cmd.Flags().Changed("every") {
		mode = split.ModeEvery
		data.PagesPerFile, _ = cmd.Flags().GetInt("every")
	}

	switch mode {
	case split.ModeRanges:
		data.RangeText, _ = cmd.Flags().GetString("ranges")
	case split.ModeVisual:
		sel := selection.New(total)
		dividers, _ := cmd.Flags().GetIntSlice("dividers")
		for _, d := range dividers {
			if err := sel.ToggleDivider(d); err != nil {
				return mode, data, err
			}
		}
		if text, _ := cmd.Flags().GetString("pages"); text != "" {
			ranges, err := pagerange.Parse(text, total)
			if err != nil {
				return mode, data, err
			}
			for _, p := range pagerange.Pages(ranges) {
				if err := sel.TogglePageMask(p); err != nil {
					return mode, data, err
				}
			}
			if len(dividers) > 0 {
				warnf("--pages is ignored while dividers are placed")
			}
		}
		data.Selection = sel
	case split.ModeAll, split.ModeEvery:
	default:
		return mode, data, fmt.Errorf("%w: %q", types.ErrUnknownSplitMode, mode)
	}
	return mode, data, nil
}
