// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pagecraft/internal/pagerange"
	"github.com/pdiddy/pagecraft/pkg/types"
)

var rangesCmd = &cobra.Command{
	Use:   "ranges",
	Short: "Parse and format page range expressions",
	Long: `Ranges checks page range expressions the way split and merge read them.
Use parse to validate an expression against a page count, and format to
compact a list of pages into an expression.`,
}

// --- parse subcommand ---

var rangesParseCmd = &cobra.Command{
	Use:   "parse EXPR",
	Short: "Validate a range expression against a page count",
	Example: `  pagecraft ranges parse "1-3, 5, 8-10" --total 12`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRangesParse,
}

func runRangesParse(cmd *cobra.Command, args []string) error {
	total, _ := cmd.Flags().GetInt("total")
	ranges, err := pagerange.Parse(strings.Join(args, " "), total)
	if err != nil {
		return err
	}

	if asPlan, _ := cmd.Flags().GetBool("yaml"); asPlan {
		return writePlan(os.Stdout, map[string]any{
			"ranges": ranges,
			"pages":  pagerange.Pages(ranges),
		})
	}

	for _, r := range ranges {
		fmt.Fprintf(os.Stdout, "%-10s %d page(s)\n", r, r.Len())
	}
	pages := pagerange.Pages(ranges)
	fmt.Fprintf(os.Stdout, "\n%d distinct page(s): %s\n", len(pages), pagerange.Format(pages))
	return nil
}

// --- format subcommand ---

var rangesFormatCmd = &cobra.Command{
	Use:     "format PAGE...",
	Short:   "Compact page numbers into a range expression",
	Example: `  pagecraft ranges format 1 2 3 5 7 8`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRangesFormat,
}

func runRangesFormat(cmd *cobra.Command, args []string) error {
	pages, err := parsePageList(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, pagerange.Format(pages))
	return nil
}

// parsePageList reads page numbers given as separate arguments or
// comma-separated within one.
func parsePageList(args []string) ([]int, error) {
	var pages []int
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: %q", types.ErrInvalidNumber, field)
			}
			pages = append(pages, n)
		}
	}
	return pages, nil
}

func init() {
	rangesParseCmd.Flags().Int("total", 0, "page count of the document (required)")
	_ = rangesParseCmd.MarkFlagRequired("total")
	rangesParseCmd.Flags().Bool("yaml", false, "print the parsed ranges as YAML")

	rangesCmd.AddCommand(rangesParseCmd)
	rangesCmd.AddCommand(rangesFormatCmd)
	rootCmd.AddCommand(rangesCmd)
}
