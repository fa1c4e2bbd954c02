// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pagerange parses textual page-range expressions ("1-3, 5, 7-8")
// into validated PageRange lists and formats page sets back into the
// compact textual form.
package pagerange

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pagecraft/pkg/types"
)

// Parse turns a comma-separated range expression into ranges for a
// document with totalPages pages. Tokens with a "-" are two-sided ranges
// split on the first "-"; other tokens are single pages. The result is
// stable-sorted by Start. Overlapping ranges are kept as given.
func Parse(text string, totalPages int) ([]types.PageRange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrNoRanges
	}

	var ranges []types.PageRange
	for _, token := range strings.Split(text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		r, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		if err := r.Validate(totalPages); err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}

	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w in %q", types.ErrNoRangesFound, text)
	}

	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	})
	return ranges, nil
}

func parseToken(token string) (types.PageRange, error) {
	idx := strings.Index(token, "-")
	if idx == -1 {
		page, err := parseNumber(token)
		if err != nil {
			return types.PageRange{}, err
		}
		return types.PageRange{Start: page, End: page}, nil
	}

	start, err := parseNumber(token[:idx])
	if err != nil {
		return types.PageRange{}, err
	}
	end, err := parseNumber(token[idx+1:])
	if err != nil {
		return types.PageRange{}, err
	}
	if start > end {
		return types.PageRange{}, fmt.Errorf("%w: %q", types.ErrReversedRange, token)
	}
	return types.PageRange{Start: start, End: end}, nil
}

func parseNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidNumber, s)
	}
	return n, nil
}

// Validate checks externally built ranges against totalPages.
func Validate(ranges []types.PageRange, totalPages int) error {
	for i, r := range ranges {
		if err := r.Validate(totalPages); err != nil {
			return fmt.Errorf("range %d: %w", i+1, err)
		}
	}
	return nil
}

// Compact groups pages into maximal runs of consecutive numbers. The input
// is sorted and de-duplicated first.
func Compact(pages []int) []types.PageRange {
	sorted := normalize(pages)
	if len(sorted) == 0 {
		return nil
	}

	var ranges []types.PageRange
	cur := types.PageRange{Start: sorted[0], End: sorted[0]}
	for _, p := range sorted[1:] {
		if p == cur.End+1 {
			cur.End = p
			continue
		}
		ranges = append(ranges, cur)
		cur = types.PageRange{Start: p, End: p}
	}
	return append(ranges, cur)
}

// Format renders pages in the minimal textual form, e.g.
// [1 2 3 5 7 8] -> "1-3, 5, 7-8".
func Format(pages []int) string {
	return FormatRanges(Compact(pages))
}

// FormatRanges joins ranges with ", " in the order given.
func FormatRanges(ranges []types.PageRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// Pages returns the sorted union of pages covered by ranges.
func Pages(ranges []types.PageRange) []int {
	var pages []int
	for _, r := range ranges {
		pages = append(pages, r.Pages()...)
	}
	return normalize(pages)
}

// normalize returns a sorted copy of pages without duplicates.
func normalize(pages []int) []int {
	if len(pages) == 0 {
		return nil
	}
	out := make([]int, len(pages))
	copy(out, pages)
	sort.Ints(out)

	uniq := out[:1]
	for _, p := range out[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	return uniq
}
