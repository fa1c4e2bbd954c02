// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection holds the page selection of one document. The
// selection has four representations (all pages, explicit ranges, a
// per-page mask and divider cut points); exactly one is authoritative at
// a time and Resolve reconciles it into ordered page ranges.
package selection

import (
	"fmt"
	"sort"

	"github.com/pdiddy/pagecraft/internal/pagerange"
	"github.com/pdiddy/pagecraft/pkg/types"
)

// Model is the selection state of a single document. The zero value is
// not usable; construct with New.
type Model struct {
	total    int
	mode     types.SelectionMode
	ranges   []types.PageRange
	mask     map[int]bool
	dividers map[int]bool
}

// New returns a model selecting all pages of a document with totalPages
// pages.
func New(totalPages int) *Model {
	return &Model{
		total:    totalPages,
		mode:     types.SelectAllPages,
		mask:     make(map[int]bool),
		dividers: make(map[int]bool),
	}
}

// TotalPages returns the page count the model was built for.
func (m *Model) TotalPages() int { return m.total }

// Mode returns the active representation.
func (m *Model) Mode() types.SelectionMode { return m.mode }

// SetAllPages drops the explicit ranges and selects every page in
// natural order.
func (m *Model) SetAllPages() {
	m.ranges = nil
	m.mode = types.SelectAllPages
}

// SetRangesFromText parses text and makes the result the explicit
// selection. On error the model is left unchanged.
func (m *Model) SetRangesFromText(text string) error {
	ranges, err := pagerange.Parse(text, m.total)
	if err != nil {
		return err
	}
	m.ranges = ranges
	m.mode = types.SelectExplicitRanges
	return nil
}

// Ranges returns a copy of the explicit ranges.
func (m *Model) Ranges() []types.PageRange {
	return append([]types.PageRange(nil), m.ranges...)
}

// ToggleDivider adds or removes a cut after afterPage. Valid cut points
// are 1..totalPages-1.
func (m *Model) ToggleDivider(afterPage int) error {
	if afterPage < 1 || afterPage > m.total-1 {
		return fmt.Errorf("%w: cut after page %d (valid 1-%d)", types.ErrInvalidDivider, afterPage, m.total-1)
	}
	if m.dividers[afterPage] {
		delete(m.dividers, afterPage)
	} else {
		m.dividers[afterPage] = true
	}
	m.touchVisual()
	return nil
}

// ClearDividers removes every cut point.
func (m *Model) ClearDividers() {
	m.dividers = make(map[int]bool)
	m.touchVisual()
}

// Dividers returns the cut points in ascending order.
func (m *Model) Dividers() []int {
	return sortedKeys(m.dividers)
}

// ResolveDividerRanges partitions 1..totalPages at the cut points:
// [1..d1], [d1+1..d2], ..., [dk+1..totalPages].
func (m *Model) ResolveDividerRanges() []types.PageRange {
	return partition(m.total, m.Dividers())
}

// TogglePageMask flips the mask membership of page.
func (m *Model) TogglePageMask(page int) error {
	if page < 1 || page > m.total {
		return fmt.Errorf("%w: page %d not within 1-%d", types.ErrOutOfBounds, page, m.total)
	}
	if m.mask[page] {
		delete(m.mask, page)
	} else {
		m.mask[page] = true
	}
	m.touchVisual()
	return nil
}

// SelectAllMask checks every page.
func (m *Model) SelectAllMask() {
	for p := 1; p <= m.total; p++ {
		m.mask[p] = true
	}
	m.touchVisual()
}

// SelectNoneMask unchecks every page.
func (m *Model) SelectNoneMask() {
	m.mask = make(map[int]bool)
	m.touchVisual()
}

// MaskedPages returns the checked pages in ascending order.
func (m *Model) MaskedPages() []int {
	return sortedKeys(m.mask)
}

// MaskToRanges compacts the checked pages into maximal consecutive runs.
func (m *Model) MaskToRanges() []types.PageRange {
	return pagerange.Compact(m.MaskedPages())
}

// touchVisual switches to the visual representation that currently wins:
// dividers when any are placed, otherwise the mask.
func (m *Model) touchVisual() {
	if len(m.dividers) > 0 {
		m.mode = types.SelectDividers
		return
	}
	m.mode = types.SelectPageMask
}

// Resolve returns the canonical ordered ranges for the active
// representation. When both dividers and a mask have been edited,
// non-empty dividers win.
func (m *Model) Resolve() ([]types.PageRange, error) {
	switch m.mode {
	case types.SelectAllPages:
		return []types.PageRange{{Start: 1, End: m.total}}, nil
	case types.SelectExplicitRanges:
		if len(m.ranges) == 0 {
			return nil, types.ErrEmptySelection
		}
		return m.Ranges(), nil
	case types.SelectDividers, types.SelectPageMask:
		if len(m.dividers) > 0 {
			return m.ResolveDividerRanges(), nil
		}
		if len(m.mask) == 0 {
			return nil, types.ErrEmptySelection
		}
		return m.MaskToRanges(), nil
	default:
		return nil, fmt.Errorf("unknown selection mode %q", m.mode)
	}
}

// SyncText renders the resolved selection as range text, suitable for
// re-displaying the current selection in a text field. An empty
// selection renders as "".
func (m *Model) SyncText() string {
	ranges, err := m.Resolve()
	if err != nil {
		return ""
	}
	return RangesToText(ranges)
}

// UseMaskFromRanges replaces the mask with the pages covered by the
// current resolved selection and makes the mask authoritative. Dividers
// are cleared so the mask wins.
func (m *Model) UseMaskFromRanges() error {
	ranges, err := m.Resolve()
	if err != nil {
		return err
	}
	m.mask = MaskFromRanges(ranges)
	m.dividers = make(map[int]bool)
	m.mode = types.SelectPageMask
	return nil
}

// UseDividersFromRanges converts the current resolved selection into
// divider cut points. It fails with ErrNotAPartition when the ranges do
// not cover 1..totalPages contiguously; the model is unchanged then.
func (m *Model) UseDividersFromRanges() error {
	ranges, err := m.Resolve()
	if err != nil {
		return err
	}
	cuts, err := DividersFromRanges(ranges, m.total)
	if err != nil {
		return err
	}
	m.dividers = make(map[int]bool, len(cuts))
	for _, c := range cuts {
		m.dividers[c] = true
	}
	m.touchVisual()
	return nil
}

// RangesToText renders ranges as "1-3, 5".
func RangesToText(ranges []types.PageRange) string {
	return pagerange.FormatRanges(ranges)
}

// MaskFromRanges returns the set of pages covered by ranges.
func MaskFromRanges(ranges []types.PageRange) map[int]bool {
	mask := make(map[int]bool)
	for _, r := range ranges {
		for p := r.Start; p <= r.End; p++ {
			mask[p] = true
		}
	}
	return mask
}

// DividersFromRanges returns the cut points that produce ranges, which
// must be sorted, non-overlapping and cover 1..totalPages without gaps.
func DividersFromRanges(ranges []types.PageRange, totalPages int) ([]int, error) {
	next := 1
	var cuts []int
	for _, r := range ranges {
		if r.Start != next || r.End < r.Start {
			return nil, fmt.Errorf("%w: range %s does not start at page %d", types.ErrNotAPartition, r, next)
		}
		next = r.End + 1
		if r.End < totalPages {
			cuts = append(cuts, r.End)
		}
	}
	if next != totalPages+1 {
		return nil, fmt.Errorf("%w: pages %d-%d not covered", types.ErrNotAPartition, next, totalPages)
	}
	return cuts, nil
}

func partition(total int, cuts []int) []types.PageRange {
	ranges := make([]types.PageRange, 0, len(cuts)+1)
	start := 1
	for _, c := range cuts {
		ranges = append(ranges, types.PageRange{Start: start, End: c})
		start = c + 1
	}
	return append(ranges, types.PageRange{Start: start, End: total})
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
