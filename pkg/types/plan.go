// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SelectionMode identifies which representation of a page selection is
// authoritative for a document.
type SelectionMode string

const (
	SelectAllPages       SelectionMode = "all"
	SelectExplicitRanges SelectionMode = "ranges"
	SelectPageMask       SelectionMode = "mask"
	SelectDividers       SelectionMode = "dividers"
)

// SplitJob is one planned output document of a split.
type SplitJob struct {
	// Pages lists the 1-based source pages copied into the output, in order.
	// A page appears at most once per job.
	Pages []int `json:"pages" yaml:"pages,flow"`

	// Range is set when Pages is a contiguous interval.
	Range *PageRange `json:"range,omitempty" yaml:"range,omitempty"`

	// OutputName is the generated file name of the output document.
	OutputName string `json:"output_name" yaml:"output_name"`

	// EstimatedSize is a proportional estimate of the output size in bytes.
	EstimatedSize int64 `json:"estimated_size" yaml:"estimated_size"`
}

// MergeEntry is one document's contribution to a merge.
type MergeEntry struct {
	// Document is the source document. It is not serialized.
	Document *SourceDocument `json:"-" yaml:"-"`

	// Name mirrors Document.Name for plan output.
	Name string `json:"name" yaml:"name"`

	// All is true when the document contributes every page in natural order.
	All bool `json:"all" yaml:"all"`

	// Pages lists the 1-based pages contributed when All is false.
	// An empty list contributes nothing.
	Pages []int `json:"pages,omitempty" yaml:"pages,flow,omitempty"`

	// PageCount is the resolved page count of Document.
	PageCount int `json:"page_count" yaml:"page_count"`

	// Error is set when Document could not be read at planning time. Such
	// an entry contributes nothing and is reported as failed on execution.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SelectedPages returns the pages this entry contributes, in order.
func (e MergeEntry) SelectedPages() []int {
	if e.Error != "" {
		return nil
	}
	if e.All {
		return PageRange{Start: 1, End: e.PageCount}.Pages()
	}
	return e.Pages
}

// PageCopy is a single step of a merge: copy SourcePage of document
// DocIndex to position DestIndex (all 1-based pages, 0-based indexes).
type PageCopy struct {
	DocIndex   int `json:"doc_index" yaml:"doc_index"`
	SourcePage int `json:"source_page" yaml:"source_page"`
	DestIndex  int `json:"dest_index" yaml:"dest_index"`
}

// MergeJob is the single planned concatenation of (document, page) pairs.
type MergeJob struct {
	// Entries keeps the caller-specified document order.
	Entries []MergeEntry `json:"entries" yaml:"entries"`

	// OutputName is the generated file name of the merged document.
	OutputName string `json:"output_name" yaml:"output_name"`

	// Passthrough is true when the single input can be returned unchanged.
	Passthrough bool `json:"passthrough" yaml:"passthrough"`

	// Warnings lists non-fatal planning notes (e.g. documents contributing
	// zero pages).
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Steps flattens the job into ordered page-copy operations.
func (j *MergeJob) Steps() []PageCopy {
	var steps []PageCopy
	for i, e := range j.Entries {
		for _, p := range e.SelectedPages() {
			steps = append(steps, PageCopy{DocIndex: i, SourcePage: p, DestIndex: len(steps)})
		}
	}
	return steps
}

// Readable returns the number of entries whose document could be read.
func (j *MergeJob) Readable() int {
	n := 0
	for _, e := range j.Entries {
		if e.Error == "" {
			n++
		}
	}
	return n
}

// PageTotal returns the number of pages in the merged output.
func (j *MergeJob) PageTotal() int {
	n := 0
	for _, e := range j.Entries {
		n += len(e.SelectedPages())
	}
	return n
}
