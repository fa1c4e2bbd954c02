// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge plans and executes the concatenation of several PDFs into
// one, optionally taking a page subset from each document.
package merge

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/pagecraft/internal/pdfdoc"
	"github.com/pdiddy/pagecraft/internal/session"
	"github.com/pdiddy/pagecraft/pkg/types"
)

// Selections maps a document to the pages it contributes, in order. A nil
// Selections means every document contributes all of its pages. A non-nil
// Selections is opt-in per document: a document without an entry
// contributes nothing.
type Selections map[*types.SourceDocument][]int

// Planner builds and runs merge jobs. It refuses to start while a
// previous operation on the same guard is running.
type Planner struct {
	guard *session.Guard
}

// NewPlanner returns a planner sharing the busy flag g. A nil g gives the
// planner its own flag.
func NewPlanner(g *session.Guard) *Planner {
	if g == nil {
		g = &session.Guard{}
	}
	return &Planner{guard: g}
}

// Plan builds the merge job for docs in the given order. Page counts are
// resolved through counter. A document whose pages cannot be counted is
// kept as a failed entry with a warning; Plan fails only when no document
// is readable.
func (p *Planner) Plan(ctx context.Context, counter types.PageCounter, docs []*types.SourceDocument, sel Selections) (*types.MergeJob, error) {
	if err := p.guard.Begin("merge planning"); err != nil {
		return nil, err
	}
	defer p.guard.End()

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents to merge", types.ErrEmptySelection)
	}
	for d := range sel {
		if !contains(docs, d) {
			return nil, fmt.Errorf("%w: selection for %s", types.ErrUnknownDocument, d.Name)
		}
	}

	job := &types.MergeJob{
		OutputName:  OutputName(docs),
		Passthrough: len(docs) == 1 && sel == nil,
	}

	var unreadable error
	for _, d := range docs {
		total, err := d.PageCount(ctx, counter)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if unreadable == nil {
				unreadable = err
			}
			job.Warnings = append(job.Warnings, fmt.Sprintf("%s cannot be read and will be skipped: %v", d.Name, err))
			job.Entries = append(job.Entries, types.MergeEntry{Document: d, Name: d.Name, Error: err.Error()})
			continue
		}
		entry := types.MergeEntry{Document: d, Name: d.Name, PageCount: total}

		if sel == nil {
			entry.All = true
			job.Entries = append(job.Entries, entry)
			continue
		}

		pages, ok := sel[d]
		switch {
		case !ok:
			job.Warnings = append(job.Warnings, fmt.Sprintf("%s has no page selection and contributes no pages", d.Name))
		case len(pages) == 0:
			job.Warnings = append(job.Warnings, fmt.Sprintf("%s has an empty page selection and contributes no pages", d.Name))
		}
		for _, n := range pages {
			if n < 1 || n > total {
				return nil, fmt.Errorf("%w: %s page %d not within 1-%d", types.ErrOutOfBounds, d.Name, n, total)
			}
		}
		entry.Pages = append([]int{}, pages...)
		job.Entries = append(job.Entries, entry)
	}

	if unreadable != nil && job.Readable() == 0 {
		return nil, fmt.Errorf("no readable document to merge: %w", unreadable)
	}
	if job.PageTotal() == 0 {
		return nil, fmt.Errorf("%w: selected documents contribute no pages", types.ErrEmptySelection)
	}
	return job, nil
}

// OutputName keeps the original name of a single document and otherwise
// yields "{first}_merged_{count}_files.pdf".
func OutputName(docs []*types.SourceDocument) string {
	if len(docs) == 1 {
		return docs[0].Name
	}
	return fmt.Sprintf("%s_merged_%d_files.pdf", docs[0].BaseName(), len(docs))
}

// EstimateMemory returns the estimated peak memory of merging docs: the
// total input size times factor.
func EstimateMemory(docs []*types.SourceDocument, factor int) int64 {
	var total int64
	for _, d := range docs {
		total += d.Size
	}
	return total * int64(factor)
}

// CheckResources returns a *types.ResourceLimitWarning when the memory
// estimate for docs exceeds the budget in limits, or nil.
func CheckResources(docs []*types.SourceDocument, limits types.LimitsConfig) error {
	limits = limits.WithDefaults()
	est := EstimateMemory(docs, limits.MemoryFactor)
	if est > limits.MemoryBudget {
		return &types.ResourceLimitWarning{Estimated: est, Budget: limits.MemoryBudget}
	}
	return nil
}

// Result is the outcome of executing a merge job.
type Result struct {
	// Data holds the merged document.
	Data []byte

	// Included lists the documents whose pages made it into Data.
	Included []string

	// Failed lists the documents skipped because of an error.
	Failed []string

	// Empty lists the documents that contributed no pages.
	Empty []string
}

// HasFailures reports whether any document was skipped due to an error.
func (r Result) HasFailures() bool {
	return len(r.Failed) > 0
}

// Execute materializes job. Documents are processed strictly in order; a
// document that fails is reported to w and skipped. Execute fails only
// when no document succeeds.
func (p *Planner) Execute(ctx context.Context, engine pdfdoc.Engine, job *types.MergeJob, progress session.ProgressFunc, w io.Writer) (Result, error) {
	if err := p.guard.Begin("merge"); err != nil {
		return Result{}, err
	}
	defer p.guard.End()

	var result Result
	if job.Passthrough {
		doc := job.Entries[0].Document
		progress.Report(100, fmt.Sprintf("%s passed through unchanged", doc.Name))
		result.Data = doc.Data
		result.Included = []string{doc.Name}
		return result, nil
	}

	var parts [][]byte
	for i, e := range job.Entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		progress.Report(session.Percent(i, len(job.Entries)), fmt.Sprintf("copying pages from %s", e.Name))

		if e.Error != "" {
			fmt.Fprintf(w, "failed:  %s (%s)\n", e.Name, e.Error)
			result.Failed = append(result.Failed, e.Name)
			continue
		}
		pages := e.SelectedPages()
		if len(pages) == 0 {
			fmt.Fprintf(w, "skipped: %s (no pages selected)\n", e.Name)
			result.Empty = append(result.Empty, e.Name)
			continue
		}

		part, err := engine.Extract(ctx, e.Document.Data, pages)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", e.Name, err)
			result.Failed = append(result.Failed, e.Name)
			continue
		}
		fmt.Fprintf(w, "added:   %s (%d page(s))\n", e.Name, len(pages))
		parts = append(parts, part)
		result.Included = append(result.Included, e.Name)
	}

	if len(parts) == 0 {
		return result, fmt.Errorf("%w: no document could be merged", types.ErrAssembly)
	}

	progress.Report(95, "assembling output")
	data, err := engine.Merge(ctx, parts)
	if err != nil {
		return result, fmt.Errorf("writing %s: %w", job.OutputName, err)
	}
	result.Data = data
	progress.Report(100, fmt.Sprintf("merged %d document(s)", len(parts)))
	return result, nil
}

func contains(docs []*types.SourceDocument, d *types.SourceDocument) bool {
	for _, x := range docs {
		if x == d {
			return true
		}
	}
	return false
}
