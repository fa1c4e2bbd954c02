// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split plans and executes the partitioning of one PDF into
// several output documents.
package split

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/pagecraft/internal/pagerange"
	"github.com/pdiddy/pagecraft/internal/pdfdoc"
	"github.com/pdiddy/pagecraft/internal/selection"
	"github.com/pdiddy/pagecraft/internal/session"
	"github.com/pdiddy/pagecraft/pkg/types"
)

// Mode selects how split jobs are derived.
type Mode string

const (
	// ModeAll emits one job per page.
	ModeAll Mode = "all"

	// ModeRanges emits one job per parsed range.
	ModeRanges Mode = "ranges"

	// ModeVisual uses divider cut points, or the page mask when no
	// dividers are placed.
	ModeVisual Mode = "visual"

	// ModeEvery emits consecutive chunks of a fixed number of pages.
	ModeEvery Mode = "every"
)

// ModeData carries the input of the selected mode.
type ModeData struct {
	// RangeText is the range expression for ModeRanges.
	RangeText string

	// Selection holds dividers and mask for ModeVisual.
	Selection *selection.Model

	// PagesPerFile is the chunk size for ModeEvery.
	PagesPerFile int
}

// Planner turns a split request into jobs and runs them. It refuses to
// start while a previous operation on the same guard is running.
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

// Plan derives the ordered split jobs for doc, which has totalPages pages.
func (p *Planner) Plan(doc *types.SourceDocument, totalPages int, mode Mode, data ModeData) ([]types.SplitJob, error) {
	if err := p.guard.Begin("split planning"); err != nil {
		return nil, err
	}
	defer p.guard.End()

	if totalPages < 1 {
		return nil, fmt.Errorf("%w: %s has no pages", types.ErrEmptySelection, doc.Name)
	}

	var ranges []types.PageRange
	switch mode {
	case ModeAll:
		ranges = make([]types.PageRange, 0, totalPages)
		for n := 1; n <= totalPages; n++ {
			ranges = append(ranges, types.PageRange{Start: n, End: n})
		}
	case ModeRanges:
		parsed, err := pagerange.Parse(data.RangeText, totalPages)
		if err != nil {
			return nil, err
		}
		ranges = parsed
	case ModeVisual:
		resolved, err := visualRanges(data.Selection, totalPages)
		if err != nil {
			return nil, err
		}
		ranges = resolved
	case ModeEvery:
		chunks, err := Chunk(totalPages, data.PagesPerFile)
		if err != nil {
			return nil, err
		}
		ranges = chunks
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownSplitMode, mode)
	}

	return jobsFromRanges(doc, totalPages, ranges)
}

func visualRanges(sel *selection.Model, totalPages int) ([]types.PageRange, error) {
	if sel == nil {
		return nil, types.ErrEmptySelection
	}
	if sel.TotalPages() != totalPages {
		return nil, fmt.Errorf("%w: selection built for %d pages, document has %d",
			types.ErrOutOfBounds, sel.TotalPages(), totalPages)
	}
	if len(sel.Dividers()) > 0 {
		return sel.ResolveDividerRanges(), nil
	}
	if len(sel.MaskedPages()) == 0 {
		return nil, types.ErrEmptySelection
	}
	return sel.MaskToRanges(), nil
}

// Chunk partitions 1..totalPages into consecutive ranges of pagesPerFile
// pages; the last range may be shorter.
func Chunk(totalPages, pagesPerFile int) ([]types.PageRange, error) {
	if pagesPerFile < 1 {
		return nil, fmt.Errorf("%w: pages per file must be at least 1, got %d", types.ErrValidation, pagesPerFile)
	}
	var ranges []types.PageRange
	for start := 1; start <= totalPages; start += pagesPerFile {
		end := min(start+pagesPerFile-1, totalPages)
		ranges = append(ranges, types.PageRange{Start: start, End: end})
	}
	return ranges, nil
}

func jobsFromRanges(doc *types.SourceDocument, totalPages int, ranges []types.PageRange) ([]types.SplitJob, error) {
	if len(ranges) == 0 {
		return nil, types.ErrEmptySelection
	}

	base := doc.BaseName()
	jobs := make([]types.SplitJob, 0, len(ranges))
	for i, r := range ranges {
		// Ranges are validated upstream; re-check before they reach the engine.
		if err := r.Validate(totalPages); err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		rng := r
		jobs = append(jobs, types.SplitJob{
			Pages:         r.Pages(),
			Range:         &rng,
			OutputName:    OutputName(base, r),
			EstimatedSize: estimateSize(doc.Size, r.Len(), totalPages),
		})
	}
	return jobs, nil
}

// OutputName names the output of a job over r: "{base}_page_{n}.pdf" for a
// single page, "{base}_pages_{start}-{end}.pdf" otherwise.
func OutputName(base string, r types.PageRange) string {
	if r.Start == r.End {
		return fmt.Sprintf("%s_page_%d.pdf", base, r.Start)
	}
	return fmt.Sprintf("%s_pages_%d-%d.pdf", base, r.Start, r.End)
}

func estimateSize(docSize int64, pages, totalPages int) int64 {
	if totalPages <= 0 {
		return 0
	}
	return docSize * int64(pages) / int64(totalPages)
}

// Output is one materialized split job.
type Output struct {
	Job  types.SplitJob
	Data []byte
}

// Execute runs jobs strictly in order against doc. Progress is reported
// before each job and once at the end. A failing job aborts the split.
func (p *Planner) Execute(ctx context.Context, engine pdfdoc.Engine, doc *types.SourceDocument, jobs []types.SplitJob, progress session.ProgressFunc) ([]Output, error) {
	if err := p.guard.Begin("split"); err != nil {
		return nil, err
	}
	defer p.guard.End()

	if len(jobs) == 0 {
		return nil, types.ErrEmptySelection
	}

	outputs := make([]Output, 0, len(jobs))
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		progress.Report(session.Percent(i, len(jobs)), fmt.Sprintf("creating %s", job.OutputName))

		data, err := engine.Extract(ctx, doc.Data, job.Pages)
		if err != nil {
			return outputs, fmt.Errorf("creating %s: %w", job.OutputName, err)
		}
		outputs = append(outputs, Output{Job: job, Data: data})
	}
	progress.Report(100, fmt.Sprintf("created %d file(s)", len(outputs)))
	return outputs, nil
}

// WriteOutputs writes each output to dir under its job name, printing one
// status line per file to w.
func WriteOutputs(outputs []Output, dir string, w io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	for _, out := range outputs {
		path := filepath.Join(dir, out.Job.OutputName)
		if err := os.WriteFile(path, out.Data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(w, "created: %s (%d page(s), %s)\n",
			path, len(out.Job.Pages), types.FormatSize(int64(len(out.Data))))
	}
	return nil
}
