// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements Word-to-PDF conversion: a .docx file is
// turned into HTML by a pluggable backend, reduced to tagged text blocks,
// laid out onto Letter pages and rendered as a text-only PDF.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pagecraft/internal/session"
	"github.com/pdiddy/pagecraft/pkg/types"
)

// HTMLResult is the output of a .docx to HTML backend.
type HTMLResult struct {
	HTML string

	// Messages holds diagnostics about content the backend could not
	// represent.
	Messages []string
}

// HTMLConverter transforms .docx bytes into HTML. Different backends
// (native, pandoc) implement this interface.
type HTMLConverter interface {
	ToHTML(ctx context.Context, data []byte) (HTMLResult, error)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Result is one converted document.
type Result struct {
	Name     string
	Data     []byte
	Pages    int
	Messages []string
}

// Pipeline wires an HTML backend to a renderer.
type Pipeline struct {
	html     HTMLConverter
	renderer Renderer
	guard    *session.Guard
}

// NewPipeline returns a pipeline sharing the busy flag g. A nil g gives
// the pipeline its own flag; a nil renderer selects FPDFRenderer.
func NewPipeline(h HTMLConverter, r Renderer, g *session.Guard) *Pipeline {
	if g == nil {
		g = &session.Guard{}
	}
	if r == nil {
		r = FPDFRenderer{}
	}
	return &Pipeline{html: h, renderer: r, guard: g}
}

// OutputName returns the PDF file name for a source document name: the
// base name with its extension replaced by ".pdf".
func OutputName(name string) string {
	return Title(name) + ".pdf"
}

// Title returns the file name of name without directory and extension.
func Title(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ConvertFile converts one .docx document to PDF. It does not take the
// busy flag; callers running it outside ConvertBatch coordinate
// themselves.
func (p *Pipeline) ConvertFile(ctx context.Context, doc *types.SourceDocument) (Result, error) {
	if err := ValidateDocx(doc.Data); err != nil {
		return Result{}, err
	}
	h, err := p.html.ToHTML(ctx, doc.Data)
	if err != nil {
		return Result{}, err
	}
	blocks, err := ExtractBlocks(h.HTML)
	if err != nil {
		return Result{}, fmt.Errorf("%w: parsing converted HTML: %v", types.ErrSourceRead, err)
	}

	title := Title(doc.Name)
	pages := Layout(title, blocks)
	data, err := p.renderer.Render(title, pages)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", types.ErrAssembly, err)
	}
	return Result{
		Name:     OutputName(doc.Name),
		Data:     data,
		Pages:    len(pages),
		Messages: h.Messages,
	}, nil
}

// ConvertBatch converts docs strictly in order, writing each PDF into
// outDir and printing per-file status to w. A document that fails is
// reported and skipped; an existing output is skipped unless overwrite is
// set. The batch returns an error only when no document was converted and
// at least one failed.
func (p *Pipeline) ConvertBatch(ctx context.Context, docs []*types.SourceDocument, outDir string, overwrite bool, progress session.ProgressFunc, w io.Writer) (BatchResult, error) {
	var result BatchResult
	if err := p.guard.Begin("conversion"); err != nil {
		return result, err
	}
	defer p.guard.End()

	if len(docs) == 0 {
		return result, fmt.Errorf("%w: no documents to convert", types.ErrEmptySelection)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		progress.Report(session.Percent(i, len(docs)), fmt.Sprintf("converting %s", doc.Name))

		outPath := filepath.Join(outDir, OutputName(doc.Name))
		if !overwrite {
			if _, err := os.Stat(outPath); err == nil {
				fmt.Fprintf(w, "skipped: %s (%s already exists)\n", doc.Name, outPath)
				result.Skipped++
				continue
			}
		}

		res, err := p.ConvertFile(ctx, doc)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", doc.Name, err)
			result.Failed++
			continue
		}
		for _, m := range res.Messages {
			fmt.Fprintf(w, "warning: %s: %s\n", doc.Name, m)
		}
		if err := os.WriteFile(outPath, res.Data, 0o644); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", doc.Name, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "converted: %s -> %s (%d page(s))\n", doc.Name, outPath, res.Pages)
		result.Converted++
	}
	progress.Report(100, fmt.Sprintf("converted %d of %d document(s)", result.Converted, len(docs)))

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())

	if result.Converted == 0 && result.Failed > 0 {
		return result, fmt.Errorf("%w: no document could be converted", types.ErrAssembly)
	}
	return result, nil
}
