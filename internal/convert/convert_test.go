// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pagecraft/internal/session"
	"github.com/pdiddy/pagecraft/pkg/types"
)

// fakeHTML implements HTMLConverter for testing. It returns canned HTML
// or an error, depending on configuration.
type fakeHTML struct {
	html     string
	messages []string
	err      error
	calls    int
}

func (f *fakeHTML) ToHTML(ctx context.Context, data []byte) (HTMLResult, error) {
	f.calls++
	if f.err != nil {
		return HTMLResult{}, f.err
	}
	return HTMLResult{HTML: f.html, Messages: f.messages}, nil
}

// recordingRenderer records what it was asked to draw.
type recordingRenderer struct {
	titles []string
	pages  [][]Page
}

func (r *recordingRenderer) Render(title string, pages []Page) ([]byte, error) {
	r.titles = append(r.titles, title)
	r.pages = append(r.pages, pages)
	return []byte("%PDF-fake " + title), nil
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Quarterly Report", Title("in/Quarterly Report.docx"))
	assert.Equal(t, "Quarterly Report.pdf", OutputName("in/Quarterly Report.docx"))
	assert.Equal(t, "a.b.pdf", OutputName("a.b.DOCX"))
}

func TestConvertFile(t *testing.T) {
	r := &recordingRenderer{}
	p := NewPipeline(&fakeHTML{html: "<h1>Hi</h1><p>there</p>", messages: []string{"style dropped"}}, r, nil)
	doc := types.NewSourceDocument("memo.docx", makeDocx(t, sampleBody))

	res, err := p.ConvertFile(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, "memo.pdf", res.Name)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, []string{"style dropped"}, res.Messages)
	assert.Equal(t, []string{"memo"}, r.titles)
	lines := r.pages[0][0].Lines
	require.Len(t, lines, 3)
	assert.Equal(t, "memo", lines[0].Text)
	assert.Equal(t, "Hi", lines[1].Text)
	assert.Equal(t, "there", lines[2].Text)
}

func TestConvertFile_EmptyDocumentStillProducesAPage(t *testing.T) {
	r := &recordingRenderer{}
	p := NewPipeline(NativeConverter{}, r, nil)
	doc := types.NewSourceDocument("blank.docx", makeDocx(t, "<w:p/>"))

	res, err := p.ConvertFile(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, FallbackNotice, r.pages[0][0].Lines[1].Text)
}

func TestConvertFile_RejectsNonDocx(t *testing.T) {
	h := &fakeHTML{html: "<p>never</p>"}
	p := NewPipeline(h, &recordingRenderer{}, nil)

	_, err := p.ConvertFile(context.Background(), types.NewSourceDocument("x.docx", []byte("not a zip")))
	assert.ErrorIs(t, err, types.ErrUnsupportedType)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Zero(t, h.calls)
}

func TestConvertFile_FPDFRenderer(t *testing.T) {
	p := NewPipeline(NativeConverter{}, nil, nil)
	doc := types.NewSourceDocument("résumé.docx", makeDocx(t, sampleBody))

	res, err := p.ConvertFile(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.Data, []byte("%PDF-")), "output should be a PDF")
	assert.Equal(t, 1, res.Pages)
}

func TestConvertBatch(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "b.pdf"), []byte("existing"), 0o644))

	docs := []*types.SourceDocument{
		types.NewSourceDocument("a.docx", makeDocx(t, sampleBody)),
		types.NewSourceDocument("b.docx", makeDocx(t, sampleBody)),
		types.NewSourceDocument("c.docx", []byte("corrupt")),
	}
	p := NewPipeline(&fakeHTML{html: "<p>x</p>", messages: []string{"note"}}, &recordingRenderer{}, nil)

	var log bytes.Buffer
	var last int
	result, err := p.ConvertBatch(context.Background(), docs, outDir, false, func(pct int, _ string) { last = pct }, &log)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Converted: 1, Skipped: 1, Failed: 1}, result)
	assert.True(t, result.HasFailures())
	assert.Equal(t, 3, result.Total())
	assert.Equal(t, 100, last)

	data, err := os.ReadFile(filepath.Join(outDir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake a", string(data))

	out := log.String()
	for _, want := range []string{"converted: a.docx", "skipped: b.docx", "failed:  c.docx", "warning: a.docx: note", "Batch summary:"} {
		assert.Contains(t, out, want)
	}
}

func TestConvertBatch_Overwrite(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "a.pdf"), []byte("existing"), 0o644))

	docs := []*types.SourceDocument{types.NewSourceDocument("a.docx", makeDocx(t, sampleBody))}
	p := NewPipeline(&fakeHTML{html: "<p>x</p>"}, &recordingRenderer{}, nil)

	result, err := p.ConvertBatch(context.Background(), docs, outDir, true, nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Converted)
}

func TestConvertBatch_FailsWhenNothingConverts(t *testing.T) {
	docs := []*types.SourceDocument{
		types.NewSourceDocument("a.docx", makeDocx(t, sampleBody)),
		types.NewSourceDocument("b.docx", makeDocx(t, sampleBody)),
	}
	p := NewPipeline(&fakeHTML{err: errors.New("backend crashed")}, &recordingRenderer{}, nil)

	var log bytes.Buffer
	result, err := p.ConvertBatch(context.Background(), docs, t.TempDir(), false, nil, &log)
	assert.ErrorIs(t, err, types.ErrAssembly)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 2, strings.Count(log.String(), "failed:"))
}

func TestConvertBatch_Errors(t *testing.T) {
	p := NewPipeline(&fakeHTML{}, &recordingRenderer{}, nil)
	_, err := p.ConvertBatch(context.Background(), nil, t.TempDir(), false, nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, types.ErrEmptySelection)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	docs := []*types.SourceDocument{types.NewSourceDocument("a.docx", makeDocx(t, sampleBody))}
	_, err = p.ConvertBatch(ctx, docs, t.TempDir(), false, nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertBatch_RejectsWhileBusy(t *testing.T) {
	guard := &session.Guard{}
	require.NoError(t, guard.Begin("merge"))
	defer guard.End()

	p := NewPipeline(&fakeHTML{}, &recordingRenderer{}, guard)
	docs := []*types.SourceDocument{types.NewSourceDocument("a.docx", makeDocx(t, sampleBody))}
	_, err := p.ConvertBatch(context.Background(), docs, t.TempDir(), false, nil, &bytes.Buffer{})
	assert.ErrorIs(t, err, types.ErrBusy)
}
