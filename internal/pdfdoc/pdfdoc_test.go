// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pagecraft/pkg/types"
)

func TestMain(m *testing.M) {
	api.DisableConfigDir()
	os.Exit(m.Run())
}

// samplePDF builds an n-page document with one line of text per page.
func samplePDF(t *testing.T, n int) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 1; i <= n; i++ {
		doc.AddPage()
		doc.Text(50, 60, fmt.Sprintf("page %d", i))
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestEngineVersion(t *testing.T) {
	assert.True(t, strings.HasPrefix(EngineVersion(), "pdfcpu v"), EngineVersion())
}

func TestPageCount(t *testing.T) {
	e := New(Options{})
	n, err := e.PageCount(context.Background(), samplePDF(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPageCount_Corrupt(t *testing.T) {
	e := New(Options{})
	_, err := e.PageCount(context.Background(), []byte("not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSourceRead)
}

func TestValidate(t *testing.T) {
	e := New(Options{})
	require.NoError(t, e.Validate(context.Background(), samplePDF(t, 1)))
	assert.ErrorIs(t, e.Validate(context.Background(), []byte("%PDF-garbage")), types.ErrSourceRead)
}

func TestExtract(t *testing.T) {
	ctx := context.Background()
	e := New(Options{})
	src := samplePDF(t, 4)

	out, err := e.Extract(ctx, src, []int{4, 1})
	require.NoError(t, err)

	n, err := e.PageCount(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExtract_Errors(t *testing.T) {
	ctx := context.Background()
	e := New(Options{})
	src := samplePDF(t, 2)

	_, err := e.Extract(ctx, src, nil)
	assert.ErrorIs(t, err, types.ErrEmptySelection)

	_, err = e.Extract(ctx, src, []int{3})
	assert.ErrorIs(t, err, types.ErrOutOfBounds)
}

func TestMerge(t *testing.T) {
	ctx := context.Background()
	e := New(Options{})

	out, err := e.Merge(ctx, [][]byte{samplePDF(t, 2), samplePDF(t, 3)})
	require.NoError(t, err)

	n, err := e.PageCount(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestMerge_SinglePartIsUnchanged(t *testing.T) {
	src := samplePDF(t, 1)
	out, err := New(Options{}).Merge(context.Background(), [][]byte{src})
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).PageCount(ctx, samplePDF(t, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptionsFromSecrets(t *testing.T) {
	opts := OptionsFromSecrets(map[string]string{
		SecretUserPassword: "open",
		"unrelated":        "x",
	})
	assert.Equal(t, Options{UserPassword: "open"}, opts)
}
