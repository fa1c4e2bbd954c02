// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc wraps the PDF engine used to materialize split and merge
// plans. The Engine interface is what the planners depend on; PDFCPU is
// the production implementation backed by pdfcpu.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/pagecraft/pkg/types"
)

// Engine reads and assembles PDF documents held in memory. Page numbers
// are 1-based.
type Engine interface {
	// PageCount returns the number of pages in data.
	PageCount(ctx context.Context, data []byte) (int, error)

	// Extract returns a new document holding pages of data in the given
	// order.
	Extract(ctx context.Context, data []byte, pages []int) ([]byte, error)

	// Merge concatenates documents in order.
	Merge(ctx context.Context, parts [][]byte) ([]byte, error)
}

// Options configures the pdfcpu engine.
type Options struct {
	// UserPassword opens encrypted inputs.
	UserPassword string

	// OwnerPassword opens inputs with permission restrictions.
	OwnerPassword string
}

// Secret keys read from the secrets directory.
const (
	SecretUserPassword  = "pdf-user-password"
	SecretOwnerPassword = "pdf-owner-password"
)

// OptionsFromSecrets picks the PDF passwords out of a loaded secrets map.
func OptionsFromSecrets(secrets map[string]string) Options {
	return Options{
		UserPassword:  secrets[SecretUserPassword],
		OwnerPassword: secrets[SecretOwnerPassword],
	}
}

// EngineVersion returns the version of the pdfcpu library linked into the
// binary.
func EngineVersion() string {
	return "pdfcpu " + model.VersionStr
}

// PDFCPU implements Engine with pdfcpu.
type PDFCPU struct {
	opts Options
}

// New returns a pdfcpu-backed engine.
func New(opts Options) *PDFCPU {
	return &PDFCPU{opts: opts}
}

// config returns a fresh configuration per call; pdfcpu mutates it while
// processing.
func (p *PDFCPU) config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.UserPW = p.opts.UserPassword
	conf.OwnerPW = p.opts.OwnerPassword
	return conf
}

// PageCount reads data and returns its page count.
func (p *PDFCPU) PageCount(ctx context.Context, data []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := api.PageCount(bytes.NewReader(data), p.config())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrSourceRead, err)
	}
	return n, nil
}

// Validate checks that data parses as a PDF.
func (p *PDFCPU) Validate(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pdfCtx, err := api.ReadContext(bytes.NewReader(data), p.config())
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSourceRead, err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSourceRead, err)
	}
	return nil
}

// Extract copies pages of data, in order, into a new document.
func (p *PDFCPU) Extract(ctx context.Context, data []byte, pages []int) ([]byte, error) {
	if len(pages) == 0 {
		return nil, types.ErrEmptySelection
	}
	total, err := p.PageCount(ctx, data)
	if err != nil {
		return nil, err
	}

	selected := make([]string, len(pages))
	for i, n := range pages {
		if n < 1 || n > total {
			return nil, fmt.Errorf("%w: page %d not within 1-%d", types.ErrOutOfBounds, n, total)
		}
		selected[i] = strconv.Itoa(n)
	}

	var out bytes.Buffer
	if err := api.Collect(bytes.NewReader(data), &out, selected, p.config()); err != nil {
		return nil, fmt.Errorf("%w: collecting pages: %v", types.ErrAssembly, err)
	}
	return out.Bytes(), nil
}

// Merge concatenates parts into one document.
func (p *PDFCPU) Merge(ctx context.Context, parts [][]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch len(parts) {
	case 0:
		return nil, types.ErrEmptySelection
	case 1:
		return parts[0], nil
	}

	readers := make([]io.ReadSeeker, len(parts))
	for i, part := range parts {
		readers[i] = bytes.NewReader(part)
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, p.config()); err != nil {
		return nil, fmt.Errorf("%w: merging %d documents: %v", types.ErrAssembly, len(parts), err)
	}
	return out.Bytes(), nil
}
