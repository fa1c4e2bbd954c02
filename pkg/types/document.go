// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// PageRange is an inclusive interval of 1-based page numbers.
type PageRange struct {
	// Start is the first page of the range.
	Start int `json:"start" yaml:"start"`

	// End is the last page of the range (inclusive). End >= Start.
	End int `json:"end" yaml:"end"`
}

// Len returns the number of pages covered by the range.
func (r PageRange) Len() int {
	return r.End - r.Start + 1
}

// Pages returns the page numbers covered by the range in ascending order.
func (r PageRange) Pages() []int {
	if r.End < r.Start {
		return nil
	}
	pages := make([]int, 0, r.Len())
	for p := r.Start; p <= r.End; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Contains reports whether page lies within the range.
func (r PageRange) Contains(page int) bool {
	return page >= r.Start && page <= r.End
}

// String renders the range as "3" or "3-5".
func (r PageRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Validate checks that the range is well formed for a document with
// totalPages pages.
func (r PageRange) Validate(totalPages int) error {
	if r.Start > r.End {
		return fmt.Errorf("%w: %d-%d", ErrReversedRange, r.Start, r.End)
	}
	if r.Start < 1 || r.End > totalPages {
		return fmt.Errorf("%w: %s not within 1-%d", ErrOutOfBounds, r, totalPages)
	}
	return nil
}

// PageCounter resolves the number of pages in a PDF byte buffer.
// pdfdoc.Engine satisfies it.
type PageCounter interface {
	PageCount(ctx context.Context, data []byte) (int, error)
}

// SourceDocument is one input file loaded into memory. Its bytes are
// treated as read-only once loaded.
type SourceDocument struct {
	// Name is the original file name (base name, with extension).
	Name string `json:"name" yaml:"name"`

	// Path is the local path the document was read from, if any.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Size is the byte size of Data.
	Size int64 `json:"size" yaml:"size"`

	// Data holds the file contents.
	Data []byte `json:"-" yaml:"-"`

	once     sync.Once
	pages    int
	pagesErr error
	fpOnce   sync.Once
	fp       string
}

// NewSourceDocument wraps data read from name.
func NewSourceDocument(name string, data []byte) *SourceDocument {
	return &SourceDocument{
		Name: filepath.Base(name),
		Path: name,
		Size: int64(len(data)),
		Data: data,
	}
}

// WithPageCount returns d with its page count already resolved. It is used
// when the count is known from a cache or from the caller.
func (d *SourceDocument) WithPageCount(n int) *SourceDocument {
	d.once.Do(func() { d.pages = n })
	return d
}

// PageCount lazily resolves the page count through counter. The first
// call decides the result; later calls return the memoized value.
func (d *SourceDocument) PageCount(ctx context.Context, counter PageCounter) (int, error) {
	d.once.Do(func() {
		n, err := counter.PageCount(ctx, d.Data)
		if err != nil {
			d.pagesErr = fmt.Errorf("counting pages of %s: %w", d.Name, err)
			return
		}
		d.pages = n
	})
	return d.pages, d.pagesErr
}

// Fingerprint returns the hex SHA-256 digest of the document bytes.
func (d *SourceDocument) Fingerprint() string {
	d.fpOnce.Do(func() { d.fp = Fingerprint(d.Data) })
	return d.fp
}

// Fingerprint returns the hex SHA-256 digest of data. Documents with equal
// fingerprints are treated as the same document regardless of name.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BaseName returns the document name without a trailing ".pdf".
func (d *SourceDocument) BaseName() string {
	return BaseName(d.Name)
}

// BaseName strips a trailing ".pdf" (any case) from the base of name.
// Other extensions are kept.
func BaseName(name string) string {
	name = filepath.Base(name)
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return name[:len(name)-len(".pdf")]
	}
	return name
}

// Thumbnail is one rasterized page preview produced by a rendering
// collaborator.
type Thumbnail struct {
	// PageNumber is the 1-based page the image was rendered from.
	PageNumber int `json:"page_number" yaml:"page_number"`

	// Image holds the encoded raster image.
	Image []byte `json:"-" yaml:"-"`
}
