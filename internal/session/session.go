// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the per-invocation state shared by the planners:
// the busy flag that rejects overlapping operations, progress reporting,
// and the loaded source documents.
package session

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pdiddy/pagecraft/pkg/types"
)

// ProgressFunc receives progress updates as a percentage (0-100) and a
// short message. Calls are synchronous.
type ProgressFunc func(percent int, message string)

// Report calls p when it is non-nil.
func (p ProgressFunc) Report(percent int, message string) {
	if p != nil {
		p(percent, message)
	}
}

// Percent returns the whole percentage of done out of total.
func Percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}

// Guard is a busy flag. Only one operation may hold it at a time; there
// is no queueing.
type Guard struct {
	mu      sync.Mutex
	running string
}

// Begin marks op as running. It fails with types.ErrBusy when another
// operation holds the flag.
func (g *Guard) Begin(op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running != "" {
		return fmt.Errorf("%w: %s", types.ErrBusy, g.running)
	}
	g.running = op
	return nil
}

// End clears the flag.
func (g *Guard) End() {
	g.mu.Lock()
	g.running = ""
	g.mu.Unlock()
}

// Cancel clears the flag so a new operation can start. Work already in
// flight is not aborted; it is only no longer reported as running.
func (g *Guard) Cancel() {
	g.End()
}

// Running returns the name of the running operation, or "".
func (g *Guard) Running() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Session is one user session: an id for log correlation, resource
// limits, the busy flag shared by its planners, and the documents loaded
// so far.
type Session struct {
	ID     string
	Limits types.LimitsConfig
	Busy   *Guard

	docs []*types.SourceDocument
}

// New creates a session with a fresh random id.
func New(limits types.LimitsConfig) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Limits: limits.WithDefaults(),
		Busy:   &Guard{},
	}
}

// LoadDocument reads path, enforcing the accepted extension and the
// per-file size cap, and adds it to the session.
func (s *Session) LoadDocument(path string, ext string) (*types.SourceDocument, error) {
	if !strings.EqualFold(filepath.Ext(path), ext) {
		return nil, fmt.Errorf("%w: %s (want %s)", types.ErrUnsupportedType, filepath.Base(path), ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrSourceRead, err)
	}
	if info.Size() > s.Limits.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %s (limit %s)", types.ErrFileTooLarge,
			filepath.Base(path), types.FormatSize(info.Size()), types.FormatSize(s.Limits.MaxFileSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrSourceRead, path, err)
	}

	doc := types.NewSourceDocument(path, data)
	s.docs = append(s.docs, doc)
	return doc, nil
}

// LoadReader reads a document from r under name, enforcing the size cap.
func (s *Session) LoadReader(name string, r io.Reader) (*types.SourceDocument, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.Limits.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrSourceRead, name, err)
	}
	if int64(len(data)) > s.Limits.MaxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds %s", types.ErrFileTooLarge, name, types.FormatSize(s.Limits.MaxFileSize))
	}
	doc := types.NewSourceDocument(name, data)
	s.docs = append(s.docs, doc)
	return doc, nil
}

// Documents returns the loaded documents in load order.
func (s *Session) Documents() []*types.SourceDocument {
	return append([]*types.SourceDocument(nil), s.docs...)
}

// Clear discards every loaded document.
func (s *Session) Clear() {
	s.docs = nil
}
