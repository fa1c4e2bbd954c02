// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pagecraft/pkg/types"
)

// fakeCounter counts calls and derives the page count from data length.
type fakeCounter struct {
	calls int
	err   error
}

func (f *fakeCounter) PageCount(ctx context.Context, data []byte) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return len(data), nil
}

// fakeRenderer returns one thumbnail per byte of data, in reverse order.
type fakeRenderer struct {
	calls int
}

func (f *fakeRenderer) Render(ctx context.Context, data []byte) ([]types.Thumbnail, error) {
	f.calls++
	var out []types.Thumbnail
	for i := len(data); i >= 1; i-- {
		out = append(out, types.Thumbnail{PageNumber: i, Image: []byte{data[i-1]}})
	}
	return out, nil
}

func openStore(t *testing.T, cfg types.CacheConfig) *Store {
	t.Helper()
	s, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCounter_CachesByContent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, types.CacheConfig{})
	inner := &fakeCounter{}
	c := s.Counter(inner)

	n, err := c.PageCount(ctx, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Same bytes under a different name: served from the cache.
	a := types.NewSourceDocument("a.pdf", []byte("abc"))
	n, err = a.PageCount(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, inner.calls)

	// Same size, different content: a miss.
	n, err = c.PageCount(ctx, []byte("xyz"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, inner.calls)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Documents: 2, Hits: 1, Misses: 2}, st)
}

func TestCounter_DoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, types.CacheConfig{})
	inner := &fakeCounter{err: types.ErrSourceRead}
	c := s.Counter(inner)

	_, err := c.PageCount(ctx, []byte("bad"))
	assert.ErrorIs(t, err, types.ErrSourceRead)

	inner.err = nil
	n, err := c.PageCount(ctx, []byte("bad"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, inner.calls)
}

func TestThumbnails(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, types.CacheConfig{})
	r := &fakeRenderer{}
	doc := types.NewSourceDocument("deck.pdf", []byte("xyz"))

	thumbs, err := s.Thumbnails(ctx, doc, r)
	require.NoError(t, err)
	require.Len(t, thumbs, 3)
	for i, th := range thumbs {
		assert.Equal(t, i+1, th.PageNumber)
	}
	assert.Equal(t, []byte("x"), thumbs[0].Image)

	again, err := s.Thumbnails(ctx, types.NewSourceDocument("renamed.pdf", []byte("xyz")), r)
	require.NoError(t, err)
	assert.Equal(t, thumbs, again)
	assert.Equal(t, 1, r.calls)
}

func TestThumbnails_RenderError(t *testing.T) {
	s := openStore(t, types.CacheConfig{})
	_, err := s.Thumbnails(context.Background(), types.NewSourceDocument("a.pdf", []byte("a")), failingRenderer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.pdf")

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Documents)
}

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, []byte) ([]types.Thumbnail, error) {
	return nil, errors.New("rasterizer unavailable")
}

func TestForgetAndClear(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, types.CacheConfig{})
	a := types.NewSourceDocument("a.pdf", []byte("aa"))
	b := types.NewSourceDocument("b.pdf", []byte("bbb"))
	for _, d := range []*types.SourceDocument{a, b} {
		_, err := s.Thumbnails(ctx, d, &fakeRenderer{})
		require.NoError(t, err)
	}

	require.NoError(t, s.Forget(ctx, a.Fingerprint()))
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Documents)
	assert.Equal(t, 3, st.Thumbnails)

	require.NoError(t, s.Clear(ctx))
	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Documents)
	assert.Zero(t, st.Thumbnails)
}

func TestOpen_PersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(types.CacheConfig{Path: path})
	require.NoError(t, err)
	_, err = s.Counter(&fakeCounter{}).PageCount(ctx, []byte("four"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened := openStore(t, types.CacheConfig{Path: path})
	inner := &fakeCounter{}
	n, err := reopened.Counter(inner).PageCount(ctx, []byte("four"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Zero(t, inner.calls)
}

func TestOpen_InMemoryStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	first := openStore(t, types.CacheConfig{})
	second := openStore(t, types.CacheConfig{})

	_, err := first.Counter(&fakeCounter{}).PageCount(ctx, []byte("x"))
	require.NoError(t, err)

	st, err := second.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Documents)
}
