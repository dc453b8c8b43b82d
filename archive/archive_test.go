package archive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/searchtree/resource"
)

func readAll(t *testing.T, s Store, name string) string {
	t.Helper()
	rc, err := s.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Open(ctx, "missing.xml")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "news/1.xml", []byte("<News/>")))
	require.NoError(t, s.Put(ctx, "news/2.xml", []byte("<News></News>")))
	require.NoError(t, s.Put(ctx, "web/1.xml", []byte("<Web/>")))

	assert.Equal(t, "<News/>", readAll(t, s, "news/1.xml"))

	require.NoError(t, s.Put(ctx, "news/1.xml", []byte("<News Total=\"1\"/>")))
	assert.Equal(t, "<News Total=\"1\"/>", readAll(t, s, "news/1.xml"))

	names, err := s.List(ctx, "news/")
	require.NoError(t, err)
	assert.Equal(t, []string{"news/1.xml", "news/2.xml"}, names)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.Delete(ctx, "news/2.xml"))
	require.NoError(t, s.Delete(ctx, "news/2.xml"))
	_, err = s.Open(ctx, "news/2.xml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	testStore(t, NewLocalStore(dir))

	_, err := os.Stat(filepath.Join(dir, "web", "1.xml"))
	require.NoError(t, err)
}

func TestLocalStore_MissingRoot(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "absent"))
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCachingStore(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	inner := NewMemoryStore()
	s := NewCachingStore(inner, 1024, rc)
	testStore(t, s)

	ctx := context.Background()
	require.NoError(t, inner.Put(ctx, "img.xml", []byte("<Image/>")))

	assert.Equal(t, "<Image/>", readAll(t, s, "img.xml"))
	assert.Equal(t, "<Image/>", readAll(t, s, "img.xml"))
	hits, _ := s.Stats()
	assert.Positive(t, hits)
	assert.Positive(t, rc.MemoryUsage())

	// writes through the wrapper invalidate
	require.NoError(t, s.Put(ctx, "img.xml", []byte("<Image Total=\"3\"/>")))
	assert.Equal(t, "<Image Total=\"3\"/>", readAll(t, s, "img.xml"))

	s.Purge()
	assert.Zero(t, rc.MemoryUsage())
}
