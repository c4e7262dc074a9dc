package recent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, max int) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "recent.yaml"), max)
}

func TestAddOrdersMostRecentFirst(t *testing.T) {
	s := testStore(t, 50)

	s.Add("/a", false)
	s.Add("/b", true)
	s.Add("/c", false)

	entries := s.List()
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Path: "/c", IsDir: false}, entries[0])
	assert.Equal(t, Entry{Path: "/b", IsDir: true}, entries[1])
	assert.Equal(t, Entry{Path: "/a", IsDir: false}, entries[2])
}

func TestAddDeduplicatesMoveToFront(t *testing.T) {
	s := testStore(t, 50)

	s.Add("/a", false)
	s.Add("/b", false)
	s.Add("/a", false)

	entries := s.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "/a", entries[0].Path)
	assert.Equal(t, "/b", entries[1].Path)
}

func TestAddTrimsToCapacity(t *testing.T) {
	s := testStore(t, 3)

	s.Add("/a", false)
	s.Add("/b", false)
	s.Add("/c", false)
	s.Add("/d", false)

	entries := s.List()
	require.Len(t, entries, 3)
	assert.Equal(t, "/d", entries[0].Path)
	assert.Equal(t, "/b", entries[2].Path)
}

func TestRemove(t *testing.T) {
	s := testStore(t, 50)
	s.Add("/a", false)
	s.Add("/b", false)

	s.Remove("/a")

	entries := s.List()
	require.Len(t, entries, 1)
	assert.Equal(t, "/b", entries[0].Path)

	s.Remove("/nope")
	assert.Equal(t, 1, s.Len())
}

func TestPersistenceRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nested", "recent.yaml")

	s := NewStore(file, 50)
	s.Add("/a", false)
	s.Add("/b", true)

	reloaded := NewStore(file, 50)
	entries := reloaded.List()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Path: "/b", IsDir: true}, entries[0])
	assert.Equal(t, Entry{Path: "/a", IsDir: false}, entries[1])
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.yaml"), 50)

	assert.Zero(t, s.Len())
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	file := filepath.Join(t.TempDir(), "recent.yaml")
	require.NoError(t, os.WriteFile(file, []byte("{not yaml"), 0644))

	s := NewStore(file, 50)

	assert.Zero(t, s.Len())
}

func TestLoadTrimsOversizedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "recent.yaml")

	s := NewStore(file, 10)
	for _, p := range []string{"/a", "/b", "/c", "/d"} {
		s.Add(p, false)
	}

	reloaded := NewStore(file, 2)
	assert.Equal(t, 2, reloaded.Len())
	assert.Equal(t, "/d", reloaded.List()[0].Path)
}
