package browse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serr "pathpick/internal/errors"
)

func TestListOrdersDirectoriesFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "B"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ts"), nil, 0644))

	entries, err := List(dir)
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Name: ".git", IsDir: true}, entries[0])
	assert.Equal(t, Entry{Name: "B", IsDir: true}, entries[1])
	assert.Equal(t, Entry{Name: "a.ts", IsDir: false}, entries[2])
}

func TestListSortsWithinGroups(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"zeta", "alpha"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0755))
	}
	for _, f := range []string{"c.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0644))
	}

	entries, err := List(dir)
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"alpha", "zeta", "b.txt", "c.txt"}, names)
}

func TestListEmptyDirectory(t *testing.T) {
	entries, err := List(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListMissingDirectory(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
	assert.True(t, serr.IsFileNotFound(err))
}
