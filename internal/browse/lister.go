package browse

import (
	"os"
	"sort"

	serr "pathpick/internal/errors"
)

// Entry is one row of a directory listing. Entries are ephemeral and are
// rebuilt on every read.
type Entry struct {
	Name  string
	IsDir bool
}

// List reads a single directory level and returns its entries ordered with
// directories first, then files, each group sorted case-sensitively
// ascending by name. An empty directory yields an empty slice, not an error.
func List(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		kind := serr.FileAccessDenied
		if os.IsNotExist(err) {
			kind = serr.FileNotFound
		}
		return nil, serr.NewFileError("failed to read directory", dir, kind, err)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		entries = append(entries, Entry{Name: de.Name(), IsDir: de.IsDir()})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}
