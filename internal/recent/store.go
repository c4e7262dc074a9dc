// Package recent keeps the ordered, de-duplicated, capacity-bounded list of
// visited paths. The store consumes the navigator's directory-visited and
// file-opened events and persists across sessions as a yaml file under the
// user config directory.
package recent

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"pathpick/internal/log"
)

// Entry is one visited path.
type Entry struct {
	Path  string `yaml:"path"`
	IsDir bool   `yaml:"is_dir"`
}

// Store is a bounded most-recently-used list. All methods are safe for
// concurrent use.
type Store struct {
	mu      sync.Mutex
	max     int
	file    string
	entries []Entry
}

// NewStore creates a store persisted at file with the given capacity,
// loading any existing saved list. A missing or unreadable file yields an
// empty store.
func NewStore(file string, max int) *Store {
	s := &Store{max: max, file: file}
	s.load()
	return s
}

// Add records a visit, moving an existing entry to the front and trimming
// to capacity.
func (s *Store) Add(path string, isDir bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.Path == path {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.entries = append([]Entry{{Path: path, IsDir: isDir}}, s.entries...)
	if len(s.entries) > s.max {
		s.entries = s.entries[:s.max]
	}
	s.save()
}

// Remove drops a path from the list, e.g. after the user confirms a stale
// entry should go.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.Path == path {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.save()
			return
		}
	}
}

// List returns the entries, most recent first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) load() {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug("could not read recent entries: %v", err)
		}
		return
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		log.Warn("could not parse recent entries, starting empty: %v", err)
		return
	}
	if len(entries) > s.max {
		entries = entries[:s.max]
	}
	s.entries = entries
}

// save is best-effort: persistence failures never interrupt a session.
func (s *Store) save() {
	data, err := yaml.Marshal(s.entries)
	if err != nil {
		log.Warn("could not marshal recent entries: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.file), 0755); err != nil {
		log.Debug("could not create recent entries directory: %v", err)
		return
	}
	if err := os.WriteFile(s.file, data, 0644); err != nil {
		log.Debug("could not write recent entries: %v", err)
	}
}
