// Package search implements the project full-text search engine: one file
// enumeration per session, then debounced, generation-stamped, cancellable
// content scans executed in bounded-concurrency batches.
package search

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"pathpick/internal/config"
	"pathpick/internal/exclude"
	"pathpick/internal/log"
)

// Config holds the engine limits. Zero values are not usable; build one
// with ConfigFrom or DefaultConfig.
type Config struct {
	MaxFiles          int
	MaxFileSize       int64
	MaxMatchesPerFile int
	MaxResults        int
	Debounce          time.Duration
	BatchSize         int
	MinQueryLength    int
}

// DefaultConfig returns the stock engine limits.
func DefaultConfig() Config {
	return ConfigFrom(config.New())
}

// ConfigFrom maps the application configuration onto engine limits.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MaxFiles:          cfg.Search.MaxFiles,
		MaxFileSize:       int64(cfg.Search.MaxFileSizeKB) * 1024,
		MaxMatchesPerFile: cfg.Search.MaxMatchesPerFile,
		MaxResults:        cfg.Search.MaxResults,
		Debounce:          time.Duration(cfg.Search.DebounceMS) * time.Millisecond,
		BatchSize:         cfg.Search.BatchSize,
		MinQueryLength:    cfg.Search.MinQueryLength,
	}
}

// Result is a single content match. Results are rebuilt per search
// generation and indexed 1:1 with the rendered picker items.
type Result struct {
	File    string // absolute path
	Line    int    // 1-based
	Column  int    // 1-based offset of the folded match + 1
	Content string // trimmed line text
}

// Engine runs content scans over a session's candidate file list. The
// generation counter is the cancellation token: every asynchronous unit of
// work captures it at dispatch time and compares before publishing; a
// mismatch means the work is stale and its output is discarded.
type Engine struct {
	cfg Config

	mu         sync.Mutex
	root       string
	files      []string
	generation int64
	results    []Result
	debounce   *time.Timer

	// pubMu serializes publication: the generation check and the sink call
	// happen under it as one step, so a superseded scan can never deliver
	// its snapshot after a newer one.
	pubMu sync.Mutex

	onResults func(query string, results []Result)
	onBusy    func(busy bool)
}

// NewEngine creates an engine with the given limits.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// OnResults registers the sink that receives committed result snapshots.
// Called from the scan goroutine.
func (e *Engine) OnResults(fn func(query string, results []Result)) {
	e.onResults = fn
}

// OnBusy registers the busy-flag sink.
func (e *Engine) OnBusy(fn func(busy bool)) {
	e.onBusy = fn
}

// StartSession resets the engine and enumerates candidate files once for
// the session's lifetime. Enumeration failure degrades to an empty
// candidate list rather than an error.
func (e *Engine) StartSession(root string, spec *exclude.Spec) {
	files := enumerate(root, spec, e.cfg.MaxFiles)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.root = root
	e.files = files
	e.generation = 0
	e.results = nil
}

// enumerate walks root recursively, applying the exclude spec and stopping
// at the candidate cap. Unreadable subtrees are skipped.
func enumerate(root string, spec *exclude.Spec, maxFiles int) []string {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			if spec.Match(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || spec.Match(rel) {
			return nil
		}
		files = append(files, path)
		if len(files) >= maxFiles {
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		log.LogWithFields(log.F("root", root), log.F("error", err)).Warn("file enumeration failed")
		return nil
	}
	return files
}

// Files returns the session's candidate file list in enumeration order.
// The same list backs the file-name picker.
func (e *Engine) Files() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.files))
	copy(out, e.files)
	return out
}

// Results returns the current committed results; the slice index maps back
// to the rendered item index.
func (e *Engine) Results() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Result, len(e.results))
	copy(out, e.results)
	return out
}

// QueryChanged handles a raw query edit. Queries shorter than the minimum
// length clear the results synchronously with no timer scheduled; anything
// else restarts the debounce timer.
func (e *Engine) QueryChanged(text string) {
	query := strings.TrimSpace(text)

	e.mu.Lock()
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
	if utf8.RuneCountInString(query) < e.cfg.MinQueryLength {
		// Invalidate any in-flight scan and clear.
		e.generation++
		e.results = nil
		e.mu.Unlock()
		e.pubMu.Lock()
		if e.onResults != nil {
			e.onResults(query, nil)
		}
		e.pubMu.Unlock()
		return
	}
	e.debounce = time.AfterFunc(e.cfg.Debounce, func() {
		e.RunSearch(query)
	})
	e.mu.Unlock()
}

// RunSearch executes one cancellable scan over the cached file list.
// Batches run sequentially, the files inside a batch concurrently; results
// are committed only from the batch loop so partial renders never
// interleave across batches.
func (e *Engine) RunSearch(query string) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	files := e.files
	e.mu.Unlock()

	if e.onBusy != nil {
		e.onBusy(true)
		defer e.onBusy(false)
	}

	folded := strings.ToLower(query)
	var collected []Result

	for start := 0; start < len(files); start += e.cfg.BatchSize {
		if e.stale(gen) {
			return
		}
		end := start + e.cfg.BatchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]

		perFile := make([][]Result, len(batch))
		var wg sync.WaitGroup
		for i, path := range batch {
			wg.Add(1)
			go func(i int, path string) {
				defer wg.Done()
				perFile[i] = e.scanFile(path, folded)
			}(i, path)
		}
		wg.Wait()

		done := false
		for _, rs := range perFile {
			if e.stale(gen) {
				return
			}
			for _, r := range rs {
				collected = append(collected, r)
				if len(collected) >= e.cfg.MaxResults {
					done = true
					break
				}
			}
			if done {
				break
			}
		}

		if !e.commit(gen, query, collected) {
			return
		}
		if done {
			return
		}
	}
}

// commit publishes a result snapshot if the captured generation is still
// live. The check and the sink call are one atomic step under pubMu.
func (e *Engine) commit(gen int64, query string, results []Result) bool {
	snapshot := make([]Result, len(results))
	copy(snapshot, results)

	e.pubMu.Lock()
	defer e.pubMu.Unlock()

	e.mu.Lock()
	if gen != e.generation {
		e.mu.Unlock()
		return false
	}
	e.results = snapshot
	e.mu.Unlock()

	if e.onResults != nil {
		e.onResults(query, snapshot)
	}
	return true
}

func (e *Engine) stale(gen int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen != e.generation
}

// scanFile scans one file for the folded query. Every failure path yields
// no results; a single bad file never aborts the session.
func (e *Engine) scanFile(path, folded string) []Result {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() > e.cfg.MaxFileSize {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if bytes.IndexByte(data, 0) >= 0 {
		// Binary heuristic: NUL byte means skip.
		return nil
	}

	var out []Result
	for i, line := range strings.Split(string(data), "\n") {
		idx := strings.Index(strings.ToLower(line), folded)
		if idx < 0 {
			continue
		}
		out = append(out, Result{
			File:    path,
			Line:    i + 1,
			Column:  idx + 1,
			Content: strings.TrimSpace(line),
		})
		if len(out) >= e.cfg.MaxMatchesPerFile {
			break
		}
	}
	return out
}

// Cancel invalidates the live generation and stops any pending debounce;
// in-flight file reads finish but their output is discarded at the next
// generation check.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
}

// Close tears the session down: cancels, then clears caches. Stragglers
// completing after teardown detect the generation mismatch and no-op.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
	e.root = ""
	e.files = nil
	e.results = nil
}
