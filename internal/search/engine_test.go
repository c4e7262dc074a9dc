package search

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathpick/internal/exclude"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Debounce = 5 * time.Millisecond
	return cfg
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func startSession(t *testing.T, e *Engine, root string) {
	t.Helper()
	e.StartSession(root, exclude.Build(root, ".gitignore", nil))
}

// recorder collects result callbacks for assertion.
type recorder struct {
	mu      sync.Mutex
	queries []string
	batches [][]Result
}

func (r *recorder) sink(query string, results []Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	r.batches = append(r.batches, results)
}

func (r *recorder) lastQuery() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queries) == 0 {
		return "", false
	}
	return r.queries[len(r.queries)-1], true
}

func TestStartSessionEnumeratesOnce(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.txt":               "alpha",
		"sub/b.txt":           "beta",
		".git/config":         "ignored",
		"node_modules/m/x.js": "ignored",
		"vendor/lib/y.go":     "ignored",
		"assets/app.min.js":   "ignored",
	})

	e := NewEngine(testConfig())
	startSession(t, e, root)

	files := e.Files()
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "a.txt"), files[0])
	assert.Equal(t, filepath.Join(root, "sub", "b.txt"), files[1])
}

func TestStartSessionHonorsFileCap(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFiles(t, root, map[string]string{
			strings.Repeat("f", i+1) + ".txt": "x",
		})
	}

	cfg := testConfig()
	cfg.MaxFiles = 4
	e := NewEngine(cfg)
	startSession(t, e, root)

	assert.Len(t, e.Files(), 4)
}

func TestStartSessionMissingRoot(t *testing.T) {
	e := NewEngine(testConfig())
	startSession(t, e, filepath.Join(t.TempDir(), "gone"))

	assert.Empty(t, e.Files())
}

func TestShortQueryClearsSynchronously(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "needle"})

	e := NewEngine(testConfig())
	startSession(t, e, root)

	rec := &recorder{}
	e.OnResults(rec.sink)

	e.QueryChanged("n")

	// The clear is published before QueryChanged returns; no timer runs.
	require.Len(t, rec.queries, 1)
	assert.Equal(t, "n", rec.queries[0])
	assert.Empty(t, rec.batches[0])
	assert.Empty(t, e.Results())
}

func TestWhitespaceOnlyQueryClears(t *testing.T) {
	e := NewEngine(testConfig())
	startSession(t, e, t.TempDir())

	rec := &recorder{}
	e.OnResults(rec.sink)

	e.QueryChanged("   ")

	require.Len(t, rec.queries, 1)
	assert.Equal(t, "", rec.queries[0])
}

func TestRunSearchMatchCaps(t *testing.T) {
	root := t.TempDir()
	var many strings.Builder
	for i := 0; i < 15; i++ {
		many.WriteString("needle line\n")
	}
	writeFiles(t, root, map[string]string{
		"file1.txt": "needle one\nno match\nneedle two\n",
		"file2.txt": "nothing here\n",
		"file3.txt": many.String(),
	})

	e := NewEngine(testConfig())
	startSession(t, e, root)

	e.RunSearch("needle")

	results := e.Results()
	require.Len(t, results, 12)

	// file1's two hits come first, in line order.
	assert.Equal(t, filepath.Join(root, "file1.txt"), results[0].File)
	assert.Equal(t, 1, results[0].Line)
	assert.Equal(t, filepath.Join(root, "file1.txt"), results[1].File)
	assert.Equal(t, 3, results[1].Line)

	// file3 is capped at ten matches, its first ten lines.
	for i, r := range results[2:] {
		assert.Equal(t, filepath.Join(root, "file3.txt"), r.File)
		assert.Equal(t, i+1, r.Line)
	}
}

func TestRunSearchLineColumnContent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.txt": "first\n  found NEEDLE here  \nlast\n",
	})

	e := NewEngine(testConfig())
	startSession(t, e, root)

	e.RunSearch("needle")

	results := e.Results()
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Line)
	assert.Equal(t, strings.Index("  found needle here  ", "needle")+1, results[0].Column)
	assert.Equal(t, "found NEEDLE here", results[0].Content)
}

func TestRunSearchSkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"bin.dat":  "needle\x00needle",
		"text.txt": "needle\n",
	})

	e := NewEngine(testConfig())
	startSession(t, e, root)

	e.RunSearch("needle")

	results := e.Results()
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(root, "text.txt"), results[0].File)
}

func TestRunSearchSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"big.txt":   "needle " + strings.Repeat("x", 4096) + "\n",
		"small.txt": "needle\n",
	})

	cfg := testConfig()
	cfg.MaxFileSize = 1024
	e := NewEngine(cfg)
	startSession(t, e, root)

	e.RunSearch("needle")

	results := e.Results()
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(root, "small.txt"), results[0].File)
}

func TestRunSearchTotalResultCap(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 30; i++ {
		files[strings.Repeat("a", i+1)+".txt"] = "needle\nneedle\n"
	}
	writeFiles(t, root, files)

	cfg := testConfig()
	cfg.MaxResults = 7
	e := NewEngine(cfg)
	startSession(t, e, root)

	e.RunSearch("needle")

	assert.Len(t, e.Results(), 7)
}

func TestRunSearchResultsFollowEnumerationOrder(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.txt": "needle\n",
		"b.txt": "needle\n",
		"c.txt": "needle\n",
	})

	cfg := testConfig()
	cfg.BatchSize = 1
	e := NewEngine(cfg)
	startSession(t, e, root)

	e.RunSearch("needle")

	results := e.Results()
	require.Len(t, results, 3)
	assert.Equal(t, filepath.Join(root, "a.txt"), results[0].File)
	assert.Equal(t, filepath.Join(root, "b.txt"), results[1].File)
	assert.Equal(t, filepath.Join(root, "c.txt"), results[2].File)
}

func TestDebouncedQuerySupersedes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "first\nsecond\n"})

	cfg := testConfig()
	cfg.Debounce = 20 * time.Millisecond
	e := NewEngine(cfg)
	startSession(t, e, root)

	rec := &recorder{}
	e.OnResults(rec.sink)

	e.QueryChanged("first")
	e.QueryChanged("second")

	require.Eventually(t, func() bool {
		q, ok := rec.lastQuery()
		return ok && q == "second"
	}, time.Second, 5*time.Millisecond)

	results := e.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "second", results[0].Content)

	// The superseded query never commits.
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.NotContains(t, rec.queries, "first")
}

func TestSupersededScanNeverDeliversLast(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "first\nsecond\n"})

	e := NewEngine(testConfig())
	startSession(t, e, root)

	var mu sync.Mutex
	var order []string
	firstStalled := make(chan struct{})
	release := make(chan struct{})
	e.OnResults(func(query string, results []Result) {
		mu.Lock()
		order = append(order, query)
		mu.Unlock()
		if query == "first" {
			// Stall delivery after the generation check has passed.
			close(firstStalled)
			<-release
		}
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.RunSearch("first")
	}()
	<-firstStalled
	go func() {
		defer wg.Done()
		e.RunSearch("second")
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// The newer scan's snapshot is always the one delivered last.
	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, order)
	assert.Equal(t, "second", order[len(order)-1])

	results := e.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "second", results[0].Content)
}

func TestCancelDiscardsStaleCommit(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "needle\n"})

	e := NewEngine(testConfig())
	startSession(t, e, root)

	e.RunSearch("needle")
	require.Len(t, e.Results(), 1)

	e.Cancel()

	// A commit captured before the cancel is rejected.
	assert.False(t, e.commit(1, "needle", []Result{{File: "x"}}))
}

func TestCloseClearsSession(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "needle\n"})

	e := NewEngine(testConfig())
	startSession(t, e, root)
	e.RunSearch("needle")

	e.Close()

	assert.Empty(t, e.Files())
	assert.Empty(t, e.Results())
}

func TestOnBusyBracketsScan(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "needle\n"})

	e := NewEngine(testConfig())
	startSession(t, e, root)

	var states []bool
	e.OnBusy(func(busy bool) { states = append(states, busy) })

	e.RunSearch("needle")

	assert.Equal(t, []bool{true, false}, states)
}
