package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForChange(t *testing.T, r *Refresher) string {
	t.Helper()
	select {
	case dir := <-r.Changes():
		return dir
	case <-time.After(2 * time.Second):
		t.Fatal("no change signal delivered")
		return ""
	}
}

func TestRefresherSignalsOnCreate(t *testing.T) {
	dir := t.TempDir()

	r, err := NewRefresher()
	require.NoError(t, err)
	defer r.Stop()

	r.SetDirectory(dir)
	r.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), nil, 0644))

	assert.Equal(t, dir, waitForChange(t, r))
}

func TestRefresherSignalsOnRemove(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "old.txt")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	r, err := NewRefresher()
	require.NoError(t, err)
	defer r.Stop()

	r.SetDirectory(dir)
	r.Start()

	require.NoError(t, os.Remove(file))

	assert.Equal(t, dir, waitForChange(t, r))
}

func TestSetDirectoryRepinsWatch(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()

	r, err := NewRefresher()
	require.NoError(t, err)
	defer r.Stop()

	r.SetDirectory(first)
	r.Start()
	r.SetDirectory(second)

	require.NoError(t, os.WriteFile(filepath.Join(second, "new.txt"), nil, 0644))

	assert.Equal(t, second, waitForChange(t, r))
}

func TestSetDirectoryMissingDirDegrades(t *testing.T) {
	r, err := NewRefresher()
	require.NoError(t, err)
	defer r.Stop()

	// A failed watch leaves auto-refresh off without breaking anything.
	r.SetDirectory(filepath.Join(t.TempDir(), "gone"))
	r.Start()

	select {
	case dir := <-r.Changes():
		t.Fatalf("unexpected change signal for %s", dir)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStopClosesChanges(t *testing.T) {
	r, err := NewRefresher()
	require.NoError(t, err)

	r.Start()
	r.Stop()

	select {
	case _, ok := <-r.Changes():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("changes channel not closed after Stop")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	r, err := NewRefresher()
	require.NoError(t, err)

	r.Start()
	r.Stop()
	r.Stop()
}
