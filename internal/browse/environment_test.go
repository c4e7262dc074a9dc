package browse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStartPathPrefersActiveDocument(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(doc, nil, 0644))

	env := &fakeEnv{activeDoc: doc, workspace: t.TempDir(), home: t.TempDir()}

	assert.Equal(t, dir, ResolveStartPath(env))
}

func TestResolveStartPathSkipsMissingDocument(t *testing.T) {
	ws := t.TempDir()
	env := &fakeEnv{activeDoc: filepath.Join(ws, "gone.go"), workspace: ws, home: t.TempDir()}

	assert.Equal(t, ws, ResolveStartPath(env))
}

func TestResolveStartPathSkipsDirectoryDocument(t *testing.T) {
	ws := t.TempDir()
	env := &fakeEnv{activeDoc: t.TempDir(), workspace: ws}

	assert.Equal(t, ws, ResolveStartPath(env))
}

func TestResolveStartPathFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	env := &fakeEnv{workspace: filepath.Join(home, "missing"), home: home}

	assert.Equal(t, home, ResolveStartPath(env))
}

func TestResolveStartPathLastResortIsRoot(t *testing.T) {
	env := &fakeEnv{}

	assert.Equal(t, string(filepath.Separator), ResolveStartPath(env))
}
