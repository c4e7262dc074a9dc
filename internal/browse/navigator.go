package browse

import (
	"os"
	"path/filepath"
	"strings"

	serr "pathpick/internal/errors"
	"pathpick/internal/log"
	"pathpick/internal/tui"
)

// Sentinel is the blank marker seeded into the input field after every
// directory change. It distinguishes "input explicitly cleared by the user"
// (a backspace past the marker, which means go up) from "input never
// touched".
const Sentinel = " "

// Navigator owns the browse picker's session state: the current directory,
// its cached entries, and the interpretation of input transitions as
// filter, navigate, or create commands.
type Navigator struct {
	picker tui.Picker
	env    Environment

	dir     string
	entries []Entry
	visible []Entry

	// mutating guards against overlapping delete/rename/create requests;
	// mutations are serialized behind the session state machine.
	mutating bool
	closed   bool

	dirVisited []func(path string)
	fileOpened []func(path string)
}

// NewNavigator creates a navigator bound to a picker and environment.
// Call Start to begin a session.
func NewNavigator(picker tui.Picker, env Environment) *Navigator {
	n := &Navigator{picker: picker, env: env}
	picker.OnValueChanged(n.HandleInput)
	picker.OnAccept(n.Accept)
	picker.OnHide(n.Close)
	picker.OnButtonTriggered(func(button string) {
		switch button {
		case tui.ButtonDelete:
			n.Delete()
		case tui.ButtonRename:
			n.Rename()
		case tui.ButtonCopyPath:
			n.CopyPath()
		}
	})
	return n
}

// OnDirectoryVisited registers a sink for directory-visited events.
func (n *Navigator) OnDirectoryVisited(fn func(path string)) {
	n.dirVisited = append(n.dirVisited, fn)
}

// OnFileOpened registers a sink for file-opened events.
func (n *Navigator) OnFileOpened(fn func(path string)) {
	n.fileOpened = append(n.fileOpened, fn)
}

// Start begins a browsing session rooted at dir.
func (n *Navigator) Start(dir string) {
	n.closed = false
	n.picker.SetPlaceholder("type to filter, path/ to descend, - for parent")
	n.enterDirectory(dir, "", false)
	n.picker.Show()
}

// Dir returns the current directory.
func (n *Navigator) Dir() string {
	return n.dir
}

// HandleInput interprets one input transition. Precedence: up-navigation,
// path auto-traversal, then filtering.
func (n *Navigator) HandleInput(previous, current string) {
	if n.closed {
		return
	}

	if isUpCommand(previous, current) {
		n.navigateUp()
		return
	}

	filter := stripSentinel(current)
	if containsSeparator(filter) {
		segments := splitSegments(filter)
		if segments[0] != "" {
			if child, ok := n.matchDirectory(segments[0]); ok {
				rest := strings.Join(segments[1:], "/")
				n.enterDirectory(filepath.Join(n.dir, child), rest, true)
				return
			}
		}
		// No cached directory matched the first segment; treat the whole
		// input as a filter.
	}

	n.applyFilter(filter)
}

// isUpCommand detects the two up-navigation inputs: the transition from
// exactly the sentinel to truly-empty input, and a literal "-" (optionally
// sentinel-prefixed).
func isUpCommand(previous, current string) bool {
	if current == "" && previous == Sentinel {
		return true
	}
	return stripSentinel(current) == "-"
}

func stripSentinel(value string) string {
	return strings.TrimPrefix(value, Sentinel)
}

func containsSeparator(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// splitSegments keeps empty fields: "a/b/" splits to ["a" "b" ""] so the
// re-seeded remainder preserves the trailing separator.
func splitSegments(s string) []string {
	return strings.Split(sepNormalize(s), "/")
}

func sepNormalize(s string) string {
	return strings.ReplaceAll(s, `\`, "/")
}

// matchDirectory finds a cached subdirectory whose name equals the segment
// case-insensitively. Returns the real (cached) name.
func (n *Navigator) matchDirectory(segment string) (string, bool) {
	for _, e := range n.entries {
		if e.IsDir && strings.EqualFold(e.Name, segment) {
			return e.Name, true
		}
	}
	return "", false
}

// applyFilter renders the cached entries through a case-insensitive
// substring filter. Dotfiles are hidden unless the filter itself starts
// with a dot, in which case only dotfiles are shown.
func (n *Navigator) applyFilter(filter string) {
	hiddenMode := strings.HasPrefix(filter, ".")
	needle := strings.ToLower(filter)

	n.visible = n.visible[:0]
	for _, e := range n.entries {
		hidden := strings.HasPrefix(e.Name, ".")
		if hidden != hiddenMode {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Name), needle) {
			continue
		}
		n.visible = append(n.visible, e)
	}

	items := make([]tui.Item, len(n.visible))
	for i, e := range n.visible {
		items[i] = tui.Item{Label: e.Name}
		if e.IsDir {
			items[i].Description = "dir"
		}
	}
	n.picker.SetItems(items)
}

// Accept resolves the explicit confirm action: descend into or open the
// highlighted entry, or treat non-empty free text as a create request.
func (n *Navigator) Accept() {
	if n.closed {
		return
	}

	if idx, ok := n.picker.Highlighted(); ok && idx >= 0 && idx < len(n.visible) {
		e := n.visible[idx]
		full := filepath.Join(n.dir, e.Name)
		if e.IsDir {
			n.enterDirectory(full, "", true)
		} else {
			n.openFile(full)
		}
		return
	}

	input := strings.TrimSpace(stripSentinel(n.picker.Value()))
	if input == "" {
		return
	}
	n.createOrOpen(input)
}

// createOrOpen handles an accept with no highlighted item: navigate to the
// target if it already exists, otherwise create directories and/or an empty
// file according to the input's shape.
func (n *Navigator) createOrOpen(input string) {
	if !n.beginMutation() {
		return
	}
	defer n.endMutation()

	target := filepath.Join(n.dir, filepath.FromSlash(sepNormalize(input)))

	if info, err := os.Stat(target); err == nil {
		if info.IsDir() {
			n.enterDirectory(target, "", true)
		} else {
			n.openFile(target)
		}
		return
	}

	switch {
	case strings.HasSuffix(input, "/") || strings.HasSuffix(input, `\`):
		if err := os.MkdirAll(target, 0755); err != nil {
			n.fail(serr.NewFileError("could not create directory", target, serr.FileCreateFailed, err))
			return
		}
		n.enterDirectory(target, "", true)

	case containsSeparator(input):
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			n.fail(serr.NewFileError("could not create directories", target, serr.FileCreateFailed, err))
			return
		}
		n.createAndOpen(target)

	default:
		n.createAndOpen(target)
	}
}

func (n *Navigator) createAndOpen(target string) {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		n.fail(serr.NewFileError("could not create file", target, serr.FileCreateFailed, err))
		return
	}
	f.Close()
	n.openFile(target)
}

// Delete removes the highlighted entry after a modal confirmation.
// A failed delete leaves the cached list untouched.
func (n *Navigator) Delete() {
	idx, ok := n.picker.Highlighted()
	if !ok || idx < 0 || idx >= len(n.visible) {
		return
	}
	if !n.beginMutation() {
		return
	}
	defer n.endMutation()

	e := n.visible[idx]
	full := filepath.Join(n.dir, e.Name)
	if !n.env.Confirm("Delete " + e.Name + "?") {
		return
	}

	var err error
	if e.IsDir {
		err = os.RemoveAll(full)
	} else {
		err = os.Remove(full)
	}
	if err != nil {
		n.fail(serr.NewFileError("could not delete", full, serr.FileOperationFailed, err))
		return
	}
	n.Refresh()
}

// Rename prompts for a new name pre-filled with the old one, with the stem
// (name without extension) selected. Empty or unchanged input is a no-op.
func (n *Navigator) Rename() {
	idx, ok := n.picker.Highlighted()
	if !ok || idx < 0 || idx >= len(n.visible) {
		return
	}
	if !n.beginMutation() {
		return
	}
	defer n.endMutation()

	e := n.visible[idx]
	stem := e.Name
	if !e.IsDir {
		stem = strings.TrimSuffix(e.Name, filepath.Ext(e.Name))
	}
	newName, ok := n.env.Prompt("New name", e.Name, 0, len(stem))
	if !ok || newName == "" || newName == e.Name {
		return
	}

	if err := os.Rename(filepath.Join(n.dir, e.Name), filepath.Join(n.dir, newName)); err != nil {
		n.fail(serr.NewFileError("could not rename", filepath.Join(n.dir, e.Name), serr.FileOperationFailed, err))
		return
	}
	n.Refresh()
}

// CopyPath hands the highlighted entry's full path to the clipboard.
// No filesystem mutation.
func (n *Navigator) CopyPath() {
	idx, ok := n.picker.Highlighted()
	if !ok || idx < 0 || idx >= len(n.visible) {
		return
	}
	full := filepath.Join(n.dir, n.visible[idx].Name)
	if err := n.env.ClipboardWrite(full); err != nil {
		n.fail(serr.Wrap(err, "could not copy path"))
	}
}

// fail logs a classified failure and surfaces it to the user; session state
// is left untouched.
func (n *Navigator) fail(err error) {
	log.Debug("%v", err)
	n.env.ShowMessage(err.Error())
}

// Refresh re-reads the current directory and re-applies the current filter.
func (n *Navigator) Refresh() {
	n.loadEntries()
	n.applyFilter(stripSentinel(n.picker.Value()))
}

// Close ends the session.
func (n *Navigator) Close() {
	if n.closed {
		return
	}
	n.closed = true
	n.entries = nil
	n.visible = nil
	n.picker.Dispose()
}

func (n *Navigator) navigateUp() {
	parent := filepath.Dir(n.dir)
	if parent == n.dir {
		// Already at the filesystem root; re-seed and stay put.
		n.picker.SetValue(Sentinel)
		return
	}
	n.enterDirectory(parent, "", true)
}

// enterDirectory switches the session to dir, synchronously re-fetches the
// entry cache, and re-seeds the input with the sentinel plus any pending
// traversal remainder so chained descents keep going.
func (n *Navigator) enterDirectory(dir, pending string, fireEvent bool) {
	n.dir = dir
	n.picker.SetTitle(dir)
	n.loadEntries()
	n.applyFilter("")
	if fireEvent {
		for _, fn := range n.dirVisited {
			fn(dir)
		}
	}
	n.picker.SetValue(Sentinel + pending)
}

func (n *Navigator) loadEntries() {
	entries, err := List(n.dir)
	if err != nil {
		log.LogWithFields(log.F("dir", n.dir), log.F("error", err)).Warn("directory unreadable")
		n.env.ShowMessage("could not read directory: " + err.Error())
		entries = nil
	}
	n.entries = entries
}

func (n *Navigator) openFile(path string) {
	for _, fn := range n.fileOpened {
		fn(path)
	}
	n.picker.Hide()
}

func (n *Navigator) beginMutation() bool {
	if n.mutating {
		n.env.ShowMessage("another file operation is still in progress")
		return false
	}
	n.mutating = true
	return true
}

func (n *Navigator) endMutation() {
	n.mutating = false
}
