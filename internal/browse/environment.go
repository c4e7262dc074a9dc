package browse

import (
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
)

// Environment supplies the host primitives the navigator depends on:
// resolution inputs for the start path, clipboard access, and the modal
// confirm/prompt/message surfaces.
type Environment interface {
	// ActiveDocumentPath returns the path of the focused editor document,
	// or "" when there is none.
	ActiveDocumentPath() string
	// WorkspaceRoot returns the first workspace root, or "".
	WorkspaceRoot() string
	// HomeDir returns the user's home directory, or "".
	HomeDir() string

	ClipboardWrite(text string) error
	// Confirm shows a modal yes/no prompt.
	Confirm(prompt string) bool
	// Prompt asks for a line of input pre-filled with initial; the selection
	// range marks the portion offered for replacement. ok is false when the
	// user cancelled.
	Prompt(prompt, initial string, selStart, selEnd int) (value string, ok bool)
	// ShowMessage surfaces a non-fatal, user-actionable message.
	ShowMessage(msg string)
}

// OSEnvironment is the default Environment for CLI use. The modal surfaces
// are pluggable hooks because they are owned by whatever UI is on screen.
type OSEnvironment struct {
	ActiveDocument string
	Workspace      string

	ConfirmFunc func(prompt string) bool
	PromptFunc  func(prompt, initial string, selStart, selEnd int) (string, bool)
	MessageFunc func(msg string)
}

func (e *OSEnvironment) ActiveDocumentPath() string { return e.ActiveDocument }

func (e *OSEnvironment) WorkspaceRoot() string { return e.Workspace }

func (e *OSEnvironment) HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func (e *OSEnvironment) ClipboardWrite(text string) error {
	return clipboard.WriteAll(text)
}

func (e *OSEnvironment) Confirm(prompt string) bool {
	if e.ConfirmFunc != nil {
		return e.ConfirmFunc(prompt)
	}
	return false
}

func (e *OSEnvironment) Prompt(prompt, initial string, selStart, selEnd int) (string, bool) {
	if e.PromptFunc != nil {
		return e.PromptFunc(prompt, initial, selStart, selEnd)
	}
	return "", false
}

func (e *OSEnvironment) ShowMessage(msg string) {
	if e.MessageFunc != nil {
		e.MessageFunc(msg)
	}
}

// ResolveStartPath computes the initial browsing root. Fallback order, first
// success wins: directory of the active document when it is a real file, the
// workspace root, the home directory, the filesystem root.
func ResolveStartPath(env Environment) string {
	if doc := env.ActiveDocumentPath(); doc != "" {
		if info, err := os.Stat(doc); err == nil && info.Mode().IsRegular() {
			return filepath.Dir(doc)
		}
	}
	if ws := env.WorkspaceRoot(); ws != "" {
		if info, err := os.Stat(ws); err == nil && info.IsDir() {
			return ws
		}
	}
	if home := env.HomeDir(); home != "" {
		return home
	}
	return string(filepath.Separator)
}
