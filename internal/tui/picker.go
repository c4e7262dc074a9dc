// Package tui provides the interactive picker surface: an abstract list
// picker with a text input, plus its bubbletea implementation. Engines
// depend only on the Picker interface so they can be driven headlessly
// in tests.
package tui

// Item is a single rendered row of a picker list.
type Item struct {
	Label       string
	Description string
	Detail      string
}

// Buttons the picker can trigger on the highlighted item.
const (
	ButtonDelete   = "delete"
	ButtonRename   = "rename"
	ButtonCopyPath = "copy-path"
)

// Picker is the host UI surface the engines drive: a title, a busy flag, a
// filterable item list, and a text-input field. Value changes are delivered
// as explicit (previous, current) transition pairs so consumers never have
// to track the prior input themselves.
type Picker interface {
	SetTitle(title string)
	SetPlaceholder(text string)
	SetBusy(busy bool)
	SetItems(items []Item)

	// SetValue replaces the input text programmatically and fires the
	// value-changed hook, which lets path traversal chain.
	SetValue(value string)
	Value() string

	// Highlighted returns the index of the highlighted item, if any.
	Highlighted() (int, bool)

	Show()
	Hide()
	Dispose()

	OnValueChanged(fn func(previous, current string))
	OnAccept(fn func())
	OnHide(fn func())
	OnButtonTriggered(fn func(button string))
}
