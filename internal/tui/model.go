package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pathpick/internal/log"
)

// RefreshMsg asks the picker to re-run its refresh hook, e.g. because the
// watched directory changed on disk. Safe to Send from any goroutine.
type RefreshMsg struct{}

// Internal messages carrying picker mutations from engine goroutines into
// the event loop.
type (
	setTitleMsg       string
	setPlaceholderMsg string
	setBusyMsg        bool
	setItemsMsg       []Item
	setValueMsg       string
	hideMsg           struct{}
	disposeMsg        struct{}
	statusMsg         string

	confirmRequestMsg struct {
		prompt string
		reply  chan bool
	}
	promptRequestMsg struct {
		prompt   string
		initial  string
		selStart int
		selEnd   int
		reply    chan promptReply
	}
)

type promptReply struct {
	value string
	ok    bool
}

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirm
	modalPrompt
)

const maxVisibleRows = 15

// Model is the bubbletea implementation of Picker. Engine hooks run on a
// dedicated worker goroutine, serialized in dispatch order, so a hook may
// block on a modal reply without stalling the event loop. Picker mutations
// travel back in as messages.
type Model struct {
	program *tea.Program

	input  textinput.Model
	title  string
	busy   bool
	status string
	offset int

	modal        modalKind
	modalPrompt  string
	modalInput   textinput.Model
	confirmReply chan bool
	promptDone   chan promptReply

	// Mirrors of the state engine goroutines read synchronously.
	mu          sync.Mutex
	value       string
	items       []Item
	highlighted int

	events chan func()

	valueChanged func(previous, current string)
	accept       func()
	hideHook     func()
	button       func(button string)
	refresh      func()
}

// NewModel creates a picker model and starts its hook worker.
func NewModel() *Model {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60

	m := &Model{
		input:  ti,
		events: make(chan func(), 64),
	}
	go m.loop()
	return m
}

// SetProgram attaches the running program; required before any engine
// goroutine touches the picker.
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

func (m *Model) loop() {
	for fn := range m.events {
		fn()
	}
}

// Dispatch queues fn on the hook worker. Engine setup that touches state
// shared with the hooks must run there, not on its own goroutine.
func (m *Model) Dispatch(fn func()) {
	m.dispatch(fn)
}

// dispatch queues a hook invocation on the worker, preserving order.
func (m *Model) dispatch(fn func()) {
	select {
	case m.events <- fn:
	default:
		log.Warn("picker event queue full, dropping event")
	}
}

func (m *Model) send(msg tea.Msg) {
	if m.program != nil {
		m.program.Send(msg)
	}
}

// --- Picker interface ---

func (m *Model) SetTitle(title string) { m.send(setTitleMsg(title)) }

func (m *Model) SetPlaceholder(text string) { m.send(setPlaceholderMsg(text)) }

func (m *Model) SetBusy(busy bool) { m.send(setBusyMsg(busy)) }

func (m *Model) SetItems(items []Item) {
	m.mu.Lock()
	m.items = items
	if m.highlighted >= len(items) {
		m.highlighted = 0
	}
	m.mu.Unlock()
	m.send(setItemsMsg(items))
}

func (m *Model) SetValue(value string) { m.send(setValueMsg(value)) }

func (m *Model) Value() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

func (m *Model) Highlighted() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return 0, false
	}
	return m.highlighted, true
}

func (m *Model) Show() {}

func (m *Model) Hide() { m.send(hideMsg{}) }

func (m *Model) Dispose() { m.send(disposeMsg{}) }

func (m *Model) OnValueChanged(fn func(previous, current string)) { m.valueChanged = fn }

func (m *Model) OnAccept(fn func()) { m.accept = fn }

func (m *Model) OnHide(fn func()) { m.hideHook = fn }

func (m *Model) OnButtonTriggered(fn func(button string)) { m.button = fn }

// OnRefresh registers the hook run on RefreshMsg.
func (m *Model) OnRefresh(fn func()) { m.refresh = fn }

// ShowStatus surfaces a transient message line; the Environment's message
// surface for CLI use.
func (m *Model) ShowStatus(msg string) { m.send(statusMsg(msg)) }

// ModalConfirm blocks the calling goroutine on a modal yes/no prompt.
// Must not be called from the event loop.
func (m *Model) ModalConfirm(prompt string) bool {
	reply := make(chan bool, 1)
	m.send(confirmRequestMsg{prompt: prompt, reply: reply})
	return <-reply
}

// ModalPrompt blocks the calling goroutine on a modal input prompt
// pre-filled with initial; selStart/selEnd mark the portion offered for
// replacement. Must not be called from the event loop.
func (m *Model) ModalPrompt(prompt, initial string, selStart, selEnd int) (string, bool) {
	reply := make(chan promptReply, 1)
	m.send(promptRequestMsg{prompt: prompt, initial: initial, selStart: selStart, selEnd: selEnd, reply: reply})
	r := <-reply
	return r.value, r.ok
}

// --- tea.Model interface ---

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateMain(msg)

	case setTitleMsg:
		m.title = string(msg)
	case setPlaceholderMsg:
		m.input.Placeholder = string(msg)
	case setBusyMsg:
		m.busy = bool(msg)
	case setItemsMsg:
		m.offset = 0
	case setValueMsg:
		m.applyValue(string(msg))
	case statusMsg:
		m.status = string(msg)
	case hideMsg:
		if m.hideHook != nil {
			m.dispatch(m.hideHook)
		}
		return m, tea.Quit
	case disposeMsg:
		return m, tea.Quit
	case RefreshMsg:
		if m.refresh != nil {
			m.dispatch(m.refresh)
		}

	case confirmRequestMsg:
		m.modal = modalConfirm
		m.modalPrompt = msg.prompt
		m.confirmReply = msg.reply
	case promptRequestMsg:
		m.modal = modalPrompt
		m.modalPrompt = msg.prompt
		m.promptDone = msg.reply
		mi := textinput.New()
		mi.SetValue(msg.initial)
		mi.CharLimit = 512
		mi.Width = 40
		mi.Focus()
		mi.SetCursor(msg.selEnd)
		m.modalInput = mi
	}
	return m, nil
}

func (m *Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		if m.hideHook != nil {
			m.dispatch(m.hideHook)
		}
		return m, tea.Quit

	case "enter":
		if m.accept != nil {
			m.dispatch(m.accept)
		}
		return m, nil

	case "up", "ctrl+p":
		m.moveHighlight(-1)
		return m, nil
	case "down", "ctrl+n":
		m.moveHighlight(1)
		return m, nil

	case "ctrl+d":
		m.triggerButton(ButtonDelete)
		return m, nil
	case "ctrl+r":
		m.triggerButton(ButtonRename)
		return m, nil
	case "ctrl+y":
		m.triggerButton(ButtonCopyPath)
		return m, nil
	}

	previous := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	current := m.input.Value()
	if current != previous {
		m.status = ""
		m.mu.Lock()
		m.value = current
		m.mu.Unlock()
		if m.valueChanged != nil {
			m.dispatch(func() { m.valueChanged(previous, current) })
		}
	}
	return m, cmd
}

func (m *Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal == modalConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			m.confirmReply <- true
			m.modal = modalNone
		case "n", "N", "esc":
			m.confirmReply <- false
			m.modal = modalNone
		}
		return m, nil
	}

	switch msg.String() {
	case "enter":
		m.promptDone <- promptReply{value: strings.TrimSpace(m.modalInput.Value()), ok: true}
		m.modal = modalNone
	case "esc":
		m.promptDone <- promptReply{ok: false}
		m.modal = modalNone
	default:
		var cmd tea.Cmd
		m.modalInput, cmd = m.modalInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) triggerButton(button string) {
	if m.button != nil {
		m.dispatch(func() { m.button(button) })
	}
}

func (m *Model) moveHighlight(delta int) {
	m.mu.Lock()
	n := len(m.items)
	if n > 0 {
		m.highlighted = (m.highlighted + delta + n) % n
	}
	cur := m.highlighted
	m.mu.Unlock()

	if cur < m.offset {
		m.offset = cur
	} else if cur >= m.offset+maxVisibleRows {
		m.offset = cur - maxVisibleRows + 1
	}
}

// applyValue sets the input programmatically and fires the value-changed
// hook so chained traversal keeps going.
func (m *Model) applyValue(value string) {
	previous := m.input.Value()
	if value == previous {
		return
	}
	m.input.SetValue(value)
	m.input.SetCursor(len(value))
	m.mu.Lock()
	m.value = value
	m.mu.Unlock()
	if m.valueChanged != nil {
		m.dispatch(func() { m.valueChanged(previous, value) })
	}
}

func (m *Model) View() string {
	var b strings.Builder

	header := m.title
	if m.busy {
		header += busyStyle.Render("  ⋯ searching")
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	m.mu.Lock()
	items := m.items
	highlighted := m.highlighted
	m.mu.Unlock()

	end := m.offset + maxVisibleRows
	if end > len(items) {
		end = len(items)
	}
	for i := m.offset; i < end; i++ {
		item := items[i]
		line := item.Label
		if item.Description != "" {
			line += " " + descriptionStyle.Render(item.Description)
		}
		if item.Detail != "" {
			line += "\n    " + detailStyle.Render(item.Detail)
		}
		if i == highlighted {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(items) > end {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  … %d more", len(items)-end)))
		b.WriteString("\n")
	}

	if m.modal == modalConfirm {
		b.WriteString(modalStyle.Render(m.modalPrompt + " (y/n)"))
		b.WriteString("\n")
	} else if m.modal == modalPrompt {
		b.WriteString(modalStyle.Render(m.modalPrompt + "\n" + m.modalInput.View()))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter accept · esc close · ctrl+d delete · ctrl+r rename · ctrl+y copy path"))
	b.WriteString("\n")
	return b.String()
}
