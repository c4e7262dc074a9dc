package main

import (
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pathpick/internal/recent"
	"pathpick/internal/tui"
)

// NewRecentCmd creates the recent entries command
func NewRecentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Pick from recently visited files and directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecent()
		},
	}
}

func runRecent() error {
	model := tui.NewModel()
	store := recent.NewStore(cfg.RecentFile(), cfg.Recent.MaxEntries)

	// visible[i] is the store entry behind rendered item i.
	var visible []recent.Entry
	apply := func(filter string) {
		folded := strings.ToLower(strings.TrimSpace(filter))
		entries := store.List()
		visible = visible[:0]
		items := make([]tui.Item, 0, len(entries))
		for _, e := range entries {
			if folded != "" && !strings.Contains(strings.ToLower(e.Path), folded) {
				continue
			}
			visible = append(visible, e)
			item := tui.Item{Label: e.Path}
			if e.IsDir {
				item.Description = "dir"
			}
			items = append(items, item)
		}
		model.SetItems(items)
	}

	model.OnValueChanged(func(previous, current string) {
		apply(current)
	})

	var chosen *recent.Entry
	model.OnAccept(func() {
		idx, ok := model.Highlighted()
		if !ok || idx >= len(visible) {
			return
		}
		e := visible[idx]
		if _, err := os.Stat(e.Path); err != nil {
			// Entry no longer exists on disk; offer to drop it.
			if model.ModalConfirm("Remove missing entry " + e.Path + "?") {
				store.Remove(e.Path)
			}
			apply(model.Value())
			return
		}
		chosen = &e
		model.Hide()
	})

	p := tea.NewProgram(model)
	model.SetProgram(p)
	model.Dispatch(func() {
		model.SetTitle("recent")
		model.SetPlaceholder("type to filter recent entries")
		apply("")
	})

	if _, err := p.Run(); err != nil {
		return err
	}

	if chosen == nil {
		return nil
	}
	if chosen.IsDir {
		return runBrowse(chosen.Path)
	}
	return openInEditor(chosen.Path, 0)
}
