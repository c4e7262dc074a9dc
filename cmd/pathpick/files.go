package main

import (
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pathpick/internal/exclude"
	"pathpick/internal/search"
	"pathpick/internal/tui"
)

// NewFilesCmd creates the file-name search command
func NewFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files [dir]",
		Short: "Search project files by name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			return runFiles(root)
		},
	}
}

func runFiles(root string) error {
	model := tui.NewModel()
	engine := search.NewEngine(search.ConfigFrom(cfg))
	defer engine.Close()

	spec := exclude.Build(root, cfg.Exclude.IgnoreFile, cfg.Exclude.ExtraPatterns)
	engine.StartSession(root, spec)

	// Candidates and their root-relative labels, in enumeration order.
	files := engine.Files()
	labels := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			rel = f
		}
		labels[i] = filepath.ToSlash(rel)
	}

	// visible[i] is the files index behind rendered item i.
	var visible []int
	apply := func(filter string) {
		folded := strings.ToLower(strings.TrimSpace(filter))
		visible = visible[:0]
		items := make([]tui.Item, 0, len(labels))
		for i, label := range labels {
			if folded != "" && !strings.Contains(strings.ToLower(label), folded) {
				continue
			}
			visible = append(visible, i)
			items = append(items, tui.Item{Label: label})
		}
		model.SetItems(items)
	}

	model.OnValueChanged(func(previous, current string) {
		apply(current)
	})

	var opened string
	model.OnAccept(func() {
		idx, ok := model.Highlighted()
		if !ok || idx >= len(visible) {
			return
		}
		opened = files[visible[idx]]
		model.Hide()
	})

	p := tea.NewProgram(model)
	model.SetProgram(p)
	model.Dispatch(func() {
		model.SetTitle("files " + root)
		model.SetPlaceholder("type to filter file names")
		apply("")
	})

	if _, err := p.Run(); err != nil {
		return err
	}

	if opened != "" {
		return openInEditor(opened, 0)
	}
	return nil
}
