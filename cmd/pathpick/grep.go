package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pathpick/internal/exclude"
	"pathpick/internal/search"
	"pathpick/internal/tui"
)

// NewGrepCmd creates the full-text search command
func NewGrepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grep [dir]",
		Short: "Search project file contents as you type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			return runGrep(root)
		},
	}
}

func resolveRoot(args []string) (string, error) {
	root := workspaceRoot()
	if len(args) == 1 {
		root = args[0]
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	return filepath.Abs(root)
}

func runGrep(root string) error {
	model := tui.NewModel()
	engine := search.NewEngine(search.ConfigFrom(cfg))
	defer engine.Close()

	spec := exclude.Build(root, cfg.Exclude.IgnoreFile, cfg.Exclude.ExtraPatterns)
	engine.StartSession(root, spec)

	model.OnValueChanged(func(previous, current string) {
		engine.QueryChanged(current)
	})
	engine.OnBusy(model.SetBusy)
	engine.OnResults(func(query string, results []search.Result) {
		items := make([]tui.Item, len(results))
		for i, r := range results {
			rel, err := filepath.Rel(root, r.File)
			if err != nil {
				rel = r.File
			}
			items[i] = tui.Item{
				Label:  fmt.Sprintf("%s:%d:%d", rel, r.Line, r.Column),
				Detail: r.Content,
			}
		}
		model.SetItems(items)
	})

	var chosen *search.Result
	model.OnAccept(func() {
		idx, ok := model.Highlighted()
		if !ok {
			return
		}
		results := engine.Results()
		if idx >= len(results) {
			return
		}
		r := results[idx]
		chosen = &r
		model.Hide()
	})

	p := tea.NewProgram(model)
	model.SetProgram(p)
	model.Dispatch(func() {
		model.SetTitle("grep " + root)
		model.SetPlaceholder(fmt.Sprintf("type at least %d characters", cfg.Search.MinQueryLength))
	})

	if _, err := p.Run(); err != nil {
		return err
	}

	if chosen != nil {
		return openInEditor(chosen.File, chosen.Line)
	}
	return nil
}
