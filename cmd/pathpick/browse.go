package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pathpick/internal/browse"
	"pathpick/internal/log"
	"pathpick/internal/recent"
	"pathpick/internal/tui"
	"pathpick/internal/watch"
)

// NewBrowseCmd creates the directory browser command
func NewBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [dir]",
		Short: "Browse and manage files interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := ""
			if len(args) == 1 {
				start = args[0]
			}
			return runBrowse(start)
		},
	}
}

func runBrowse(start string) error {
	model := tui.NewModel()
	env := &browse.OSEnvironment{
		Workspace:   workspaceRoot(),
		ConfirmFunc: model.ModalConfirm,
		PromptFunc:  model.ModalPrompt,
		MessageFunc: model.ShowStatus,
	}
	if start == "" {
		start = browse.ResolveStartPath(env)
	}

	nav := browse.NewNavigator(model, env)

	store := recent.NewStore(cfg.RecentFile(), cfg.Recent.MaxEntries)
	nav.OnDirectoryVisited(func(path string) { store.Add(path, true) })
	var opened string
	nav.OnFileOpened(func(path string) {
		store.Add(path, false)
		opened = path
	})

	p := tea.NewProgram(model)
	model.SetProgram(p)
	model.OnRefresh(nav.Refresh)

	if cfg.Browse.AutoRefresh {
		refresher, err := watch.NewRefresher()
		if err != nil {
			log.Debug("auto-refresh unavailable: %v", err)
		} else {
			// The opening directory fires no visited event, so pin it here.
			refresher.SetDirectory(start)
			refresher.Start()
			defer refresher.Stop()
			nav.OnDirectoryVisited(refresher.SetDirectory)
			go func() {
				for range refresher.Changes() {
					p.Send(tui.RefreshMsg{})
				}
			}()
		}
	}

	model.Dispatch(func() { nav.Start(start) })

	if _, err := p.Run(); err != nil {
		return err
	}

	if opened != "" {
		return openInEditor(opened, 0)
	}
	return nil
}
