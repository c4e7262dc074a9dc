package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pathpick/internal/config"
	"pathpick/internal/log"
)

var (
	cfgFile string
	debug   bool
	cfg     *config.Config
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pathpick",
		Short: "Keyboard-driven file navigation and project search",
		Long: `Pathpick puts four interactive pickers on your terminal:

  browse   directory browser and file manager
  recent   recently visited files and directories
  files    project file-name search
  grep     project full-text search`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDebug(debug)

			var configErr error
			if cfgFile != "" {
				cfg, configErr = config.LoadConfigFile(cfgFile)
			} else {
				cfg, configErr = config.LoadConfig()
			}
			if configErr != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\nusing default settings\n", configErr)
				cfg = config.New()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pathpick/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewBrowseCmd())
	rootCmd.AddCommand(NewRecentCmd())
	rootCmd.AddCommand(NewFilesCmd())
	rootCmd.AddCommand(NewGrepCmd())

	return rootCmd
}

// openInEditor hands an accepted file to $EDITOR, falling back to printing
// the path so the output can be captured by a shell binding.
func openInEditor(path string, line int) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		fmt.Println(path)
		return nil
	}

	args := []string{path}
	base := editor[strings.LastIndex(editor, "/")+1:]
	switch base {
	case "vim", "nvim", "vi", "nano", "emacs":
		if line > 0 {
			args = []string{fmt.Sprintf("+%d", line), path}
		}
	}

	c := exec.Command(editor, args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// workspaceRoot finds the nearest enclosing directory carrying a .git
// entry, the closest stand-in for the host's first workspace root.
func workspaceRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
