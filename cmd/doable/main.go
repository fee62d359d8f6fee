package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/doable/internal/app"
	"github.com/dori/doable/internal/config"
	"github.com/dori/doable/internal/ui"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	configPath string
	dataDir    string
	ephemeral  bool

	// newApp builds the application; replaced in tests
	newApp func(*config.Config, app.Options) (*app.App, error)
}

func main() {
	if err := newRootCmd(&rootOptions{newApp: app.New}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "doable",
		Short: "A small todo list for the terminal",
		Long: `doable keeps a list of tasks with priorities, due dates and categories.
Run it without arguments for the interactive list, or use the subcommands
to add, complete and inspect tasks from scripts.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runTUI()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/doable/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory holding the database and log")
	rootCmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep tasks in memory only")

	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(doneCmd(opts))
	rootCmd.AddCommand(rmCmd(opts))
	rootCmd.AddCommand(clearCmd(opts))
	rootCmd.AddCommand(statsCmd(opts))
	rootCmd.AddCommand(remindCmd(opts))
	rootCmd.AddCommand(configCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// loadConfig reads the config file and applies command-line overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
		cfg.DBPath = filepath.Join(o.dataDir, "doable.db")
	}
	return cfg, nil
}

// openApp wires the application for a CLI subcommand
func (o *rootOptions) openApp() (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return o.newApp(cfg, app.Options{Ephemeral: o.ephemeral, Stderr: true})
}

func (o *rootOptions) runTUI() error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	application, err := o.newApp(cfg, app.Options{Ephemeral: o.ephemeral})
	if err != nil {
		return err
	}
	defer application.Close()

	p := tea.NewProgram(
		ui.NewRootModel(application, nil),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
