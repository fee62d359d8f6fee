package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dori/doable/internal/cli"
	"github.com/dori/doable/internal/config"
	"github.com/dori/doable/internal/model"
	"github.com/dori/doable/internal/notify"
	"github.com/dori/doable/internal/quickadd"
	"github.com/dori/doable/internal/store"
	"github.com/spf13/cobra"
)

func addCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task...>",
		Short: "Quick add a task",
		Long: `Add a task. Inline markers set the optional fields:

  Priority:  !low !medium !high
  Due date:  due:today due:tomorrow due:friday due:2024-01-15 due:03/01
  Category:  #home or @work`,
		Example: `  doable add "Buy groceries"
  doable add Pay rent !high due:friday #home`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now()
			entry := quickadd.Parse(strings.Join(args, " "), now)
			priority := entry.Priority
			if priority == "" {
				priority = a.Config.Priority()
			}

			var opts []store.TaskOption
			if entry.DueDate != nil {
				opts = append(opts, store.WithDueDate(*entry.DueDate))
			}
			if entry.Category != "" {
				opts = append(opts, store.WithCategory(entry.Category))
			}

			task, ok := a.Store.AddTask(entry.Text, priority, opts...)
			if !ok {
				return fmt.Errorf("task text is empty")
			}
			if err := a.Store.LastSaveError(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s %s\n", cli.Dim(task.ShortID()), task.Text)
			if task.DueDate != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Due: %s\n", quickadd.FormatDue(*task.DueDate, now))
			}
			if task.Priority != model.PriorityMedium {
				fmt.Fprintf(cmd.OutOrStdout(), "Priority: %s\n", task.Priority)
			}
			if cat := task.CategoryName(); cat != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Category: %s\n", cat)
			}
			return nil
		},
	}
}

func listCmd(opts *rootOptions) *cobra.Command {
	var (
		flagFilter        string
		flagSearch        string
		flagSort          string
		flagHideCompleted bool
		flagJSON          bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("filter") {
				f, err := model.ParseStatusFilter(flagFilter)
				if err != nil {
					return err
				}
				a.Store.SetStatusFilter(f)
			}
			if cmd.Flags().Changed("sort") {
				m, err := model.ParseSortMode(flagSort)
				if err != nil {
					return err
				}
				a.Store.SetSortMode(m)
			}
			if cmd.Flags().Changed("hide-completed") {
				a.Store.SetShowCompleted(!flagHideCompleted)
			}
			a.Store.SetSearchQuery(flagSearch)

			view := a.Store.View()
			if flagJSON {
				return cli.JSON(cmd.OutOrStdout(), struct {
					Tasks []model.Task `json:"tasks"`
					Stats model.Stats  `json:"stats"`
				}{view.Tasks, view.Stats})
			}
			cli.PrintView(cmd.OutOrStdout(), view, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFilter, "filter", "all", "Status filter: all, active, completed")
	cmd.Flags().StringVar(&flagSearch, "search", "", "Case-insensitive text search")
	cmd.Flags().StringVar(&flagSort, "sort", "created", "Sort: created, priority, dueDate, alphabetical")
	cmd.Flags().BoolVar(&flagHideCompleted, "hide-completed", false, "Hide completed tasks")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	return cmd
}

func doneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task between open and completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.Store.Resolve(args[0])
			if err != nil {
				return err
			}
			a.Store.ToggleTask(task.ID)
			if err := a.Store.LastSaveError(); err != nil {
				return err
			}

			if task.Completed {
				fmt.Fprintf(cmd.OutOrStdout(), "Reopened: %s\n", task.Text)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cli.Green("Completed:"), task.Text)
			}
			return nil
		},
	}
}

func rmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.Store.Resolve(args[0])
			if err != nil {
				return err
			}
			a.Store.DeleteTask(task.ID)
			if err := a.Store.LastSaveError(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", task.Text)
			return nil
		},
	}
}

func clearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			removed := a.Store.ClearCompleted()
			if err := a.Store.LastSaveError(); err != nil {
				return err
			}
			if removed == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No completed tasks to clear")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed task(s)\n", removed)
			return nil
		},
	}
}

func statsCmd(opts *rootOptions) *cobra.Command {
	var flagJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts and completion rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			stats := a.Store.Stats()
			if flagJSON {
				return cli.JSON(cmd.OutOrStdout(), struct {
					model.Stats
					CompletionRate int `json:"completionRate"`
				}{stats, stats.CompletionRate()})
			}

			lastSaved, saved, err := a.LastSaved()
			if err != nil {
				return err
			}
			cli.PrintStats(cmd.OutOrStdout(), stats, lastSaved, saved)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	return cmd
}

func remindCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Send desktop notifications for overdue and due-today tasks",
		Long: `Send a desktop notification (notify-send) for every open task that is
overdue or due today. With notifications disabled in the config the tasks
are printed instead. Suitable for a cron job or systemd timer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now()
			due := notify.DueReminders(a.Store.Tasks(), now)
			if len(due) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing due")
				return nil
			}

			if !a.Notifier.IsEnabled() {
				for _, t := range due {
					fmt.Fprintln(cmd.OutOrStdout(), cli.TaskLine(t, now))
				}
				return nil
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			for _, t := range due {
				if err := a.Notifier.SendDueReminder(ctx, t, now); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d reminder(s)\n", len(due))
			return nil
		},
	}
}

func configCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "doable v%s\n", version)
		},
	}
}
