package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

func SetupCommands(a *App) *cobra.Command {
	var (
		configDir string
		verbose   bool
	)

	// root command
	rootCmd := &cobra.Command{
		Use:           "cxz",
		Short:         "A monthly time ledger for clocking in and out",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.Open(cmd.Context(), configDir, verbose, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.Close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", DefaultConfigDir(), "directory holding the database and config.yaml")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log storage operations to stderr")

	// commands recording entries
	rootCmd.AddCommand(clockCmd(a, ActionIn, "Clock in for the day"))
	rootCmd.AddCommand(clockCmd(a, ActionOut, "Clock out for the day"))
	rootCmd.AddCommand(clockCmd(a, ActionTask, "Mark a task in the timetable"))

	// command for listing a month
	var showMonth, showYear string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display clock-in/clock-out records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Show(cmd.Context(), showMonth, showYear)
		},
	}
	addPeriodFlags(showCmd, &showMonth, &showYear)

	// command for summing the time of a note
	var sumMonth, sumYear string
	sumCmd := &cobra.Command{
		Use:   "sum [note]",
		Short: "Summarize clocked time for a note",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var note string
			if len(args) > 0 {
				note = args[0]
			}
			return a.Sum(cmd.Context(), note, sumMonth, sumYear)
		},
	}
	addPeriodFlags(sumCmd, &sumMonth, &sumYear)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Display the clock-in/out status for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Status(cmd.Context())
		},
	}

	// command for deleting a single entry
	var delMonth, delYear string
	var delForce bool
	deleteCmd := &cobra.Command{
		Use:   "delete [line]",
		Short: "Delete a specific clock-in/clock-out record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := 0
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid line number %q", args[0])
				}
				line = n
			}
			return a.Delete(cmd.Context(), delMonth, delYear, line, delForce)
		},
	}
	addPeriodFlags(deleteCmd, &delMonth, &delYear)
	deleteCmd.Flags().BoolVarP(&delForce, "force", "f", false, "delete without asking for confirmation")

	// command for editing a month in an external editor
	var editMonth, editYear, editor string
	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a month's records in an external editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Edit(cmd.Context(), editMonth, editYear, editor)
		},
	}
	addPeriodFlags(editCmd, &editMonth, &editYear)
	editCmd.Flags().StringVarP(&editor, "editor", "e", "", "editor command, defaults to the configured editor")

	// add commands
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(sumCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(configCmd(a))

	return rootCmd
}

func clockCmd(a *App, action Action, short string) *cobra.Command {
	var date, clock string

	cmd := &cobra.Command{
		Use:   string(action) + " [note]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var note *string
			if len(args) > 0 {
				note = &args[0]
			}
			return a.Clock(cmd.Context(), action, note, date, clock)
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "date of the entry in YYYY-MM-DD format, defaults to today")
	cmd.Flags().StringVarP(&clock, "time", "t", "", "time of the entry in HH:MM format, defaults to now")

	return cmd
}

func configCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration related commands",
	}

	dirCmd := &cobra.Command{
		Use:   "dir",
		Short: "Print the data directory path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.PrintDataDir()
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.PrintConfigPath()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the merged configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ShowConfig()
		},
	}

	tablesCmd := &cobra.Command{
		Use:   "show-tables",
		Short: "List all month tables in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ShowTables(cmd.Context())
		},
	}

	var createMonth, createYear string
	createCmd := &cobra.Command{
		Use:   "create-table",
		Short: "Create the table of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.CreateTable(cmd.Context(), createMonth, createYear)
		},
	}
	addPeriodFlags(createCmd, &createMonth, &createYear)

	var dropMonth, dropYear string
	var dropForce bool
	dropCmd := &cobra.Command{
		Use:   "drop-table",
		Short: "Erase all records of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.DropTable(cmd.Context(), dropMonth, dropYear, dropForce)
		},
	}
	addPeriodFlags(dropCmd, &dropMonth, &dropYear)
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "drop without asking for confirmation")

	cmd.AddCommand(dirCmd, pathCmd, showCmd, tablesCmd, createCmd, dropCmd)
	return cmd
}

// addPeriodFlags adds --month and --year with completion of month names.
func addPeriodFlags(cmd *cobra.Command, month, year *string) {
	cmd.Flags().StringVarP(month, "month", "m", "current", `month as name, number, "current" or "-N" for N months ago`)
	cmd.Flags().StringVarP(year, "year", "y", "", "four digit year, defaults to the current year")

	cmd.RegisterFlagCompletionFunc("month", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var names []string
		if strings.HasPrefix("current", strings.ToLower(toComplete)) {
			names = append(names, "current")
		}
		for m := time.January; m <= time.December; m++ {
			if strings.HasPrefix(strings.ToLower(m.String()), strings.ToLower(toComplete)) {
				names = append(names, m.String())
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}
