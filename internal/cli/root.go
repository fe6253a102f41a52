// Package cli wires the worklog commands together.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"go-worklog/internal/config"
	"go-worklog/internal/jira"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var Version = "dev"

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var flags GlobalFlags

	cmd := &cobra.Command{
		Use:           "worklog",
		Short:         "Jira worklog dashboard for the terminal",
		Long:          "worklog lists, logs and charts Jira work time and answers questions about it.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsConfig(cmd) {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.ApplyFlags(config.FlagOverrides{URL: flags.URL, Timeout: flags.Timeout})
			cmd.SetContext(withApp(cmd.Context(), NewApp(cfg, flags)))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.URL, "url", "", "Jira base URL (overrides config and JIRA_URL)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log requests at debug level")
	cmd.PersistentFlags().DurationVar(&flags.Timeout, "timeout", 0, "Per-request timeout (default 30s)")

	cmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newMeCmd(),
		newProjectsCmd(),
		newIssuesCmd(),
		newIssueCmd(),
		newWorklogsCmd(),
		newLogCmd(),
		newWorklogCmd(),
		newDashboardCmd(),
		newReportCmd(),
		newAskCmd(),
		newPrefsCmd(),
	)
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		return jira.ExitOK
	}
	if ctx.Err() != nil {
		pterm.Println()
		pterm.Println(pterm.Gray("Interrupted."))
		return jira.ExitOK
	}
	printError(err)
	return jira.ExitCodeFor(err)
}

func printError(err error) {
	pterm.Error.Println(err.Error())

	var jerr *jira.Error
	if errors.As(err, &jerr) && len(jerr.Fields) > 0 {
		keys := make([]string, 0, len(jerr.Fields))
		for k := range jerr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			pterm.Println(pterm.Gray("  " + k + ": " + jerr.Fields[k]))
		}
	}
	if jira.IsAuth(err) {
		pterm.Println(pterm.Gray("Check your credentials with `worklog config`."))
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "worklog version", Version)
		},
	}
}

// needsConfig reports whether cmd reads the resolved configuration. config
// skips it so a broken config file can still be repaired.
func needsConfig(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "config":
		return false
	}
	return true
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Set up the Jira connection and API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := config.RunSetup()
			return err
		},
	}
}
