package cli

import (
	"fmt"
	"strings"
	"time"

	"go-worklog/internal/timeparse"
	"go-worklog/internal/ui"

	"github.com/spf13/cobra"
)

var startedLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseStarted reads a local date or date-time. Empty means now.
func parseStarted(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	for _, layout := range startedLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			if layout == "2006-01-02" {
				t = t.Add(9 * time.Hour)
			}
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid start %q, use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\"", s)
}

func newWorklogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worklogs ISSUE",
		Short: "List every worklog on an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := appFrom(cmd.Context()).Jira()
			if err != nil {
				return err
			}
			key := strings.ToUpper(args[0])
			worklogs, err := client.Worklogs(cmd.Context(), key)
			if err != nil {
				return err
			}
			ui.PrintWorklogsTable(key, worklogs)
			return nil
		},
	}
}

func newLogCmd() *cobra.Command {
	var in ui.WorklogInput

	cmd := &cobra.Command{
		Use:   "log ISSUE",
		Short: "Log work on an issue (interactive when --time is missing)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := appFrom(ctx).Jira()
			if err != nil {
				return err
			}
			key := strings.ToUpper(args[0])

			if in.TimeSpent == "" {
				if in, err = ui.WorklogForm(key, in); err != nil {
					return err
				}
			}
			started, err := parseStarted(in.Started, time.Now())
			if err != nil {
				return err
			}

			wl, err := client.AddWorklog(ctx, key, in.TimeSpent, in.Comment, started)
			if err != nil {
				return err
			}
			ui.PrintLogResult(fmt.Sprintf("%s: logged %s (worklog %s)", key, timeparse.Format(wl.TimeSpentSeconds), wl.ID), nil)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.TimeSpent, "time", "t", "", "Time spent, e.g. 2h 30m")
	cmd.Flags().StringVarP(&in.Comment, "comment", "c", "", "What you worked on")
	cmd.Flags().StringVar(&in.Started, "started", "", "Start date or date-time (default now)")
	return cmd
}

func newWorklogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worklog",
		Short: "Update or delete a worklog",
	}
	cmd.AddCommand(newWorklogUpdateCmd(), newWorklogDeleteCmd())
	return cmd
}

func newWorklogUpdateCmd() *cobra.Command {
	var hours float64
	var comment string

	cmd := &cobra.Command{
		Use:   "update ISSUE WORKLOG_ID",
		Short: "Change the hours and comment of a worklog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := appFrom(cmd.Context()).Jira()
			if err != nil {
				return err
			}
			key := strings.ToUpper(args[0])
			if err := client.UpdateWorklog(cmd.Context(), key, args[1], hours, comment); err != nil {
				return err
			}
			ui.PrintLogResult(fmt.Sprintf("%s: worklog %s set to %s", key, args[1],
				timeparse.Format(timeparse.HoursToSeconds(hours))), nil)
			return nil
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", 0, "Hours spent, fractions allowed (e.g. 1.5)")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "Replacement comment")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func newWorklogDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ISSUE WORKLOG_ID",
		Short: "Delete a worklog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := appFrom(cmd.Context()).Jira()
			if err != nil {
				return err
			}
			key := strings.ToUpper(args[0])
			if !yes && !ui.ConfirmYesNo(fmt.Sprintf("Delete worklog %s on %s?", args[1], key)) {
				ui.PrintCancelled()
				return nil
			}
			if err := client.DeleteWorklog(cmd.Context(), key, args[1]); err != nil {
				return err
			}
			ui.PrintLogResult(fmt.Sprintf("%s: worklog %s deleted", key, args[1]), nil)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation")
	return cmd
}
