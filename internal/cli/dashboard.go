package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-worklog/internal/jira"
	"go-worklog/internal/report"
	"go-worklog/internal/ui"

	"github.com/spf13/cobra"
)

// DashboardProperty is the Jira user property holding the default chart.
const DashboardProperty = "worklog.dashboard"

var charts = map[string]struct {
	title string
	fn    func([]report.Row) []report.Total
}{
	"day":     {"Hours per day", report.ByDay},
	"issue":   {"Hours by issue", report.ByIssue},
	"project": {"Hours by project", report.ByProject},
	"author":  {"Hours by author", report.ByAuthor},
	"month":   {"Hours per month", report.ByMonth},
}

func chartNames() string {
	return "day|issue|project|author|month"
}

// dashboardPreference decodes the stored chart: either a bare string or
// {"chart": "..."}.
func dashboardPreference(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Chart string `json:"chart"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Chart
	}
	return ""
}

func resolveChart(ctx context.Context, app *App, client *jira.Client, flag string) (string, error) {
	if flag != "" {
		if _, ok := charts[flag]; !ok {
			return "", fmt.Errorf("unknown chart %q, use %s", flag, chartNames())
		}
		return flag, nil
	}
	me, err := client.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	raw, ok, err := client.UserProperty(ctx, me.AccountID, DashboardProperty)
	if err != nil {
		return "", err
	}
	if ok {
		if pref := dashboardPreference(raw); charts[pref].fn != nil {
			app.Logger.Debug("dashboard chart from user property", app.Logger.Args("chart", pref))
			return pref, nil
		}
	}
	return "day", nil
}

func newDashboardCmd() *cobra.Command {
	var chart, jql string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize and chart the worklogs on your issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := appFrom(ctx)
			client, err := app.Jira()
			if err != nil {
				return err
			}
			name, err := resolveChart(ctx, app, client, strings.ToLower(chart))
			if err != nil {
				return err
			}

			rows, err := app.LoadRows(ctx, jql, "")
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				ui.PrintNoData()
				return nil
			}
			ui.PrintSummary(rows)
			c := charts[name]
			ui.PrintChart(c.title, c.fn(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&chart, "chart", "", "Chart to draw: "+chartNames()+" (default from your saved preference, else day)")
	cmd.Flags().StringVar(&jql, "jql", "", "JQL selecting the issues (default: issues assigned to you)")
	return cmd
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return t, nil
}

func newReportCmd() *cobra.Command {
	var from, to, jql, issue string
	var byDay bool
	var f report.Filter

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Table of worklogs, newest first, with filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if f.From, err = parseDay(from); err != nil {
				return err
			}
			if f.To, err = parseDay(to); err != nil {
				return err
			}
			if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
				return fmt.Errorf("--to %s is before --from %s", to, from)
			}

			rows, err := appFrom(cmd.Context()).LoadRows(cmd.Context(), jql, issue)
			if err != nil {
				return err
			}
			rows = f.Apply(rows)
			report.SortNewestFirst(rows)

			if byDay {
				ui.PrintDaySeries(report.ByDayAndIssue(rows))
				return nil
			}
			ui.PrintReportTable(rows)
			if len(rows) > 0 {
				ui.PrintSummary(rows)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.Project, "project", "", "Project name or key")
	cmd.Flags().StringVar(&f.IssueType, "type", "", "Issue type")
	cmd.Flags().StringVar(&f.Author, "author", "", "Worklog author display name")
	cmd.Flags().StringVar(&issue, "issue", "", "Only this issue key")
	cmd.Flags().StringVar(&jql, "jql", "", "JQL selecting the issues (default: issues assigned to you)")
	cmd.Flags().BoolVar(&byDay, "by-day", false, "Group hours by day and issue instead of listing worklogs")
	return cmd
}
