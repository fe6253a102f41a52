package ui

import (
	"fmt"
	"math"
	"strings"

	"go-worklog/internal/jira"
	"go-worklog/internal/report"
	"go-worklog/internal/timeparse"

	"github.com/pterm/pterm"
)

const commentWidth = 48

func PrintWelcome() {
	pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack, pterm.Bold)).
		Println("Jira Worklog Assistant")
	pterm.Println(pterm.Gray("Ask questions about your logged time. Type /help for commands."))
	pterm.Println()
}

func PrintUser(u *jira.UserProfile) {
	pterm.Success.Printfln("Signed in as %s", u.DisplayName)
	tableData := pterm.TableData{
		{"Account ID", u.AccountID},
		{"Email", u.EmailAddress},
		{"Time zone", u.TimeZone},
		{"Active", fmt.Sprintf("%t", u.Active)},
	}
	pterm.DefaultTable.WithBoxed().WithData(tableData).Render()
	pterm.Println()
}

func PrintIssuesTable(issues []jira.Issue) {
	if len(issues) == 0 {
		PrintNoIssues()
		return
	}
	pterm.Success.Printfln("Issues found: %d", len(issues))
	pterm.Println()

	tableData := pterm.TableData{
		{"#", "Key", "Summary", "Type", "Status", "Assignee"},
	}
	for i, issue := range issues {
		tableData = append(tableData, []string{
			fmt.Sprintf("%d", i+1),
			pterm.FgCyan.Sprint(issue.Key),
			issue.Summary,
			issue.IssueType,
			issue.Status,
			issue.AssigneeName,
		})
	}

	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData).Render()
	pterm.Println()
}

func PrintProjectsTable(projects []jira.Project) {
	if len(projects) == 0 {
		pterm.Warning.Println("No projects visible to this account.")
		return
	}
	tableData := pterm.TableData{
		{"Key", "Name", "ID"},
	}
	for _, p := range projects {
		tableData = append(tableData, []string{pterm.FgCyan.Sprint(p.Key), p.Name, p.ID})
	}
	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData).Render()
	pterm.Println()
}

func PrintWorklogsTable(issueKey string, worklogs []jira.Worklog) {
	if len(worklogs) == 0 {
		pterm.Warning.Printfln("No worklogs on %s.", issueKey)
		return
	}

	tableData := pterm.TableData{
		{"ID", "Started", "Author", "Time", "Comment"},
	}
	total := 0
	for _, wl := range worklogs {
		total += wl.TimeSpentSeconds
		tableData = append(tableData, []string{
			wl.ID,
			wl.Started.Format("2006-01-02 15:04"),
			wl.AuthorName,
			pterm.FgYellow.Sprint(timeparse.Format(wl.TimeSpentSeconds)),
			truncate(wl.CommentText(), commentWidth),
		})
	}
	tableData = append(tableData, []string{
		pterm.Bold.Sprint("TOTAL"), "", "",
		pterm.Bold.Sprint(pterm.FgYellow.Sprint(timeparse.Format(total))),
		"",
	})

	pterm.DefaultSection.WithStyle(pterm.NewStyle(pterm.FgCyan, pterm.Bold)).Printfln("Worklogs on %s", issueKey)
	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData).Render()
	pterm.Println()
}

// PrintReportTable prints rows as given; callers sort them first.
func PrintReportTable(rows []report.Row) {
	if len(rows) == 0 {
		PrintNoData()
		return
	}

	tableData := pterm.TableData{
		{"Date", "Start", "Issue", "Project", "Type", "Author", "Hours", "Comment"},
	}
	for _, r := range rows {
		tableData = append(tableData, []string{
			r.Date(),
			r.StartTime(),
			pterm.FgCyan.Sprint(r.IssueKey),
			r.Project,
			r.IssueType,
			r.Author,
			pterm.FgYellow.Sprintf("%.2f", r.Hours),
			truncate(r.Comment, commentWidth),
		})
	}
	tableData = append(tableData, []string{
		pterm.Bold.Sprint("TOTAL"), "", "", "", "", "",
		pterm.Bold.Sprint(pterm.FgYellow.Sprintf("%.2f", report.TotalHours(rows))),
		"",
	})

	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData).Render()
	pterm.Println()
}

// PrintChart renders totals as a horizontal bar chart. Bar length is in
// minutes; the label carries the hours.
func PrintChart(title string, totals []report.Total) {
	if len(totals) == 0 {
		PrintNoData()
		return
	}

	bars := make(pterm.Bars, 0, len(totals))
	for _, t := range totals {
		bars = append(bars, pterm.Bar{
			Label: fmt.Sprintf("%s (%sh)", t.Key, trimHours(t.Hours)),
			Value: int(math.Round(t.Hours * 60)),
		})
	}

	pterm.DefaultSection.WithStyle(pterm.NewStyle(pterm.FgCyan, pterm.Bold)).Println(title)
	pterm.DefaultBarChart.WithBars(bars).WithHorizontal().Render()
	pterm.Println()
}

// PrintDaySeries prints each day with its per-issue split.
func PrintDaySeries(series []report.DaySeries) {
	if len(series) == 0 {
		PrintNoData()
		return
	}
	tableData := pterm.TableData{
		{"Date", "Issue", "Hours"},
	}
	for _, day := range series {
		for i, t := range day.Issues {
			date := ""
			if i == 0 {
				date = day.Date
			}
			tableData = append(tableData, []string{date, pterm.FgCyan.Sprint(t.Key), trimHours(t.Hours)})
		}
	}
	pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(tableData).Render()
	pterm.Println()
}

func PrintSummary(rows []report.Row) {
	issues := report.Distinct(rows, func(r report.Row) string { return r.IssueKey })
	authors := report.Distinct(rows, func(r report.Row) string { return r.Author })
	pterm.DefaultBox.WithTitle("Summary").Println(fmt.Sprintf(
		"Total hours: %s\nWorklogs:    %d\nIssues:      %d\nAuthors:     %d",
		trimHours(report.TotalHours(rows)), len(rows), len(issues), len(authors)))
	pterm.Println()
}

func PrintIssueCreated(issue *jira.Issue, baseURL string) {
	pterm.Success.Printfln("Created %s", issue.Key)
	pterm.Println(pterm.Gray(baseURL + "/browse/" + issue.Key))
}

func PrintLogResult(issueKey string, err error) {
	if err == nil {
		pterm.Success.Printfln("%s", issueKey)
		return
	}
	pterm.Error.Printfln("%s: %v", issueKey, err)
}

func PrintNoIssues() {
	pterm.Warning.Println("No issues matched.")
	pterm.Println(pterm.Gray("Check the JQL, or that issues are assigned to you in Jira."))
}

func PrintNoData() {
	pterm.Warning.Println("No worklogs to show.")
}

func PrintCancelled() {
	pterm.Warning.Println("Cancelled.")
}

func PrintFarewell() {
	pterm.Println()
	pterm.Println(pterm.Gray("Bye!"))
	pterm.Println()
}

func PrintError(msg string) {
	pterm.Println(pterm.Gray("⚠ " + msg))
}

func PrintStatus(msg string) {
	pterm.Println(pterm.Gray(msg))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func trimHours(h float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", h), "0"), ".")
}
