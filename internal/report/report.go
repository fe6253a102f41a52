// Package report flattens Jira worklogs into rows and aggregates them for
// the dashboard, the report table and the assistant.
package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go-worklog/internal/jira"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxIssues   = 50
	DefaultConcurrency = 4
)

// Source is the subset of the Jira client a report needs.
type Source interface {
	SearchIssues(ctx context.Context, jql string, maxResults int, fields []string) ([]jira.Issue, error)
	MyIssues(ctx context.Context, jql string, maxResults int) ([]jira.Issue, error)
	Worklogs(ctx context.Context, issueKey string) ([]jira.Worklog, error)
}

type Row struct {
	WorklogID    string
	IssueKey     string
	IssueSummary string
	Project      string
	ProjectKey   string
	IssueType    string
	Author       string
	AccountID    string
	Started      time.Time
	Hours        float64
	Comment      string
}

func (r Row) Date() string      { return r.Started.Format("2006-01-02") }
func (r Row) Month() string     { return r.Started.Format("2006-01") }
func (r Row) StartTime() string { return r.Started.Format("15:04") }

type LoadOptions struct {
	JQL         string
	MaxIssues   int
	Concurrency int
	// IssueKey loads that one issue by key, whoever it is assigned to. JQL
	// and MaxIssues are ignored.
	IssueKey string
}

// Load fetches the caller's issues and every worklog on them. Issues are
// processed concurrently but rows keep issue order, then server order.
// Any failed fetch fails the whole load.
func Load(ctx context.Context, src Source, opts LoadOptions) ([]Row, error) {
	if opts.MaxIssues <= 0 {
		opts.MaxIssues = DefaultMaxIssues
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	issues, err := loadIssues(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	perIssue := make([][]Row, len(issues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, issue := range issues {
		g.Go(func() error {
			worklogs, err := src.Worklogs(gctx, issue.Key)
			if err != nil {
				return fmt.Errorf("load worklogs for %s: %w", issue.Key, err)
			}
			rows := make([]Row, 0, len(worklogs))
			for _, wl := range worklogs {
				rows = append(rows, NewRow(issue, wl))
			}
			perIssue[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := []Row{}
	for _, r := range perIssue {
		rows = append(rows, r...)
	}
	return rows, nil
}

func loadIssues(ctx context.Context, src Source, opts LoadOptions) ([]jira.Issue, error) {
	if opts.IssueKey == "" {
		issues, err := src.MyIssues(ctx, opts.JQL, opts.MaxIssues)
		if err != nil {
			return nil, fmt.Errorf("load issues: %w", err)
		}
		return issues, nil
	}

	key := strings.ToUpper(strings.TrimSpace(opts.IssueKey))
	issues, err := src.SearchIssues(ctx, "key = "+strconv.Quote(key), 1, nil)
	if err != nil {
		return nil, fmt.Errorf("load issue %s: %w", key, err)
	}
	for _, issue := range issues {
		if strings.EqualFold(issue.Key, key) {
			return []jira.Issue{issue}, nil
		}
	}
	return nil, &jira.Error{Code: jira.CodeNotFound, Message: "issue " + key + " not found"}
}

func NewRow(issue jira.Issue, wl jira.Worklog) Row {
	project := issue.ProjectName
	if project == "" {
		project = issue.ProjectKey
	}
	issueType := issue.IssueType
	if issueType == "" {
		issueType = "Unknown"
	}
	return Row{
		WorklogID:    wl.ID,
		IssueKey:     issue.Key,
		IssueSummary: issue.Summary,
		Project:      project,
		ProjectKey:   issue.ProjectKey,
		IssueType:    issueType,
		Author:       wl.AuthorName,
		AccountID:    wl.AuthorAccountID,
		Started:      wl.Started,
		Hours:        Round2(wl.Hours()),
		Comment:      wl.CommentText(),
	}
}

// Filter selects rows. Zero-valued fields match everything; From and To are
// inclusive calendar dates. Project matches the project name or key.
type Filter struct {
	From      time.Time
	To        time.Time
	Project   string
	IssueType string
	Author    string
}

func (f Filter) Match(r Row) bool {
	day := r.Date()
	if !f.From.IsZero() && day < f.From.Format("2006-01-02") {
		return false
	}
	if !f.To.IsZero() && day > f.To.Format("2006-01-02") {
		return false
	}
	if f.Project != "" && !strings.EqualFold(f.Project, r.Project) && !strings.EqualFold(f.Project, r.ProjectKey) {
		return false
	}
	if f.IssueType != "" && !strings.EqualFold(f.IssueType, r.IssueType) {
		return false
	}
	if f.Author != "" && !strings.EqualFold(f.Author, r.Author) {
		return false
	}
	return true
}

func (f Filter) Apply(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortNewestFirst orders rows by start time, latest first.
func SortNewestFirst(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Started.After(rows[j].Started)
	})
}

// Distinct returns the sorted unique values of a row attribute.
func Distinct(rows []Row, key func(Row) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
