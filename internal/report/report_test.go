package report

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-worklog/internal/jira"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	issues   []jira.Issue
	others   []jira.Issue
	worklogs map[string][]jira.Worklog
	failKey  string
	gotJQL   string
	gotMax   int
	fetched  []string
}

func (f *fakeSource) SearchIssues(ctx context.Context, jql string, maxResults int, fields []string) ([]jira.Issue, error) {
	f.gotJQL, f.gotMax = jql, maxResults
	for _, issue := range append(f.issues, f.others...) {
		if jql == `key = "`+issue.Key+`"` {
			return []jira.Issue{issue}, nil
		}
	}
	return []jira.Issue{}, nil
}

func (f *fakeSource) MyIssues(ctx context.Context, jql string, maxResults int) ([]jira.Issue, error) {
	f.gotJQL, f.gotMax = jql, maxResults
	return f.issues, nil
}

func (f *fakeSource) Worklogs(ctx context.Context, issueKey string) ([]jira.Worklog, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, issueKey)
	f.mu.Unlock()
	if issueKey == f.failKey {
		return nil, &jira.Error{Code: jira.CodeAuth, Message: "denied"}
	}
	return f.worklogs[issueKey], nil
}

func at(day, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleSource() *fakeSource {
	return &fakeSource{
		issues: []jira.Issue{
			{Key: "OPS-1", Summary: "Certificates", ProjectKey: "OPS", ProjectName: "Operations", IssueType: "Task"},
			{Key: "WEB-2", Summary: "Landing page", ProjectKey: "WEB", ProjectName: "Website", IssueType: "Story"},
			{Key: "WEB-3", Summary: "Nothing logged", ProjectKey: "WEB", ProjectName: "Website"},
		},
		worklogs: map[string][]jira.Worklog{
			"OPS-1": {
				{ID: "1", AuthorName: "Ada", AuthorAccountID: "a", Started: at("2024-03-01", "09:00"), TimeSpentSeconds: 5400},
				{ID: "2", AuthorName: "Linus", AuthorAccountID: "l", Started: at("2024-03-02", "10:00"), TimeSpentSeconds: 3600},
			},
			"WEB-2": {
				{ID: "3", AuthorName: "Ada", AuthorAccountID: "a", Started: at("2024-03-01", "14:00"), TimeSpentSeconds: 1800,
					Comment: []byte(`{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"Copy review"}]}]}`)},
			},
		},
	}
}

func TestLoad(t *testing.T) {
	src := sampleSource()

	rows, err := Load(context.Background(), src, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "", src.gotJQL)
	assert.Equal(t, DefaultMaxIssues, src.gotMax)
	assert.ElementsMatch(t, []string{"OPS-1", "WEB-2", "WEB-3"}, src.fetched)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{rows[0].WorklogID, rows[1].WorklogID, rows[2].WorklogID}, "issue order then server order")

	assert.Equal(t, Row{
		WorklogID:    "3",
		IssueKey:     "WEB-2",
		IssueSummary: "Landing page",
		Project:      "Website",
		ProjectKey:   "WEB",
		IssueType:    "Story",
		Author:       "Ada",
		AccountID:    "a",
		Started:      at("2024-03-01", "14:00"),
		Hours:        0.5,
		Comment:      "Copy review",
	}, rows[2])
}

func TestLoadSingleIssue(t *testing.T) {
	src := sampleSource()

	rows, err := Load(context.Background(), src, LoadOptions{IssueKey: "web-2", MaxIssues: 10, JQL: "project = WEB"})
	require.NoError(t, err)
	assert.Equal(t, `key = "WEB-2"`, src.gotJQL)
	assert.Equal(t, 1, src.gotMax)
	assert.Equal(t, []string{"WEB-2"}, src.fetched)
	require.Len(t, rows, 1)
}

func TestLoadSingleIssueOutsideMyIssues(t *testing.T) {
	src := sampleSource()
	src.others = []jira.Issue{{Key: "SEC-9", Summary: "Audit", ProjectKey: "SEC", ProjectName: "Security", IssueType: "Task"}}
	src.worklogs["SEC-9"] = []jira.Worklog{
		{ID: "7", AuthorName: "Grace", AuthorAccountID: "g", Started: at("2024-03-04", "11:00"), TimeSpentSeconds: 7200},
	}

	rows, err := Load(context.Background(), src, LoadOptions{IssueKey: "SEC-9", MaxIssues: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"SEC-9"}, src.fetched)
	require.Len(t, rows, 1)
	assert.Equal(t, "Security", rows[0].Project)
	assert.Equal(t, 2.0, rows[0].Hours)
}

func TestLoadSingleIssueMissing(t *testing.T) {
	src := sampleSource()

	rows, err := Load(context.Background(), src, LoadOptions{IssueKey: "OPS-99"})
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.True(t, jira.IsNotFound(err))
	assert.Contains(t, err.Error(), "OPS-99")
	assert.Empty(t, src.fetched)
}

func TestLoadFailsOnAnyIssue(t *testing.T) {
	src := sampleSource()
	src.failKey = "WEB-2"

	rows, err := Load(context.Background(), src, LoadOptions{Concurrency: 1})
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.True(t, jira.IsAuth(err))
	assert.Contains(t, err.Error(), "WEB-2")
}

func TestLoadEmpty(t *testing.T) {
	rows, err := Load(context.Background(), &fakeSource{}, LoadOptions{})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func loadedRows(t *testing.T) []Row {
	t.Helper()
	rows, err := Load(context.Background(), sampleSource(), LoadOptions{})
	require.NoError(t, err)
	return rows
}

func TestFilter(t *testing.T) {
	rows := loadedRows(t)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty matches all", Filter{}, []string{"1", "2", "3"}},
		{"date range inclusive", Filter{From: at("2024-03-02", "00:00"), To: at("2024-03-02", "00:00")}, []string{"2"}},
		{"from only", Filter{From: at("2024-03-02", "00:00")}, []string{"2"}},
		{"to only", Filter{To: at("2024-03-01", "00:00")}, []string{"1", "3"}},
		{"project", Filter{Project: "website"}, []string{"3"}},
		{"project key", Filter{Project: "ops"}, []string{"1", "2"}},
		{"issue type", Filter{IssueType: "Task"}, []string{"1", "2"}},
		{"author", Filter{Author: "Ada"}, []string{"1", "3"}},
		{"combined", Filter{Author: "Ada", Project: "Operations"}, []string{"1"}},
		{"no match", Filter{Author: "Grace"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, r := range tt.filter.Apply(rows) {
				got = append(got, r.WorklogID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	rows := loadedRows(t)
	SortNewestFirst(rows)
	assert.Equal(t, "2", rows[0].WorklogID)
	assert.Equal(t, "3", rows[1].WorklogID)
	assert.Equal(t, "1", rows[2].WorklogID)
}

func TestAggregations(t *testing.T) {
	rows := loadedRows(t)

	assert.Equal(t, []Total{{"Operations", 2.5}, {"Website", 0.5}}, ByProject(rows))
	assert.Equal(t, []Total{{"OPS-1", 2.5}, {"WEB-2", 0.5}}, ByIssue(rows))
	assert.Equal(t, []Total{{"Ada", 2}, {"Linus", 1}}, ByAuthor(rows))
	assert.Equal(t, []Total{{"2024-03-01", 2}, {"2024-03-02", 1}}, ByDay(rows))
	assert.Equal(t, []Total{{"2024-03", 3}}, ByMonth(rows))
	assert.Equal(t, 3.0, TotalHours(rows))

	series := ByDayAndIssue(rows)
	require.Len(t, series, 2)
	assert.Equal(t, "2024-03-01", series[0].Date)
	assert.Equal(t, []Total{{"OPS-1", 1.5}, {"WEB-2", 0.5}}, series[0].Issues)
	assert.Equal(t, []Total{{"OPS-1", 1}}, series[1].Issues)
}

func TestSumByTieBreak(t *testing.T) {
	rows := []Row{{Author: "b", Hours: 1}, {Author: "a", Hours: 1}, {Author: "c", Hours: 2}}
	assert.Equal(t, []Total{{"c", 2}, {"a", 1}, {"b", 1}}, ByAuthor(rows))
}

func TestContext(t *testing.T) {
	want := "Project: Operations | Total Hours: 2.5\n" +
		"Project: Website | Total Hours: 0.5\n" +
		"Issue: OPS-1 | Total Hours: 2.5\n" +
		"Issue: WEB-2 | Total Hours: 0.5\n" +
		"Author: Ada | Total Hours: 2\n" +
		"Author: Linus | Total Hours: 1"
	assert.Equal(t, want, Context(loadedRows(t)))
	assert.Equal(t, "", Context(nil))
}

func TestDistinct(t *testing.T) {
	rows := loadedRows(t)
	assert.Equal(t, []string{"Ada", "Linus"}, Distinct(rows, func(r Row) string { return r.Author }))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.33, Round2(1.0/3))
	assert.Equal(t, 1.5, Round2(1.5))
	assert.Equal(t, 0.17, Round2(600.0/3600))
}
