package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-worklog/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	calls []Request
	reply string
	err   error
}

func (m *fakeModel) Generate(_ context.Context, req Request) (string, error) {
	m.calls = append(m.calls, req)
	return m.reply, m.err
}

func sampleRows() []report.Row {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 9, 0, 0, 0, time.UTC) }
	return []report.Row{
		{IssueKey: "OPS-1", Project: "Operations", Author: "Ada", Started: day(1), Hours: 1.5},
		{IssueKey: "OPS-1", Project: "Operations", Author: "Linus", Started: day(2), Hours: 1},
		{IssueKey: "WEB-2", Project: "Website", Author: "Ada", Started: day(1), Hours: 0.5},
	}
}

func TestAskRoutedIntentsSkipModel(t *testing.T) {
	tests := []struct {
		question string
		intent   Intent
		title    string
		firstKey string
		totals   int
		wantText string
	}{
		{"Who worked the most?", IntentAuthor, "Hours by author", "Ada", 2, "Ada has the most time logged: 2h of 3h."},
		{"Compare projects", IntentProject, "Hours by project", "Operations", 2, "Operations has the most time logged: 2h 30m of 3h."},
		{"Issues with highest effort", IntentIssue, "Hours by issue", "OPS-1", 2, "OPS-1 has the most time logged: 2h 30m of 3h."},
		{"Daily trend", IntentDay, "Hours per day", "2024-03-01", 2, "2024-03-01 to 2024-03-02, busiest 2024-03-01 with 2h."},
		{"Monthly", IntentMonth, "Hours per month", "2024-03", 1, "2024-03 to 2024-03, busiest 2024-03 with 3h."},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			model := &fakeModel{}
			a := New(model)

			ans, err := a.Ask(context.Background(), tt.question, sampleRows())
			require.NoError(t, err)
			assert.Equal(t, tt.intent, ans.Intent)
			assert.Equal(t, tt.title, ans.Title)
			require.Len(t, ans.Totals, tt.totals)
			assert.Equal(t, tt.firstKey, ans.Totals[0].Key)
			assert.Equal(t, tt.wantText, ans.Text)
			assert.Empty(t, model.calls)
		})
	}
}

func TestAskTotal(t *testing.T) {
	ans, err := New(nil).Ask(context.Background(), "How many hours overall?", sampleRows())
	require.NoError(t, err)
	assert.Equal(t, IntentTotal, ans.Intent)
	assert.Nil(t, ans.Totals)
	assert.Equal(t, "3h logged in 3 worklogs across 2 issues.", ans.Text)
}

func TestAskFreeformCallsModel(t *testing.T) {
	model := &fakeModel{reply: "  Ada carries most of the load.\n"}
	ans, err := New(model).Ask(context.Background(), "Anything unusual?", sampleRows())
	require.NoError(t, err)

	assert.Equal(t, IntentFreeform, ans.Intent)
	assert.Equal(t, "Ada carries most of the load.", ans.Text)
	require.Len(t, model.calls, 1)

	req := model.calls[0]
	assert.Equal(t, "You are an expert Jira analytics assistant.", req.System)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.Equal(t, "DATA:\n"+
		"Project: Operations | Total Hours: 2.5\n"+
		"Project: Website | Total Hours: 0.5\n"+
		"Issue: OPS-1 | Total Hours: 2.5\n"+
		"Issue: WEB-2 | Total Hours: 0.5\n"+
		"Author: Ada | Total Hours: 2\n"+
		"Author: Linus | Total Hours: 1\n"+
		"\nQUESTION:\nAnything unusual?", req.Prompt)
}

func TestAskFreeformModelError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(&fakeModel{err: boom}).Ask(context.Background(), "Anything unusual?", sampleRows())
	assert.ErrorIs(t, err, boom)
}

func TestAskFreeformWithoutModel(t *testing.T) {
	_, err := New(nil).Ask(context.Background(), "Anything unusual?", sampleRows())
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestAskNoRows(t *testing.T) {
	model := &fakeModel{reply: "should not be used"}
	for _, rows := range [][]report.Row{nil, {}} {
		ans, err := New(model).Ask(context.Background(), "Anything unusual?", rows)
		require.NoError(t, err)
		assert.Equal(t, NoDataText, ans.Text)
		assert.Nil(t, ans.Totals)
	}
	assert.Empty(t, model.calls)
}

func TestAskEmptyQuestion(t *testing.T) {
	_, err := New(nil).Ask(context.Background(), "   ", sampleRows())
	assert.Error(t, err)
}
