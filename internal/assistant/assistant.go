// Package assistant answers questions about worklogs. Questions that match a
// known aggregation are answered locally; anything else goes to a language
// model together with a plain-text summary of the data.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-worklog/internal/report"
	"go-worklog/internal/timeparse"
)

const (
	SystemPrompt = "You are an expert Jira analytics assistant."
	Temperature  = 0.3

	NoDataText = "No worklogs available for analysis."
)

var ErrNoModel = errors.New("no language model configured")

// Request is one stateless model call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
}

type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type Answer struct {
	Intent Intent
	Title  string
	// Totals backs the chart for routed intents; nil for free-form answers.
	Totals []report.Total
	Text   string
}

type Assistant struct {
	model Model
}

// New returns an assistant. model may be nil, in which case only routed
// questions can be answered.
func New(model Model) *Assistant {
	return &Assistant{model: model}
}

func (a *Assistant) HasModel() bool { return a.model != nil }

func (a *Assistant) Ask(ctx context.Context, question string, rows []report.Row) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("empty question")
	}
	intent := Route(question)
	if len(rows) == 0 {
		return &Answer{Intent: intent, Text: NoDataText}, nil
	}

	switch intent {
	case IntentAuthor:
		return ranked(intent, "Hours by author", report.ByAuthor(rows), rows), nil
	case IntentProject:
		return ranked(intent, "Hours by project", report.ByProject(rows), rows), nil
	case IntentIssue:
		return ranked(intent, "Hours by issue", report.ByIssue(rows), rows), nil
	case IntentMonth:
		return timeline(intent, "Hours per month", report.ByMonth(rows)), nil
	case IntentDay:
		return timeline(intent, "Hours per day", report.ByDay(rows)), nil
	case IntentTotal:
		issues := report.Distinct(rows, func(r report.Row) string { return r.IssueKey })
		return &Answer{
			Intent: intent,
			Title:  "Total hours",
			Text: fmt.Sprintf("%s logged in %d worklogs across %d issues.",
				hoursText(report.TotalHours(rows)), len(rows), len(issues)),
		}, nil
	}

	if a.model == nil {
		return nil, ErrNoModel
	}
	text, err := a.model.Generate(ctx, Request{
		System:      SystemPrompt,
		Prompt:      BuildPrompt(question, rows),
		Temperature: Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("ask model: %w", err)
	}
	return &Answer{Intent: IntentFreeform, Text: strings.TrimSpace(text)}, nil
}

func BuildPrompt(question string, rows []report.Row) string {
	return "DATA:\n" + report.Context(rows) + "\n\nQUESTION:\n" + question
}

func ranked(intent Intent, title string, totals []report.Total, rows []report.Row) *Answer {
	top := totals[0]
	return &Answer{
		Intent: intent,
		Title:  title,
		Totals: totals,
		Text: fmt.Sprintf("%s has the most time logged: %s of %s.",
			top.Key, hoursText(top.Hours), hoursText(report.TotalHours(rows))),
	}
}

func timeline(intent Intent, title string, totals []report.Total) *Answer {
	busiest := totals[0]
	for _, t := range totals[1:] {
		if t.Hours > busiest.Hours {
			busiest = t
		}
	}
	return &Answer{
		Intent: intent,
		Title:  title,
		Totals: totals,
		Text: fmt.Sprintf("%s to %s, busiest %s with %s.",
			totals[0].Key, totals[len(totals)-1].Key, busiest.Key, hoursText(busiest.Hours)),
	}
}

func hoursText(h float64) string {
	return timeparse.Format(timeparse.HoursToSeconds(h))
}
