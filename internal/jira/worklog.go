package jira

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-worklog/internal/timeparse"
)

const worklogPageSize = 100

func worklogPath(issueKey string) string {
	return "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/worklog"
}

// Worklogs returns every worklog of an issue. Pages are fetched one after
// another, startAt advancing by the page size, until startAt+pageSize
// reaches the total the server reported.
func (c *Client) Worklogs(ctx context.Context, issueKey string) ([]Worklog, error) {
	var all []Worklog
	for startAt := 0; ; startAt += worklogPageSize {
		q := url.Values{}
		q.Set("startAt", strconv.Itoa(startAt))
		q.Set("maxResults", strconv.Itoa(worklogPageSize))

		var page worklogListResponse
		if err := c.do(ctx, http.MethodGet, worklogPath(issueKey), q, nil, &page); err != nil {
			return nil, err
		}
		for _, e := range page.Worklogs {
			wl, err := e.toWorklog(issueKey)
			if err != nil {
				return nil, err
			}
			all = append(all, wl)
		}
		if startAt+worklogPageSize >= page.Total {
			break
		}
	}
	if all == nil {
		all = []Worklog{}
	}
	return all, nil
}

// AddWorklog logs work on an issue. timeSpent uses Jira's own duration
// grammar ("2h 30m") and is sent as is. A zero started lets Jira use now.
func (c *Client) AddWorklog(ctx context.Context, issueKey, timeSpent, comment string, started time.Time) (*Worklog, error) {
	if strings.TrimSpace(timeSpent) == "" {
		return nil, validationError("time spent is required")
	}
	payload := worklogPayload{TimeSpent: strings.TrimSpace(timeSpent)}
	if !started.IsZero() {
		payload.Started = FormatStarted(started)
	}
	if comment != "" {
		payload.Comment = TextDocument(comment)
	}

	var created worklogEntry
	if err := c.do(ctx, http.MethodPost, worklogPath(issueKey), nil, payload, &created); err != nil {
		return nil, err
	}
	wl, err := created.toWorklog(issueKey)
	if err != nil {
		return nil, err
	}
	return &wl, nil
}

// UpdateWorklog replaces the time of a worklog, and its comment when comment
// is non-empty; an empty comment leaves the existing one in place. Hours are
// converted to seconds rounding half away from zero.
func (c *Client) UpdateWorklog(ctx context.Context, issueKey, worklogID string, hours float64, comment string) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return validationError("hours must be a finite number")
	}
	seconds := timeparse.HoursToSeconds(hours)
	if seconds <= 0 {
		return validationError("hours must be positive")
	}
	payload := worklogPayload{TimeSpentSeconds: seconds}
	if comment != "" {
		payload.Comment = TextDocument(comment)
	}
	return c.do(ctx, http.MethodPut, worklogPath(issueKey)+"/"+url.PathEscape(worklogID), nil, payload, nil)
}

func (c *Client) DeleteWorklog(ctx context.Context, issueKey, worklogID string) error {
	return c.do(ctx, http.MethodDelete, worklogPath(issueKey)+"/"+url.PathEscape(worklogID), nil, nil, nil)
}

func (e worklogEntry) toWorklog(issueKey string) (Worklog, error) {
	wl := Worklog{
		ID:               e.ID,
		IssueKey:         issueKey,
		AuthorName:       e.Author.DisplayName,
		AuthorAccountID:  e.Author.AccountID,
		TimeSpentSeconds: e.TimeSpentSeconds,
		Comment:          e.Comment,
	}
	if e.Started != "" {
		t, err := ParseStarted(e.Started)
		if err != nil {
			return Worklog{}, &Error{Code: CodeAPI, Message: "worklog " + e.ID + ": " + err.Error(), Cause: err}
		}
		wl.Started = t
	}
	if string(wl.Comment) == "null" {
		wl.Comment = nil
	}
	return wl, nil
}
