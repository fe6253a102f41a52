package jira

import (
	"encoding/json"
	"fmt"
	"time"
)

// StartedLayout is the timestamp layout Jira uses for worklog "started".
const StartedLayout = "2006-01-02T15:04:05.000-0700"

type UserProfile struct {
	AccountID    string
	DisplayName  string
	EmailAddress string
	TimeZone     string
	Active       bool
}

type Project struct {
	ID   string
	Key  string
	Name string
}

type Issue struct {
	ID                string
	Key               string
	Summary           string
	ProjectKey        string
	ProjectName       string
	IssueType         string
	Status            string
	AssigneeName      string
	AssigneeAccountID string
}

// NewIssue describes an issue to create. IssueType defaults to "Task".
// EpicName is required when IssueType is "Epic".
type NewIssue struct {
	ProjectKey  string
	Summary     string
	Description string
	IssueType   string
	EpicName    string
}

type Worklog struct {
	ID               string
	IssueKey         string
	AuthorName       string
	AuthorAccountID  string
	Started          time.Time
	TimeSpentSeconds int
	// Comment is the raw ADF document, if any.
	Comment json.RawMessage
}

func (w Worklog) Hours() float64 {
	return float64(w.TimeSpentSeconds) / 3600.0
}

func (w Worklog) CommentText() string {
	return ExtractText(w.Comment)
}

// ParseStarted accepts Jira's worklog timestamp layout and RFC 3339.
func ParseStarted(s string) (time.Time, error) {
	if t, err := time.Parse(StartedLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse started %q: %w", s, err)
	}
	return t, nil
}

// FormatStarted renders t the way the worklog endpoints expect it.
func FormatStarted(t time.Time) string {
	return t.Format(StartedLayout)
}

type myselfResponse struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	TimeZone     string `json:"timeZone"`
	Active       bool   `json:"active"`
}

type projectSearchResponse struct {
	StartAt    int               `json:"startAt"`
	MaxResults int               `json:"maxResults"`
	Total      int               `json:"total"`
	Values     []projectResponse `json:"values"`
}

type projectResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type searchRequest struct {
	JQL        string   `json:"jql"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields"`
}

type searchResponse struct {
	Issues []searchIssue `json:"issues"`
}

type searchIssue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Summary   string           `json:"summary"`
	Project   *projectResponse `json:"project"`
	IssueType *namedField      `json:"issuetype"`
	Status    *namedField      `json:"status"`
	Assignee  *userRef         `json:"assignee"`
}

type namedField struct {
	Name string `json:"name"`
}

type userRef struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

type createIssueResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

type worklogPayload struct {
	TimeSpent        string `json:"timeSpent,omitempty"`
	TimeSpentSeconds int    `json:"timeSpentSeconds,omitempty"`
	Started          string `json:"started,omitempty"`
	Comment          *Node  `json:"comment,omitempty"`
}

type worklogListResponse struct {
	StartAt    int            `json:"startAt"`
	MaxResults int            `json:"maxResults"`
	Total      int            `json:"total"`
	Worklogs   []worklogEntry `json:"worklogs"`
}

type worklogEntry struct {
	ID               string          `json:"id"`
	IssueID          string          `json:"issueId"`
	Author           userRef         `json:"author"`
	Started          string          `json:"started"`
	TimeSpentSeconds int             `json:"timeSpentSeconds"`
	Comment          json.RawMessage `json:"comment"`
}

type propertyResponse struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}
