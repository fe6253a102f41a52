package jira

import (
	"context"
	"net/http"
	"strings"
)

const DefaultMyIssuesJQL = "assignee = currentUser() ORDER BY updated DESC"

var DefaultSearchFields = []string{"summary", "project", "issuetype", "assignee", "status"}

// SearchIssues runs a JQL query. Results are capped at maxResults by the
// server; there is no implicit pagination.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int, fields []string) ([]Issue, error) {
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}
	payload := searchRequest{JQL: jql, MaxResults: maxResults, Fields: fields}

	var sr searchResponse
	if err := c.do(ctx, http.MethodPost, c.searchPath, nil, payload, &sr); err != nil {
		return nil, err
	}

	issues := make([]Issue, 0, len(sr.Issues))
	for _, si := range sr.Issues {
		issues = append(issues, si.toIssue())
	}
	return issues, nil
}

func (c *Client) MyIssues(ctx context.Context, jql string, maxResults int) ([]Issue, error) {
	if strings.TrimSpace(jql) == "" {
		jql = DefaultMyIssuesJQL
	}
	return c.SearchIssues(ctx, jql, maxResults, nil)
}

// CreateIssue creates an issue with the description wrapped in ADF. Epics
// need an Epic Name, which goes to the configured custom field.
func (c *Client) CreateIssue(ctx context.Context, in NewIssue) (*Issue, error) {
	if strings.TrimSpace(in.ProjectKey) == "" {
		return nil, validationError("project key is required")
	}
	if strings.TrimSpace(in.Summary) == "" {
		return nil, validationError("summary is required")
	}
	issueType := in.IssueType
	if issueType == "" {
		issueType = "Task"
	}

	fields := map[string]any{
		"project":     map[string]string{"key": in.ProjectKey},
		"summary":     in.Summary,
		"description": TextDocument(in.Description),
		"issuetype":   map[string]string{"name": issueType},
	}
	if strings.EqualFold(issueType, "Epic") {
		if strings.TrimSpace(in.EpicName) == "" {
			e := validationError("epic name is required for issue type Epic")
			e.Fields = map[string]string{c.epicNameField: "Epic Name is required."}
			return nil, e
		}
		fields[c.epicNameField] = in.EpicName
	}

	var created createIssueResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/issue", nil, map[string]any{"fields": fields}, &created); err != nil {
		return nil, err
	}
	return &Issue{
		ID:         created.ID,
		Key:        created.Key,
		Summary:    in.Summary,
		ProjectKey: in.ProjectKey,
		IssueType:  issueType,
	}, nil
}

func (si searchIssue) toIssue() Issue {
	issue := Issue{ID: si.ID, Key: si.Key, Summary: si.Fields.Summary}
	if p := si.Fields.Project; p != nil {
		issue.ProjectKey = p.Key
		issue.ProjectName = p.Name
	}
	if t := si.Fields.IssueType; t != nil {
		issue.IssueType = t.Name
	}
	if s := si.Fields.Status; s != nil {
		issue.Status = s.Name
	}
	if a := si.Fields.Assignee; a != nil {
		issue.AssigneeName = a.DisplayName
		issue.AssigneeAccountID = a.AccountID
	}
	return issue
}
