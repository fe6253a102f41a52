package cli

import (
	"fmt"

	"go-worklog/internal/jira"
	"go-worklog/internal/report"
	"go-worklog/internal/ui"

	"github.com/spf13/cobra"
)

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated Jira user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := appFrom(cmd.Context()).Jira()
			if err != nil {
				return err
			}
			me, err := client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintUser(me)
			return nil
		},
	}
}

func newProjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects visible to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := appFrom(cmd.Context()).Jira()
			if err != nil {
				return err
			}
			projects, err := client.Projects(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintProjectsTable(projects)
			return nil
		},
	}
}

func newIssuesCmd() *cobra.Command {
	var jql string
	var maxResults int

	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List your issues, or the result of a JQL query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := appFrom(cmd.Context()).Jira()
			if err != nil {
				return err
			}
			issues, err := client.MyIssues(cmd.Context(), jql, maxResults)
			if err != nil {
				return err
			}
			ui.PrintIssuesTable(issues)
			return nil
		},
	}
	cmd.Flags().StringVar(&jql, "jql", "", "JQL query (default: issues assigned to you)")
	cmd.Flags().IntVar(&maxResults, "max", report.DefaultMaxIssues, "Maximum number of issues")
	return cmd
}

func newIssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Manage issues",
	}
	cmd.AddCommand(newIssueCreateCmd())
	return cmd
}

func newIssueCreateCmd() *cobra.Command {
	var in jira.NewIssue

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue (interactive when --project or --summary is missing)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := appFrom(ctx).Jira()
			if err != nil {
				return err
			}

			if in.ProjectKey == "" || in.Summary == "" {
				projects, err := client.Projects(ctx)
				if err != nil {
					return fmt.Errorf("list projects: %w", err)
				}
				if in, err = ui.IssueForm(in, projects); err != nil {
					return err
				}
			}

			issue, err := client.CreateIssue(ctx, in)
			if err != nil {
				return err
			}
			ui.PrintIssueCreated(issue, client.BaseURL())
			return nil
		},
	}
	cmd.Flags().StringVar(&in.ProjectKey, "project", "", "Project key")
	cmd.Flags().StringVar(&in.Summary, "summary", "", "Summary")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	cmd.Flags().StringVar(&in.IssueType, "type", "Task", "Issue type")
	cmd.Flags().StringVar(&in.EpicName, "epic-name", "", "Epic name (required for --type Epic)")
	return cmd
}
