package cli

import (
	"context"
	"strings"

	"go-worklog/internal/assistant"
	"go-worklog/internal/config"
	"go-worklog/internal/report"
	"go-worklog/internal/session"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var jql string

	cmd := &cobra.Command{
		Use:   "ask [QUESTION...]",
		Short: "Ask about your worklogs; starts a session when no question is given",
		Long: "Questions about authors, projects, issues, days, months or totals are answered\n" +
			"from the data directly. Anything else goes to Gemini with a summary of the data.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := appFrom(ctx)

			gemini, err := app.Gemini(ctx)
			if err != nil {
				return err
			}
			var model assistant.Model
			var switcher session.ModelSwitcher
			if gemini != nil {
				model, switcher = gemini, gemini
			}
			a := assistant.New(model)

			if len(args) > 0 {
				rows, err := app.LoadRows(ctx, jql, "")
				if err != nil {
					return err
				}
				answer, err := a.Ask(ctx, strings.Join(args, " "), rows)
				if err != nil {
					return err
				}
				session.Render(answer)
				return nil
			}

			load := func(ctx context.Context) ([]report.Row, error) {
				return app.LoadRows(ctx, jql, "")
			}
			return session.NewRunner(a, load, switcher, config.GeminiModelOptions()).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&jql, "jql", "", "JQL selecting the issues (default: issues assigned to you)")
	return cmd
}
