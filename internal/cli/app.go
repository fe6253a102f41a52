package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-worklog/internal/assistant"
	"go-worklog/internal/config"
	"go-worklog/internal/jira"
	"go-worklog/internal/report"

	"github.com/pterm/pterm"
)

type contextKey string

const appKey contextKey = "app"

// GlobalFlags holds values for the persistent flags.
type GlobalFlags struct {
	URL     string
	Verbose bool
	Timeout time.Duration
}

// App holds what every command shares: resolved config, logger and a lazily
// built Jira client.
type App struct {
	Config *config.Config
	Logger *pterm.Logger
	Flags  GlobalFlags

	client *jira.Client
}

func NewApp(cfg *config.Config, flags GlobalFlags) *App {
	level := pterm.LogLevelInfo
	if flags.Verbose {
		level = pterm.LogLevelDebug
	}
	return &App{
		Config: cfg,
		Logger: pterm.DefaultLogger.WithLevel(level).WithWriter(os.Stderr),
		Flags:  flags,
	}
}

func withApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

func appFrom(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}

// Jira returns the client, validating the configuration on first use.
func (a *App) Jira() (*jira.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if err := a.Config.Validate(); err != nil {
		return nil, err
	}
	opts, err := a.Config.ClientOptions(a.Logger)
	if err != nil {
		return nil, err
	}
	c, err := jira.NewClient(a.Config.JiraURL, opts)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("jira client ready", a.Logger.Args("url", c.BaseURL(), "auth", c.AuthMode(), "timeout", c.Timeout()))
	a.client = c
	return c, nil
}

// Gemini returns nil without an error when no API key is configured.
func (a *App) Gemini(ctx context.Context) (*assistant.Gemini, error) {
	if a.Config.GeminiAPIKey == "" {
		return nil, nil
	}
	g, err := assistant.NewGemini(ctx, a.Config.GeminiAPIKey, a.Config.GeminiModel, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	return g, nil
}

// LoadRows fetches worklogs on the user's issues with a spinner.
func (a *App) LoadRows(ctx context.Context, jql, issueKey string) ([]report.Row, error) {
	client, err := a.Jira()
	if err != nil {
		return nil, err
	}
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Loading worklogs from Jira...")
	rows, err := report.Load(ctx, client, report.LoadOptions{
		JQL:       jql,
		MaxIssues: a.Config.MaxIssues,
		IssueKey:  issueKey,
	})
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("worklogs loaded", a.Logger.Args("rows", len(rows)))
	return rows, nil
}
