// Package session runs the interactive question loop behind `worklog ask`.
package session

import (
	"context"
	"errors"
	"fmt"

	"go-worklog/internal/assistant"
	"go-worklog/internal/report"
	"go-worklog/internal/ui"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
)

const maxTurns = 50

// LoadFunc fetches the rows questions are answered from.
type LoadFunc func(ctx context.Context) ([]report.Row, error)

// ModelSwitcher is implemented by models that can change the underlying
// model between questions.
type ModelSwitcher interface {
	ModelName() string
	SetModel(name string)
}

// IO is the terminal the runner talks to. Tests replace it.
type IO struct {
	ReadLine    func(prompt string) (string, bool)
	SelectModel func(current string) (string, error)
	Clear       func()
}

type Runner struct {
	assistant *assistant.Assistant
	load      LoadFunc
	switcher  ModelSwitcher
	io        IO

	rows []report.Row
}

// NewRunner builds a runner. switcher may be nil.
func NewRunner(a *assistant.Assistant, load LoadFunc, switcher ModelSwitcher, modelOptions []huh.Option[string]) *Runner {
	return &Runner{
		assistant: a,
		load:      load,
		switcher:  switcher,
		io: IO{
			ReadLine: ui.ReadInput,
			SelectModel: func(current string) (string, error) {
				return ui.SelectModel(current, modelOptions)
			},
			Clear: func() { fmt.Print("\033[H\033[2J") },
		},
	}
}

func (r *Runner) WithIO(io IO) *Runner {
	r.io = io
	return r
}

func (r *Runner) Run(ctx context.Context) error {
	ui.PrintWelcome()
	if err := r.reload(ctx); err != nil {
		return err
	}

	for turn := 0; turn < maxTurns; turn++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, ok := r.io.ReadLine("You: ")
		if !ok || ui.IsExitCommand(line) {
			ui.PrintFarewell()
			return nil
		}
		if line == "" {
			continue
		}

		if cmd, isCmd := ui.ParseCommand(line); isCmd {
			if cmd.Name == ui.CmdExit {
				ui.PrintFarewell()
				return nil
			}
			if err := r.handleCommand(ctx, cmd); err != nil {
				return err
			}
			continue
		}

		if err := r.ask(ctx, line); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ui.PrintError(err.Error())
		}
	}

	ui.PrintStatus("That's enough questions for one session.")
	return nil
}

func (r *Runner) reload(ctx context.Context) error {
	spinner, _ := pterm.DefaultSpinner.Start("Loading worklogs from Jira...")
	rows, err := r.load(ctx)
	if err != nil {
		spinner.Fail("Could not load worklogs")
		return fmt.Errorf("load worklogs: %w", err)
	}
	spinner.Success(fmt.Sprintf("Loaded %d worklogs", len(rows)))
	r.rows = rows
	if len(rows) > 0 {
		ui.PrintSummary(rows)
	}
	return nil
}

func (r *Runner) handleCommand(ctx context.Context, cmd ui.Command) error {
	if !cmd.Known {
		ui.PrintError("Unknown command " + cmd.Name + ". Type /help.")
		return nil
	}
	switch cmd.Name {
	case ui.CmdHelp:
		ui.PrintCommands()
	case ui.CmdClear:
		r.io.Clear()
	case ui.CmdReload:
		if err := r.reload(ctx); err != nil {
			ui.PrintError(err.Error())
		}
	case ui.CmdModel:
		if r.switcher == nil {
			ui.PrintError("No language model configured.")
			return nil
		}
		name := cmd.Args
		if name == "" {
			selected, err := r.io.SelectModel(r.switcher.ModelName())
			if err != nil {
				ui.PrintCancelled()
				return nil
			}
			name = selected
		}
		r.switcher.SetModel(name)
		ui.PrintStatus("Model: " + name)
	}
	return nil
}

func (r *Runner) ask(ctx context.Context, question string) error {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Thinking...")
	answer, err := r.assistant.Ask(ctx, question, r.rows)
	spinner.Stop()
	if errors.Is(err, assistant.ErrNoModel) {
		return fmt.Errorf("that question needs a language model; set GEMINI_API_KEY or run `worklog config`")
	}
	if err != nil {
		return err
	}
	Render(answer)
	return nil
}

// Render prints an answer: a chart for routed intents, typed text for
// model answers.
func Render(a *assistant.Answer) {
	if a.Intent == assistant.IntentFreeform || len(a.Totals) == 0 {
		ui.PrintTypewriter(a.Text)
		return
	}
	ui.PrintChart(a.Title, a.Totals)
	ui.PrintStatus(a.Text)
	pterm.Println()
}
