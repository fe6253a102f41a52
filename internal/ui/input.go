package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"go-worklog/internal/jira"
	"go-worklog/internal/timeparse"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
)

type inputModel struct {
	textInput textinput.Model
	submitted bool
	cancelled bool
}

func newInputModel(prompt string) inputModel {
	ti := textinput.New()
	ti.Prompt = pterm.Bold.Sprint(pterm.Cyan(prompt))
	ti.Placeholder = "Who logged the most time this month?"
	ti.Focus()
	ti.SetSuggestions(CommandNames())
	ti.ShowSuggestions = true
	return inputModel{textInput: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	return m.textInput.View()
}

// ReadInput reads one line with command completion. ok is false when the
// user pressed Ctrl+C or Esc.
func ReadInput(prompt string) (line string, ok bool) {
	p := tea.NewProgram(newInputModel(prompt))
	finalModel, err := p.Run()
	if err != nil {
		return "", false
	}
	result := finalModel.(inputModel)
	if result.cancelled {
		return "", false
	}
	return strings.TrimSpace(result.textInput.Value()), true
}

func ConfirmYesNo(question string) bool {
	s := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s [Y/n]: ", pterm.Bold.Sprint(question))
		if !s.Scan() {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(s.Text())) {
		case "", "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}

func IsExitCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", "bye", "/exit", "/quit":
		return true
	}
	return false
}

func validateDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date, use YYYY-MM-DD")
	}
	return nil
}

func validateDuration(s string) error {
	if timeparse.Parse(s) <= 0 {
		return fmt.Errorf("use a duration like 2h 30m, 1.5h or 45m")
	}
	return nil
}

// IssueForm asks for the fields of a new issue. Values already set on in are
// used as defaults.
func IssueForm(in jira.NewIssue, projects []jira.Project) (jira.NewIssue, error) {
	out := in
	if out.IssueType == "" {
		out.IssueType = "Task"
	}

	projectOptions := make([]huh.Option[string], 0, len(projects))
	for _, p := range projects {
		projectOptions = append(projectOptions, huh.NewOption(p.Key+"  "+p.Name, p.Key))
	}

	var projectField huh.Field
	if len(projectOptions) > 0 {
		projectField = huh.NewSelect[string]().
			Title("Project").
			Options(projectOptions...).
			Value(&out.ProjectKey)
	} else {
		projectField = huh.NewInput().
			Title("Project key").
			Value(&out.ProjectKey).
			Validate(required("project key"))
	}

	form := huh.NewForm(
		huh.NewGroup(
			projectField,
			huh.NewSelect[string]().
				Title("Issue type").
				Options(huh.NewOptions("Task", "Story", "Bug", "Epic")...).
				Value(&out.IssueType),
			huh.NewInput().
				Title("Summary").
				Value(&out.Summary).
				Validate(required("summary")),
			huh.NewText().
				Title("Description").
				Value(&out.Description),
		).Title("New issue"),

		huh.NewGroup(
			huh.NewInput().
				Title("Epic name").
				Value(&out.EpicName).
				Validate(required("epic name")),
		).WithHideFunc(func() bool { return out.IssueType != "Epic" }),
	)

	if err := form.Run(); err != nil {
		return jira.NewIssue{}, fmt.Errorf("issue form: %w", err)
	}
	return out, nil
}

// WorklogInput is what WorklogForm collects.
type WorklogInput struct {
	TimeSpent string
	Comment   string
	Started   string
}

func WorklogForm(issueKey string, in WorklogInput) (WorklogInput, error) {
	out := in
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Time spent").
				Placeholder("2h 30m").
				Value(&out.TimeSpent).
				Validate(validateDuration),
			huh.NewInput().
				Title("Started (YYYY-MM-DD, empty for now)").
				Value(&out.Started).
				Validate(validateDate),
			huh.NewText().
				Title("What did you work on?").
				Value(&out.Comment),
		).Title("Log work on " + issueKey),
	)
	if err := form.Run(); err != nil {
		return WorklogInput{}, fmt.Errorf("worklog form: %w", err)
	}
	return out, nil
}

// SelectModel lets the user pick a model from options, starting at current.
func SelectModel(current string, options []huh.Option[string]) (string, error) {
	selected := current
	err := huh.NewSelect[string]().
		Title("Gemini model").
		Options(options...).
		Value(&selected).
		Run()
	if err != nil {
		return current, err
	}
	return selected, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
