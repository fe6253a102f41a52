package ui

import (
	"strings"

	"github.com/pterm/pterm"
)

const (
	CmdHelp   = "/help"
	CmdModel  = "/model"
	CmdReload = "/reload"
	CmdClear  = "/clear"
	CmdExit   = "/exit"
)

// Command is a parsed slash command. Name is the canonical command, or the
// typed word when it matched nothing.
type Command struct {
	Name  string
	Args  string
	Known bool
}

type CommandDef struct {
	Name        string
	Aliases     []string
	Usage       string
	Description string
}

var AvailableCommands = []CommandDef{
	{Name: CmdHelp, Aliases: []string{"/h", "/?"}, Description: "Show commands"},
	{Name: CmdModel, Aliases: []string{"/m"}, Usage: "[name]", Description: "Switch the Gemini model"},
	{Name: CmdReload, Aliases: []string{"/r", "/refresh"}, Description: "Fetch worklogs from Jira again"},
	{Name: CmdClear, Aliases: []string{"/cls"}, Description: "Clear the screen"},
	{Name: CmdExit, Aliases: []string{"/q", "/quit"}, Description: "Quit"},
}

// CommandNames feeds input completion; aliases are left out.
func CommandNames() []string {
	names := make([]string, len(AvailableCommands))
	for i, cmd := range AvailableCommands {
		names[i] = cmd.Name
	}
	return names
}

// ParseCommand splits a slash command into name and arguments. A name
// resolves through aliases, then through a unique prefix ("/rel").
func ParseCommand(input string) (Command, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return Command{}, false
	}
	name, args, _ := strings.Cut(input, " ")
	cmd := Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
	if def, ok := lookupCommand(cmd.Name); ok {
		cmd.Name = def.Name
		cmd.Known = true
	}
	return cmd, true
}

func lookupCommand(name string) (CommandDef, bool) {
	for _, def := range AvailableCommands {
		if def.Name == name {
			return def, true
		}
		for _, alias := range def.Aliases {
			if alias == name {
				return def, true
			}
		}
	}
	if len(name) < 2 {
		return CommandDef{}, false
	}
	var match []CommandDef
	for _, def := range AvailableCommands {
		if strings.HasPrefix(def.Name, name) {
			match = append(match, def)
		}
	}
	if len(match) != 1 {
		return CommandDef{}, false
	}
	return match[0], true
}

func PrintCommands() {
	pterm.Println(pterm.Gray("Commands:"))
	for _, cmd := range AvailableCommands {
		usage := cmd.Name
		if cmd.Usage != "" {
			usage += " " + cmd.Usage
		}
		pterm.Println(pterm.Cyan("  "+usage) + pterm.Gray("  "+cmd.Description+" ("+strings.Join(cmd.Aliases, ", ")+")"))
	}
	pterm.Println(pterm.Gray("Anything else is a question, e.g. \"who worked the most?\" or \"daily trend\"."))
	pterm.Println()
}
