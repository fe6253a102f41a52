package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// PrintTypewriter prints a model answer with a typewriter effect, stripping
// markdown markup the terminal cannot render.
func PrintTypewriter(text string) {
	text = strings.TrimSpace(stripMarkdown(text))
	if text == "" {
		return
	}

	fmt.Println()
	pterm.Print(pterm.FgMagenta.Sprint("AI: "))
	for _, ch := range text {
		fmt.Print(string(ch))
		time.Sleep(5 * time.Millisecond)
	}
	fmt.Println()
	fmt.Println()
}

var (
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic     = regexp.MustCompile(`\*(.+?)\*`)
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reHeading    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reBullet     = regexp.MustCompile(`(?m)^(\s*)[-*]\s+`)
	reFence      = regexp.MustCompile("(?m)^```[a-z]*\\s*$\n?")
)

func stripMarkdown(text string) string {
	text = reFence.ReplaceAllString(text, "")
	text = reBullet.ReplaceAllString(text, "$1• ")
	text = reBold.ReplaceAllString(text, "$1")
	text = reItalic.ReplaceAllString(text, "$1")
	text = reInlineCode.ReplaceAllString(text, "$1")
	text = reHeading.ReplaceAllString(text, "")
	return text
}
