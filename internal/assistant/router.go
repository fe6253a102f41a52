package assistant

import (
	"strings"
	"unicode"
)

type Intent string

const (
	IntentAuthor   Intent = "author"
	IntentProject  Intent = "project"
	IntentMonth    Intent = "month"
	IntentDay      Intent = "day"
	IntentIssue    Intent = "issue"
	IntentTotal    Intent = "total"
	IntentFreeform Intent = "freeform"
)

// routes are checked in order; the first intent with a matching keyword wins.
var routes = []struct {
	intent   Intent
	keywords []string
	phrases  []string
}{
	{IntentAuthor, []string{"who", "author", "person", "people", "user", "colleague"}, nil},
	{IntentProject, []string{"project"}, nil},
	{IntentMonth, []string{"month", "monthly"}, nil},
	{IntentDay, []string{"day", "daily", "date", "trend", "week", "weekly", "timeline"}, nil},
	{IntentIssue, []string{"issue", "ticket", "task", "effort", "highest", "top"}, nil},
	{IntentTotal, []string{"total", "overall", "sum"}, []string{"how many hours"}},
}

// Route maps a free-text question to a pre-built aggregation. Questions that
// match no keyword are IntentFreeform.
func Route(question string) Intent {
	q := strings.ToLower(question)
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
		// plain plurals: "projects", "days", "tickets"
		if len(w) > 3 && strings.HasSuffix(w, "s") {
			words[strings.TrimSuffix(w, "s")] = true
		}
	}
	collapsed := strings.Join(strings.Fields(q), " ")

	for _, r := range routes {
		for _, k := range r.keywords {
			if words[k] {
				return r.intent
			}
		}
		for _, p := range r.phrases {
			if strings.Contains(collapsed, p) {
				return r.intent
			}
		}
	}
	return IntentFreeform
}
