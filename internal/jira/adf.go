package jira

import (
	"encoding/json"
	"strings"
)

// Node is one node of an Atlassian Document Format tree.
type Node struct {
	Type    string `json:"type"`
	Version int    `json:"version,omitempty"`
	Text    string `json:"text,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// TextDocument wraps plain text in a doc with one paragraph holding one
// text run.
func TextDocument(text string) *Node {
	return &Node{
		Type:    "doc",
		Version: 1,
		Content: []Node{{
			Type:    "paragraph",
			Content: []Node{{Type: "text", Text: text}},
		}},
	}
}

// ExtractText flattens an ADF document to plain text: every text leaf, in
// document order, joined by single spaces. Anything that is not a document
// yields "".
func ExtractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var doc Node
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Type != "doc" {
		return ""
	}
	var texts []string
	collectText(doc.Content, &texts)
	return strings.Join(texts, " ")
}

func collectText(nodes []Node, out *[]string) {
	for _, n := range nodes {
		if n.Type == "text" && n.Text != "" {
			*out = append(*out, n.Text)
		}
		collectText(n.Content, out)
	}
}
