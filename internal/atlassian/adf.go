package atlassian

import (
	"encoding/json"
	"strings"
)

// adfNode is one node of an Atlassian Document Format tree.
type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// pageText flattens a Confluence atlas_doc_format body. Paragraphs and
// headings end with a blank line; each level is trimmed.
func pageText(nodes []adfNode) string {
	var b strings.Builder
	for _, n := range nodes {
		switch {
		case n.Type == "text":
			b.WriteString(n.Text)
		case n.Content != nil:
			b.WriteString(pageText(n.Content))
		}
		if n.Type == "paragraph" || n.Type == "heading" {
			b.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// fieldText flattens a Jira rich-text field. Hard breaks become newlines.
func fieldText(nodes []adfNode) string {
	var b strings.Builder
	for _, n := range nodes {
		switch {
		case n.Type == "text":
			b.WriteString(n.Text)
		case n.Type == "hardBreak":
			b.WriteByte('\n')
		case n.Content != nil:
			b.WriteString(fieldText(n.Content))
		}
	}
	return b.String()
}

// richText converts a Jira field value to plain text. ADF documents are
// walked, plain strings pass through, null and absent values are empty.
func richText(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var doc struct {
		Content []adfNode `json:"content"`
	}
	if err := json.Unmarshal(raw, &doc); err == nil && doc.Content != nil {
		return strings.TrimSpace(fieldText(doc.Content))
	}
	return trimmed
}
