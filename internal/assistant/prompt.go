package assistant

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/auto-qa/internal/knowledge"
	"github.com/ziadkadry99/auto-qa/internal/teams"
)

// digestChars is how much of each entry's content the system prompt quotes.
const digestChars = 200

const guidelines = `Guidelines:
- Be specific and practical. Prefer concrete steps, names and links from the knowledge above.
- If the knowledge above does not cover the question, say so plainly instead of guessing.
- Ask a clarifying question when the request is ambiguous.
- Cite the knowledge entries you relied on by title.
- When the question needs a decision or access you cannot give, suggest who to escalate to.
- Keep the answer under 300 words.`

// buildSystemPrompt assembles the assistant instructions from the team's
// descriptive fields, a digest of the retrieved knowledge and the fixed
// guidelines. team may be nil.
func buildSystemPrompt(team *teams.Team, kc knowledge.Context, userContext string) string {
	var b strings.Builder
	b.WriteString("You are a QA assistant helping testers with QA processes, tools and project knowledge.\n\n")

	if team != nil {
		b.WriteString("Project information:\n")
		fmt.Fprintf(&b, "- Team: %s\n", team.Name)
		writeField(&b, "Description", team.Description)
		writeField(&b, "Tech stack", team.TechStack)
		writeField(&b, "Key contacts", team.KeyContacts)
		b.WriteString("\n")
	}

	entries := kc.Entries()
	if len(entries) == 0 {
		b.WriteString("Relevant knowledge: none found in the knowledge base.\n\n")
	} else {
		b.WriteString("Relevant knowledge:\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "- %s: %s\n", e.Title, digest(e.Content))
		}
		b.WriteString("\n")
	}

	if uc := strings.TrimSpace(userContext); uc != "" {
		fmt.Fprintf(&b, "Additional context from the user:\n%s\n\n", uc)
	}

	b.WriteString(guidelines)
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, value)
	}
}

func digest(content string) string {
	runes := []rune(content)
	if len(runes) <= digestChars {
		return content
	}
	return string(runes[:digestChars]) + "..."
}
