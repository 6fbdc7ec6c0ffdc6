// Package prompts assembles requirement text from its sources and renders
// the schema-bound instruction prompts sent to the generation backend.
package prompts

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxDocumentChars bounds the document extract embedded in a requirement
// text, independent of the overall context limit applied by callers.
const MaxDocumentChars = 50000

// Requirement holds the optional sources of a requirement text.
type Requirement struct {
	AppContext         string
	FeatureDescription string
	UserStory          string
	AcceptanceCriteria string
	DocText            string
}

// IsEmpty reports whether every source is blank.
func (r Requirement) IsEmpty() bool {
	return strings.TrimSpace(r.AppContext) == "" &&
		strings.TrimSpace(r.FeatureDescription) == "" &&
		strings.TrimSpace(r.UserStory) == "" &&
		strings.TrimSpace(r.AcceptanceCriteria) == "" &&
		strings.TrimSpace(r.DocText) == ""
}

// BuildRequirementText joins the non-blank sources under stable labels in a
// fixed order: application context, feature description, user story,
// acceptance criteria, document extracts.
func BuildRequirementText(r Requirement) string {
	sections := []struct {
		label string
		text  string
	}{
		{"Application Context", strings.TrimSpace(r.AppContext)},
		{"Feature Description", strings.TrimSpace(r.FeatureDescription)},
		{"User Story", strings.TrimSpace(r.UserStory)},
		{"Acceptance Criteria", strings.TrimSpace(r.AcceptanceCriteria)},
		{"Document Extracts", Truncate(strings.TrimSpace(r.DocText), MaxDocumentChars)},
	}

	var parts []string
	for _, s := range sections {
		if s.text == "" {
			continue
		}
		parts = append(parts, s.label+":\n"+s.text)
	}
	return strings.Join(parts, "\n\n")
}

// TestCasePrompt renders the test case instructions around requirementText.
// The application context already travels inside requirementText.
func TestCasePrompt(appContext, requirementText string, maxCases int) string {
	return fmt.Sprintf(`
You are a senior QA engineer. Use the application context and requirements 
to produce high-quality, de-duplicated test cases with good coverage.


%s

Instructions:
- Generate up to %d test cases.
- Include negative and boundary tests where applicable.
- Write steps in **Gherkin style** (Given/When/Then).
- Keep steps concise, actionable, and readable.
- Strictly follow this JSON schema:
%s
`, requirementText, maxCases, TestCaseSchema)
}

// TestPlanPrompt renders the test plan instructions around requirementText.
func TestPlanPrompt(appContext, requirementText string) string {
	return fmt.Sprintf(`
You are a QA lead. Create a pragmatic test plan for the feature below.

%s

Instructions:
- Keep it practical and sprint-sized.
- Include environments, entry/exit criteria, risks and mitigations.
- Strictly follow this JSON schema:
%s
`, requirementText, TestPlanSchema)
}

// Truncate keeps the first n characters of s. Counting runes rather than
// bytes keeps multi-byte text valid.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
