package prompts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBuildRequirementTextOrder(t *testing.T) {
	got := BuildRequirementText(Requirement{
		DocText:            "doc",
		AcceptanceCriteria: "ac",
		UserStory:          "story",
		FeatureDescription: "feature",
		AppContext:         "ctx",
	})

	want := "Application Context:\nctx\n\n" +
		"Feature Description:\nfeature\n\n" +
		"User Story:\nstory\n\n" +
		"Acceptance Criteria:\nac\n\n" +
		"Document Extracts:\ndoc"
	assert.Equal(t, want, got)
}

func TestBuildRequirementTextSkipsBlankSections(t *testing.T) {
	got := BuildRequirementText(Requirement{
		UserStory:  "  As a user I can log in \n",
		AppContext: "   ",
	})
	assert.Equal(t, "User Story:\nAs a user I can log in", got)
	assert.NotContains(t, got, "Application Context")
}

func TestBuildRequirementTextEmpty(t *testing.T) {
	assert.Empty(t, BuildRequirementText(Requirement{}))
	assert.Empty(t, BuildRequirementText(Requirement{UserStory: " \t\n"}))
	assert.True(t, Requirement{DocText: "  "}.IsEmpty())
	assert.False(t, Requirement{DocText: "x"}.IsEmpty())
}

func TestBuildRequirementTextTruncatesDocument(t *testing.T) {
	doc := strings.Repeat("a", MaxDocumentChars+500)
	got := BuildRequirementText(Requirement{DocText: doc})

	extract := strings.TrimPrefix(got, "Document Extracts:\n")
	assert.Len(t, extract, MaxDocumentChars)
}

func TestTestCasePrompt(t *testing.T) {
	req := BuildRequirementText(Requirement{UserStory: "As a user I can log in"})
	p := TestCasePrompt("", req, 5)

	assert.Contains(t, p, "You are a senior QA engineer.")
	assert.Contains(t, p, "User Story:\nAs a user I can log in")
	assert.Contains(t, p, "- Generate up to 5 test cases.")
	assert.Contains(t, p, "Gherkin style")
	assert.True(t, strings.HasSuffix(p, TestCaseSchema+"\n"))
}

func TestTestPlanPrompt(t *testing.T) {
	p := TestPlanPrompt("", "Feature Description:\nCheckout")

	assert.Contains(t, p, "You are a QA lead.")
	assert.Contains(t, p, "Feature Description:\nCheckout")
	assert.Contains(t, p, "entry/exit criteria")
	assert.True(t, strings.HasSuffix(p, TestPlanSchema+"\n"))
}

const goldenTestCaseSchema = "" +
	"Return JSON with this exact shape:\n" +
	"{\n" +
	"  \"test_cases\": [\n" +
	"    {\n" +
	"      \"id\": \"string\",\n" +
	"      \"title\": \"string\",\n" +
	"      \"priority\": \"P0|P1|P2\",\n" +
	"      \"type\": \"Functional|Regression|Negative|Boundary|Security|API|Performance|Usability\",\n" +
	"      \"preconditions\": \"string\",\n" +
	"      \"steps\": [\n" +
	"        \"Given ...\",\n" +
	"        \"When ...\",\n" +
	"        \"Then ...\"\n" +
	"      ],\n" +
	"      \"expected_result\": \"string\",\n" +
	"      \"tags\": [\"string\"],\n" +
	"      \"automation_candidate\": \"Yes|No|Needs Analysis\"\n" +
	"    }\n" +
	"  ]\n" +
	"}\n"

const goldenTestPlanSchema = "" +
	"Return JSON with this exact shape:\n" +
	"{\n" +
	"  \"feature\":\"string\",\n" +
	"  \"objectives\":[\"string\"],\n" +
	"  \"scope\":{\"in_scope\":[\"string\"], \"out_of_scope\":[\"string\"]},\n" +
	"  \"approach\":\"string\",\n" +
	"  \"test_types\":[\"Functional\",\"Regression\",\"API\",\"Security\",\"Performance\",\"Usability\"],\n" +
	"  \"environments\":[\"string\"],\n" +
	"  \"data_and_tools\":{\"test_data\":[\"string\"], \"tools\":[\"string\"]},\n" +
	"  \"roles_and_responsibilities\":[\"string\"],\n" +
	"  \"risks_and_mitigations\":[{\"risk\":\"string\",\"mitigation\":\"string\"}],\n" +
	"  \"entry_criteria\":[\"string\"],\n" +
	"  \"exit_criteria\":[\"string\"]\n" +
	"}\n"

func TestSchemasAreExact(t *testing.T) {
	assert.Equal(t, goldenTestCaseSchema, TestCaseSchema)
	assert.Equal(t, goldenTestPlanSchema, TestPlanSchema)
	assert.Contains(t, TestCaseSchema, `"automation_candidate": "Yes|No|Needs Analysis"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "", Truncate("hello", 0))

	got := Truncate("héllo wörld", 8)
	assert.Equal(t, "héllo wö", got)
	assert.True(t, utf8.ValidString(got))
}
