package assistant

import "strings"

var (
	onboardingFollowups = []string{
		"What tools should I set up first?",
		"Who should I contact for access requests?",
		"Where can I find the test environment details?",
	}
	testingFollowups = []string{
		"What are the test case naming conventions?",
		"How do I report a bug in Jira?",
		"Which test cases should be automated?",
	}
	procedureFollowups = []string{
		"What is the release testing process?",
		"Where is the QA documentation stored?",
		"Who approves test plans?",
	}
)

// SuggestFollowups picks a canned list of follow-up questions by keyword.
// Onboarding keywords win over testing ones.
func SuggestFollowups(question string) []string {
	q := strings.ToLower(question)
	var bucket []string
	switch {
	case containsAny(q, "new", "onboard", "start"):
		bucket = onboardingFollowups
	case containsAny(q, "test", "bug", "case"):
		bucket = testingFollowups
	default:
		bucket = procedureFollowups
	}
	return append([]string(nil), bucket...)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
