package artifact

import (
	"context"
	"fmt"
	"strings"
)

// Mock is a deterministic generator that never touches the network.
// It returns fixed, schema-valid artifacts for offline use and tests.
type Mock struct{}

// NewMock returns the mock generator.
func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string { return "mock" }

// mockTestCases follows the test case schema.
func mockTestCases() []map[string]any {
	return []map[string]any{
		{
			"id":                   "TC-001",
			"title":                "Verify valid login with correct username and password",
			"priority":             "P0",
			"type":                 "Functional",
			"preconditions":        "User is registered and active",
			"steps":                []string{"Given the user is on the login page", "When they submit a valid username and password", "Then they land on the dashboard"},
			"expected_result":      "User is signed in",
			"tags":                 []string{"login", "smoke"},
			"automation_candidate": "Yes",
		},
		{
			"id":                   "TC-002",
			"title":                "Verify error message for incorrect password",
			"priority":             "P1",
			"type":                 "Negative",
			"preconditions":        "User is registered and active",
			"steps":                []string{"Given the user is on the login page", "When they submit a wrong password", "Then an invalid credentials message is shown"},
			"expected_result":      "Login is rejected with a clear message",
			"tags":                 []string{"login", "negative"},
			"automation_candidate": "Yes",
		},
		{
			"id":                   "TC-003",
			"title":                "Verify account is locked after 3 failed attempts",
			"priority":             "P1",
			"type":                 "Security",
			"preconditions":        "User is registered and active",
			"steps":                []string{"Given the user has failed to log in twice", "When they submit a wrong password a third time", "Then the account is locked"},
			"expected_result":      "Account is locked and the user is told how to recover it",
			"tags":                 []string{"login", "security"},
			"automation_candidate": "Needs Analysis",
		},
	}
}

// mockTestPlan follows the test plan schema.
func mockTestPlan() map[string]any {
	return map[string]any{
		"feature":    "Login functionality",
		"objectives": []string{"Confirm users can sign in securely"},
		"scope": map[string]any{
			"in_scope":     []string{"Username and password login", "Account lockout"},
			"out_of_scope": []string{"Single sign-on"},
		},
		"approach":     "Risk-based functional and negative testing",
		"test_types":   []string{"Functional", "Regression", "Security"},
		"environments": []string{"Staging"},
		"data_and_tools": map[string]any{
			"test_data": []string{"Registered user accounts"},
			"tools":     []string{"Browser", "API client"},
		},
		"roles_and_responsibilities": []string{"QA engineer executes tests", "QA lead signs off"},
		"risks_and_mitigations": []map[string]any{
			{"risk": "Weak passwords", "mitigation": "Enforce password policy tests"},
			{"risk": "Brute force attempts", "mitigation": "Verify lockout and rate limiting"},
		},
		"entry_criteria": []string{"User already registered", "Build deployed to staging"},
		"exit_criteria":  []string{"All P0 cases pass", "No open critical defects"},
	}
}

func (m *Mock) Generate(ctx context.Context, prompt string, meta Meta) (*Result, error) {
	raw := mockRaw(prompt, meta)
	switch meta.Kind {
	case KindTestCases:
		return &Result{Kind: KindTestCases, Content: mockTestCases(), Raw: raw}, nil
	case KindTestPlan:
		return &Result{Kind: KindTestPlan, Content: mockTestPlan(), Raw: raw}, nil
	default:
		return &Result{Kind: KindRaw, Raw: raw}, nil
	}
}

func mockRaw(prompt string, meta Meta) string {
	var b strings.Builder
	b.WriteString("MOCKED TEST ARTIFACTS\n=====================\n")
	fmt.Fprintf(&b, "Prompt received:\n%s\n\n", strings.TrimSpace(prompt))
	fmt.Fprintf(&b, "Meta: kind=%s source=%s\n\n", meta.Kind, meta.Source)
	b.WriteString("(This is a mocked response)")
	return b.String()
}

func (m *Mock) ChatCompletion(ctx context.Context, systemPrompt, question string, temperature float64) (string, error) {
	return fmt.Sprintf("This is a mocked answer to %q. Configure a real provider for grounded answers.", question), nil
}
