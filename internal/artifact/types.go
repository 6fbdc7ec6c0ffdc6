package artifact

import (
	"context"
	"encoding/json"
	"errors"
)

// Kind is the artifact a generation call asks for.
type Kind string

const (
	KindTestCases Kind = "test_cases"
	KindTestPlan  Kind = "test_plan"
	KindRaw       Kind = "raw"
)

// Source names where the requirement text came from.
type Source string

const (
	SourcePrompt     Source = ""
	SourceDocument   Source = "document"
	SourceConfluence Source = "confluence"
	SourceJira       Source = "jira"
)

// Meta accompanies a prompt to the generator.
type Meta struct {
	Kind   Kind
	Source Source
}

// ErrGeneration wraps every failure of a generator backend.
var ErrGeneration = errors.New("artifact generation failed")

// Result is the outcome of one generation call. Content is the parsed
// artifact (a list of test cases, a test plan object) or the reply text when
// it could not be parsed. Raw keeps the backend's original reply.
type Result struct {
	Kind    Kind
	Content any
	Raw     string
}

// MarshalJSON flattens the result to its wire shape: {"test_cases": ...},
// {"test_plan": ...} or {"raw": ...}, with "raw" alongside the artifact key
// when the backend kept its reply.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 2)
	switch r.Kind {
	case KindTestCases, KindTestPlan:
		out[string(r.Kind)] = r.Content
		if r.Raw != "" {
			out["raw"] = r.Raw
		}
	default:
		out["raw"] = r.Raw
	}
	return json.Marshal(out)
}

// Generator turns prompts into artifacts. One implementation is selected at
// start-up and shared by every request.
type Generator interface {
	// Generate runs a schema-bound prompt and shapes the reply by meta.Kind.
	Generate(ctx context.Context, prompt string, meta Meta) (*Result, error)
	// ChatCompletion answers a free-form question under a system prompt.
	ChatCompletion(ctx context.Context, systemPrompt, question string, temperature float64) (string, error)
	// Name identifies the backend in logs and run records.
	Name() string
}
