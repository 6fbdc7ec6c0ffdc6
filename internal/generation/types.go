package generation

import (
	"time"

	"github.com/ziadkadry99/auto-qa/internal/artifact"
)

// PromptRequest generates from free-text requirement fields.
type PromptRequest struct {
	UserStory          string `json:"user_story"`
	AcceptanceCriteria string `json:"acceptance_criteria"`
	FeatureDescription string `json:"feature_description"`
	AppContext         string `json:"app_context"`
	TeamID             *int64 `json:"team_id"`
	MaxCases           *int   `json:"max_cases"`
}

// Document is one uploaded file.
type Document struct {
	Filename string
	Data     []byte
}

// DocumentRequest generates from uploaded documents.
type DocumentRequest struct {
	Documents   []Document
	AppContext  string
	SectionHint string
	TeamID      *int64
	MaxCases    *int
}

// ConfluenceRequest generates from a Confluence page.
type ConfluenceRequest struct {
	URL        string `json:"confluence_url"`
	AppContext string `json:"app_context"`
	TeamID     *int64 `json:"team_id"`
	MaxCases   *int   `json:"max_cases"`
}

// JiraRequest generates from a Jira story.
type JiraRequest struct {
	IssueKey   string `json:"issue_key"`
	AppContext string `json:"app_context"`
	TeamID     *int64 `json:"team_id"`
	MaxCases   *int   `json:"max_cases"`
}

// RunStatus is the outcome of a generation run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run records one generation request.
type Run struct {
	ID           string        `json:"id"`
	Kind         artifact.Kind `json:"kind"`
	Source       string        `json:"source"`
	TeamID       *int64        `json:"team_id"`
	Provider     string        `json:"provider"`
	Status       RunStatus     `json:"status"`
	ErrorKind    string        `json:"error_kind,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	PromptChars  int           `json:"prompt_chars"`
	DurationMS   int64         `json:"duration_ms"`
	CreatedAt    time.Time     `json:"created_at"`
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	Kind   artifact.Kind
	Status RunStatus
	Limit  int
	Offset int
}
