package atlassian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ziadkadry99/auto-qa/internal/config"
)

// Story is a Jira issue reduced to the fields generation uses.
type Story struct {
	ID                 string `json:"id"`
	Key                string `json:"key"`
	Summary            string `json:"summary"`
	Description        string `json:"description"`
	AcceptanceCriteria string `json:"acceptance_criteria"`
}

// TestFilter narrows a test issue search.
type TestFilter struct {
	Status     string
	Assignee   string
	StartAt    int
	MaxResults int
}

// TestIssue is one Jira issue of type Test.
type TestIssue struct {
	Key         string   `json:"key"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    *string  `json:"priority"`
	Assignee    *string  `json:"assignee"`
	Labels      []string `json:"labels"`
	Created     string   `json:"created"`
	Updated     string   `json:"updated"`
}

// TestPage is one page of test issues.
type TestPage struct {
	Total      int         `json:"total"`
	StartAt    int         `json:"start_at"`
	MaxResults int         `json:"max_results"`
	Issues     []TestIssue `json:"issues"`
}

const defaultTestPageSize = 50

// Jira reads issues through the Jira Cloud v3 REST API.
type Jira struct {
	client
	site    string
	acField string
}

// NewJira creates a Jira client. JiraBaseURL wins over Domain when set.
func NewJira(cfg config.AtlassianConfig) *Jira {
	site := siteURL(cfg.JiraBaseURL)
	if site == "" {
		site = siteURL(cfg.Domain)
	}
	return &Jira{
		client:  newClient(cfg),
		site:    site,
		acField: cfg.AcceptanceCriteriaField,
	}
}

// Story fetches an issue and flattens its rich-text fields.
func (j *Jira) Story(ctx context.Context, key string) (*Story, error) {
	if j.site == "" {
		return nil, ErrNotConfigured
	}

	var issue struct {
		ID     string                     `json:"id"`
		Key    string                     `json:"key"`
		Fields map[string]json.RawMessage `json:"fields"`
	}
	endpoint := j.site + "/rest/api/3/issue/" + url.PathEscape(key)
	if err := j.getJSON(ctx, endpoint, nil, ErrIssueNotFound, &issue); err != nil {
		return nil, err
	}

	var summary string
	if raw, ok := issue.Fields["summary"]; ok {
		_ = json.Unmarshal(raw, &summary)
	}

	return &Story{
		ID:                 issue.ID,
		Key:                issue.Key,
		Summary:            summary,
		Description:        richText(issue.Fields["description"]),
		AcceptanceCriteria: richText(issue.Fields[j.acField]),
	}, nil
}

// TestsJQL builds the search query for a project's Test issues.
func TestsJQL(projectKey string, f TestFilter) string {
	jql := fmt.Sprintf(`project = "%s" AND issuetype = "Test"`, jqlEscape(projectKey))
	if f.Status != "" {
		jql += fmt.Sprintf(` AND status = "%s"`, jqlEscape(f.Status))
	}
	if f.Assignee != "" {
		jql += fmt.Sprintf(` AND assignee = "%s"`, jqlEscape(f.Assignee))
	}
	return jql
}

func jqlEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// SearchTests lists a project's Test issues, one page at a time.
func (j *Jira) SearchTests(ctx context.Context, projectKey string, f TestFilter) (*TestPage, error) {
	if j.site == "" {
		return nil, ErrNotConfigured
	}
	if f.MaxResults <= 0 {
		f.MaxResults = defaultTestPageSize
	}

	params := url.Values{}
	params.Set("jql", TestsJQL(projectKey, f))
	params.Set("startAt", strconv.Itoa(f.StartAt))
	params.Set("maxResults", strconv.Itoa(f.MaxResults))
	params.Set("fields", "summary,description,status,priority,assignee,labels,created,updated")

	var result struct {
		Total      int `json:"total"`
		StartAt    int `json:"startAt"`
		MaxResults int `json:"maxResults"`
		Issues     []struct {
			Key    string `json:"key"`
			Fields struct {
				Summary     string          `json:"summary"`
				Description json.RawMessage `json:"description"`
				Status      struct {
					Name string `json:"name"`
				} `json:"status"`
				Priority *struct {
					Name string `json:"name"`
				} `json:"priority"`
				Assignee *struct {
					DisplayName string `json:"displayName"`
				} `json:"assignee"`
				Labels  []string `json:"labels"`
				Created string   `json:"created"`
				Updated string   `json:"updated"`
			} `json:"fields"`
		} `json:"issues"`
	}
	if err := j.getJSON(ctx, j.site+"/rest/api/3/search", params, ErrIssueNotFound, &result); err != nil {
		return nil, err
	}

	page := &TestPage{
		Total:      result.Total,
		StartAt:    result.StartAt,
		MaxResults: result.MaxResults,
		Issues:     make([]TestIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		ti := TestIssue{
			Key:         issue.Key,
			Summary:     issue.Fields.Summary,
			Description: richText(issue.Fields.Description),
			Status:      issue.Fields.Status.Name,
			Labels:      issue.Fields.Labels,
			Created:     issue.Fields.Created,
			Updated:     issue.Fields.Updated,
		}
		if issue.Fields.Priority != nil {
			ti.Priority = &issue.Fields.Priority.Name
		}
		if issue.Fields.Assignee != nil {
			ti.Assignee = &issue.Fields.Assignee.DisplayName
		}
		if ti.Labels == nil {
			ti.Labels = []string{}
		}
		page.Issues = append(page.Issues, ti)
	}
	return page, nil
}
