package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/auto-qa/internal/artifact"
	"github.com/ziadkadry99/auto-qa/internal/assistant"
	"github.com/ziadkadry99/auto-qa/internal/generation"
)

func (s *Server) handleGenerateTestCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.generate(ctx, request, artifact.KindTestCases)
}

func (s *Server) handleGenerateTestPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.generate(ctx, request, artifact.KindTestPlan)
}

// generate dispatches on the source arguments: a Confluence URL wins over
// a Jira key, which wins over the text fields.
func (s *Server) generate(ctx context.Context, request mcp.CallToolRequest, kind artifact.Kind) (*mcp.CallToolResult, error) {
	appContext := request.GetString("app_context", "")
	teamID := optionalInt64(request, "team_id")

	var maxCases *int
	if kind == artifact.KindTestCases {
		if v, ok := request.GetArguments()["max_cases"]; ok && v != nil {
			n := request.GetInt("max_cases", 0)
			maxCases = &n
		}
	}

	var (
		res *artifact.Result
		err error
	)
	switch {
	case strings.TrimSpace(request.GetString("confluence_url", "")) != "":
		res, err = s.gen.FromConfluence(ctx, kind, generation.ConfluenceRequest{
			URL:        request.GetString("confluence_url", ""),
			AppContext: appContext,
			TeamID:     teamID,
			MaxCases:   maxCases,
		})
	case strings.TrimSpace(request.GetString("issue_key", "")) != "":
		res, err = s.gen.FromJira(ctx, kind, generation.JiraRequest{
			IssueKey:   request.GetString("issue_key", ""),
			AppContext: appContext,
			TeamID:     teamID,
			MaxCases:   maxCases,
		})
	default:
		res, err = s.gen.FromPrompt(ctx, kind, generation.PromptRequest{
			UserStory:          request.GetString("user_story", ""),
			AcceptanceCriteria: request.GetString("acceptance_criteria", ""),
			FeatureDescription: request.GetString("feature_description", ""),
			AppContext:         appContext,
			TeamID:             teamID,
			MaxCases:           maxCases,
		})
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}
	return jsonResult(res)
}

// handleAskAssistant forwards a question to the QA assistant.
func (s *Server) handleAskAssistant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	ans, err := s.asker.Ask(ctx, assistant.AskRequest{
		Question:    question,
		TeamID:      optionalInt64(request, "team_id"),
		UserContext: request.GetString("user_context", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assistant failed: %v", err)), nil
	}
	return jsonResult(ans)
}

func optionalInt64(request mcp.CallToolRequest, key string) *int64 {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return nil
	}
	n := int64(request.GetInt(key, 0))
	return &n
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
