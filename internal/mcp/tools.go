package mcp

import "github.com/mark3labs/mcp-go/mcp"

// generateTestCasesTool defines the generate_test_cases MCP tool.
var generateTestCasesTool = mcp.NewTool("generate_test_cases",
	mcp.WithDescription("Generate structured QA test cases from a user story, acceptance criteria, a feature description, a Confluence page or a Jira story."),
	mcp.WithString("user_story",
		mcp.Description("User story text"),
	),
	mcp.WithString("acceptance_criteria",
		mcp.Description("Acceptance criteria text"),
	),
	mcp.WithString("feature_description",
		mcp.Description("Short description of the feature under test"),
	),
	mcp.WithString("confluence_url",
		mcp.Description("Generate from this Confluence page instead of the text fields"),
	),
	mcp.WithString("issue_key",
		mcp.Description("Generate from this Jira story instead of the text fields"),
	),
	mcp.WithString("app_context",
		mcp.Description("Application context used when no team is given"),
	),
	mcp.WithNumber("team_id",
		mcp.Description("Team whose stored context should be used"),
	),
	mcp.WithNumber("max_cases",
		mcp.Description("Maximum number of test cases (1-50, default 8)"),
	),
)

// generateTestPlanTool defines the generate_test_plan MCP tool.
var generateTestPlanTool = mcp.NewTool("generate_test_plan",
	mcp.WithDescription("Generate a structured QA test plan from a user story, acceptance criteria, a feature description, a Confluence page or a Jira story."),
	mcp.WithString("user_story",
		mcp.Description("User story text"),
	),
	mcp.WithString("acceptance_criteria",
		mcp.Description("Acceptance criteria text"),
	),
	mcp.WithString("feature_description",
		mcp.Description("Short description of the feature under test"),
	),
	mcp.WithString("confluence_url",
		mcp.Description("Generate from this Confluence page instead of the text fields"),
	),
	mcp.WithString("issue_key",
		mcp.Description("Generate from this Jira story instead of the text fields"),
	),
	mcp.WithString("app_context",
		mcp.Description("Application context used when no team is given"),
	),
	mcp.WithNumber("team_id",
		mcp.Description("Team whose stored context should be used"),
	),
)

// askAssistantTool defines the ask_qa_assistant MCP tool.
var askAssistantTool = mcp.NewTool("ask_qa_assistant",
	mcp.WithDescription("Ask the QA assistant a question. Answers draw on the team's QA knowledge base."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question to ask"),
	),
	mcp.WithNumber("team_id",
		mcp.Description("Team the question is about"),
	),
	mcp.WithString("user_context",
		mcp.Description("Extra context to pass to the assistant"),
	),
)
