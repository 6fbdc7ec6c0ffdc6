package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/auto-qa/internal/artifact"
	"github.com/ziadkadry99/auto-qa/internal/generation"
)

var generateCmd = &cobra.Command{
	Use:       "generate <testcases|testplan>",
	Short:     "Generate test cases or a test plan and print them as JSON",
	Long:      `Runs one generation from requirement text, documents, a Confluence page or a Jira story and writes the artifact to stdout.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"testcases", "testplan"},
	RunE:      runGenerate,
}

func init() {
	generateCmd.Flags().String("story", "", "user story text")
	generateCmd.Flags().String("criteria", "", "acceptance criteria text")
	generateCmd.Flags().String("feature", "", "feature description")
	generateCmd.Flags().String("app-context", "", "application context (ignored when --team names a team)")
	generateCmd.Flags().StringSlice("doc", nil, "document to generate from (.pdf, .docx, text); repeatable")
	generateCmd.Flags().String("section-hint", "", "section of the documents to focus on")
	generateCmd.Flags().String("confluence", "", "Confluence page URL to generate from")
	generateCmd.Flags().String("jira", "", "Jira issue key to generate from")
	generateCmd.Flags().Int64("team", 0, "team id whose context to use")
	generateCmd.Flags().Int("max-cases", 0, "maximum number of test cases (default from config)")
	rootCmd.AddCommand(generateCmd)
}

func kindArg(arg string) artifact.Kind {
	if arg == "testplan" {
		return artifact.KindTestPlan
	}
	return artifact.KindTestCases
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	kind := kindArg(args[0])

	flags := cmd.Flags()
	story, _ := flags.GetString("story")
	criteria, _ := flags.GetString("criteria")
	feature, _ := flags.GetString("feature")
	appContext, _ := flags.GetString("app-context")
	docs, _ := flags.GetStringSlice("doc")
	sectionHint, _ := flags.GetString("section-hint")
	confluenceURL, _ := flags.GetString("confluence")
	issueKey, _ := flags.GetString("jira")

	var teamID *int64
	if flags.Changed("team") {
		id, _ := flags.GetInt64("team")
		teamID = &id
	}
	var maxCases *int
	if flags.Changed("max-cases") {
		n, _ := flags.GetInt("max-cases")
		maxCases = &n
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var res *artifact.Result
	switch {
	case len(docs) > 0:
		documents := make([]generation.Document, 0, len(docs))
		for _, path := range docs {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			documents = append(documents, generation.Document{Filename: filepath.Base(path), Data: data})
		}
		res, err = a.gen.FromDocuments(ctx, kind, generation.DocumentRequest{
			Documents:   documents,
			AppContext:  appContext,
			SectionHint: sectionHint,
			TeamID:      teamID,
			MaxCases:    maxCases,
		})
	case confluenceURL != "":
		res, err = a.gen.FromConfluence(ctx, kind, generation.ConfluenceRequest{
			URL:        confluenceURL,
			AppContext: appContext,
			TeamID:     teamID,
			MaxCases:   maxCases,
		})
	case issueKey != "":
		res, err = a.gen.FromJira(ctx, kind, generation.JiraRequest{
			IssueKey:   issueKey,
			AppContext: appContext,
			TeamID:     teamID,
			MaxCases:   maxCases,
		})
	default:
		res, err = a.gen.FromPrompt(ctx, kind, generation.PromptRequest{
			UserStory:          story,
			AcceptanceCriteria: criteria,
			FeatureDescription: feature,
			AppContext:         appContext,
			TeamID:             teamID,
			MaxCases:           maxCases,
		})
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
