package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/auto-qa/internal/artifact"
	"github.com/ziadkadry99/auto-qa/internal/config"
	"github.com/ziadkadry99/auto-qa/internal/llm"
	"github.com/ziadkadry99/auto-qa/internal/prompts"
)

var costCmd = &cobra.Command{
	Use:       "cost <testcases|testplan>",
	Short:     "Estimate the API cost of a prompt generation",
	Long:      `Builds the generation prompt from the given text, counts its tokens and estimates the cost per model without making any calls.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"testcases", "testplan"},
	RunE:      runCost,
}

func init() {
	costCmd.Flags().String("story", "", "user story text")
	costCmd.Flags().String("criteria", "", "acceptance criteria text")
	costCmd.Flags().String("feature", "", "feature description")
	costCmd.Flags().String("app-context", "", "application context")
	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	story, _ := cmd.Flags().GetString("story")
	criteria, _ := cmd.Flags().GetString("criteria")
	feature, _ := cmd.Flags().GetString("feature")
	appContext, _ := cmd.Flags().GetString("app-context")

	req := prompts.Requirement{
		AppContext:         appContext,
		FeatureDescription: feature,
		UserStory:          story,
		AcceptanceCriteria: criteria,
	}
	if req.IsEmpty() {
		return fmt.Errorf("at least one of --story, --criteria or --feature is required")
	}
	text := prompts.Truncate(prompts.BuildRequirementText(req), cfg.Generation.MaxContextChars)

	var prompt string
	if kindArg(args[0]) == artifact.KindTestPlan {
		prompt = prompts.TestPlanPrompt(appContext, text)
	} else {
		prompt = prompts.TestCasePrompt(appContext, text, cfg.Generation.DefaultMaxCases)
	}

	inputTokens := llm.EstimateTokens(prompt)
	outputTokens := cfg.LLM.MaxTokens

	fmt.Println("Cost Estimate")
	fmt.Println("=============")
	fmt.Printf("  Prompt characters:   %d\n", len(prompt))
	fmt.Printf("  Input tokens:        ~%d\n", inputTokens)
	fmt.Printf("  Output tokens (max): %d\n", outputTokens)
	fmt.Println()

	fmt.Println("  Model Comparison:")
	fmt.Println("  ────────────────────────────────────────")
	for _, provider := range []config.ProviderType{config.ProviderOpenAI, config.ProviderAnthropic} {
		for _, model := range config.ModelPresets(provider) {
			marker := " "
			if provider == cfg.Provider && model == cfg.Model {
				marker = "*"
			}
			fmt.Printf("  %s %-28s  ~$%.4f\n", marker, model, llm.EstimateCost(model, inputTokens, outputTokens))
		}
	}
	fmt.Println()
	fmt.Println("  * = current configuration")
	fmt.Printf("  Provider: %s\n", cfg.Provider)
	fmt.Printf("  Model:    %s\n", cfg.Model)

	return nil
}
