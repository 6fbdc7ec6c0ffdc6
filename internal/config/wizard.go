package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// DefaultPath is where init writes the configuration.
const DefaultPath = ".autoqa.yml"

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .autoqa.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to autoqa! Let's configure the QA backend.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select generation backend",
		Items: []string{"mock", "openai", "anthropic"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	// 2. Model.
	if cfg.Provider != ProviderMock {
		modelPrompt := promptui.Select{
			Label: "Select model",
			Items: ModelPresets(cfg.Provider),
		}
		_, model, err := modelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("model selection: %w", err)
		}
		cfg.Model = model
	}

	// 3. Database location.
	dbPrompt := promptui.Prompt{
		Label:   "SQLite database path",
		Default: cfg.Database.Path,
	}
	dbPath, err := dbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	cfg.Database.Path = strings.TrimSpace(dbPath)

	// 4. Atlassian site (optional).
	domainPrompt := promptui.Prompt{
		Label:   "Atlassian domain (e.g. acme.atlassian.net, blank to skip)",
		Default: "",
	}
	domain, err := domainPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("atlassian domain: %w", err)
	}
	cfg.Atlassian.Domain = strings.TrimSpace(domain)

	if cfg.Atlassian.Domain != "" {
		emailPrompt := promptui.Prompt{Label: "Atlassian account email"}
		email, err := emailPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("atlassian email: %w", err)
		}
		cfg.Atlassian.Email = strings.TrimSpace(email)
		fmt.Println("Note: set AUTOQA_ATLASSIAN__API_TOKEN in your environment rather than storing the token on disk.")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	envVar := APIKeyEnvVar(cfg.Provider)
	if envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running autoqa server.\n", envVar)
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}
