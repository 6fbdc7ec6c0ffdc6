package config

// modelPresets lists the models offered by the init wizard per provider.
// The first entry is the default.
var modelPresets = map[ProviderType][]string{
	ProviderMock:      {"mock"},
	ProviderOpenAI:    {"gpt-4o-mini", "gpt-4o", "gpt-4.1"},
	ProviderAnthropic: {"claude-haiku-4-5-20251001", "claude-sonnet-4-5-20250929"},
}

const (
	// MaxCasesLimit is the largest test case count a request may ask for.
	MaxCasesLimit = 50

	defaultMaxContextChars = 60000
	defaultMaxCases        = 8
)

// DefaultConfig returns a Config with sensible defaults. The mock provider
// keeps a fresh checkout usable without API keys.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderMock,
		Model:    "gpt-4o-mini",
		LLM: LLMConfig{
			MaxTokens: 4096,
		},
		Server: ServerConfig{
			Port:            8080,
			AllowAllOrigins: true,
		},
		Database: DatabaseConfig{
			Path: "data/autoqa.db",
		},
		Generation: GenerationConfig{
			MaxContextChars: defaultMaxContextChars,
			DefaultMaxCases: defaultMaxCases,
		},
		Atlassian: AtlassianConfig{
			AcceptanceCriteriaField: "customfield_11332",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ModelPresets returns the wizard model choices for a provider.
func ModelPresets(provider ProviderType) []string {
	if models, ok := modelPresets[provider]; ok {
		return models
	}
	return modelPresets[ProviderOpenAI]
}
