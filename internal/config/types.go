package config

// ProviderType identifies the artifact generation backend.
type ProviderType string

const (
	ProviderMock      ProviderType = "mock"
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
)

// Config is the top-level autoqa configuration, corresponding to .autoqa.yml.
type Config struct {
	Provider   ProviderType     `yaml:"provider" koanf:"provider"`
	Model      string           `yaml:"model" koanf:"model"`
	LLM        LLMConfig        `yaml:"llm" koanf:"llm"`
	Server     ServerConfig     `yaml:"server" koanf:"server"`
	Database   DatabaseConfig   `yaml:"database" koanf:"database"`
	Generation GenerationConfig `yaml:"generation" koanf:"generation"`
	Atlassian  AtlassianConfig  `yaml:"atlassian" koanf:"atlassian"`
	Log        LogConfig        `yaml:"log" koanf:"log"`
}

// LLMConfig holds backend client settings.
type LLMConfig struct {
	// BaseURL points the openai provider at an OpenAI-compatible server.
	BaseURL           string `yaml:"base_url" koanf:"base_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	MaxTokens         int    `yaml:"max_tokens" koanf:"max_tokens"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// GenerationConfig holds the pipeline limits.
type GenerationConfig struct {
	MaxContextChars int `yaml:"max_context_chars" koanf:"max_context_chars"`
	DefaultMaxCases int `yaml:"default_max_cases" koanf:"default_max_cases"`
}

// AtlassianConfig holds Confluence and Jira credentials.
type AtlassianConfig struct {
	Domain                  string `yaml:"domain" koanf:"domain"`
	Email                   string `yaml:"email" koanf:"email"`
	APIToken                string `yaml:"api_token" koanf:"api_token"`
	JiraBaseURL             string `yaml:"jira_base_url" koanf:"jira_base_url"`
	AcceptanceCriteriaField string `yaml:"acceptance_criteria_field" koanf:"acceptance_criteria_field"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" koanf:"level"`
	Development bool   `yaml:"development" koanf:"development"`
}
