package llm

import (
	"fmt"
	"os"
)

// Options carries the client settings shared by the concrete providers.
type Options struct {
	// APIKey overrides the provider's conventional environment variable.
	APIKey  string
	BaseURL string
	// RequestsPerMinute wraps the provider in a RateLimitedProvider when > 0.
	RequestsPerMinute int
}

// NewProvider creates a provider for the given type and model.
// Supported provider types: "openai", "anthropic".
func NewProvider(providerType, model string, opts Options) (Provider, error) {
	var p Provider

	switch providerType {
	case "openai":
		apiKey := firstNonEmpty(opts.APIKey, os.Getenv("OPENAI_API_KEY"))
		// OpenAI-compatible servers behind a base URL often run without keys.
		if apiKey == "" && opts.BaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		p = NewOpenAIProvider(apiKey, model, opts.BaseURL)

	case "anthropic":
		apiKey := firstNonEmpty(opts.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		p = NewAnthropicProvider(apiKey, model, opts.BaseURL)

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}

	if opts.RequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, opts.RequestsPerMinute)
	}
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
