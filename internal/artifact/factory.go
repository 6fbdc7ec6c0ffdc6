package artifact

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-qa/internal/config"
	"github.com/ziadkadry99/auto-qa/internal/llm"
	"github.com/ziadkadry99/auto-qa/internal/metrics"
)

// New selects the generator named by cfg.Provider. It is called once at
// start-up; the returned generator is shared across requests.
func New(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (Generator, error) {
	if cfg.Provider == config.ProviderMock {
		logger.Info("using mock generator")
		return NewMock(), nil
	}

	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model, llm.Options{
		BaseURL:           cfg.LLM.BaseURL,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", cfg.Provider, err)
	}

	logger.Info("using llm generator",
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.Model),
	)
	return NewLLMBackend(provider, cfg.Model, cfg.LLM.MaxTokens, m, logger), nil
}
