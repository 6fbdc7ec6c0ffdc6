package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-qa/internal/llm"
	"github.com/ziadkadry99/auto-qa/internal/metrics"
)

const chatMaxTokens = 500

// LLMBackend generates artifacts through a chat-completion provider.
type LLMBackend struct {
	provider  llm.Provider
	model     string
	maxTokens int
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewLLMBackend wraps provider. maxTokens bounds artifact replies.
func NewLLMBackend(provider llm.Provider, model string, maxTokens int, m *metrics.Metrics, logger *zap.Logger) *LLMBackend {
	return &LLMBackend{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
		metrics:   m,
		logger:    logger.Named("llm_backend"),
	}
}

func (b *LLMBackend) Name() string { return b.provider.Name() }

func (b *LLMBackend) Generate(ctx context.Context, prompt string, meta Meta) (*Result, error) {
	temperature := 0.1
	if meta.Kind == KindTestCases {
		temperature = 0.2
	}

	req := llm.CompletionRequest{
		Model:       b.model,
		Messages:    llm.SystemAndUser("", prompt),
		MaxTokens:   b.maxTokens,
		Temperature: temperature,
		JSONMode:    meta.Kind == KindTestCases || meta.Kind == KindTestPlan,
	}

	resp, err := b.complete(ctx, "generate", req)
	if err != nil {
		return nil, err
	}

	return shapeReply(meta.Kind, resp.Content), nil
}

func (b *LLMBackend) ChatCompletion(ctx context.Context, systemPrompt, question string, temperature float64) (string, error) {
	req := llm.CompletionRequest{
		Model:       b.model,
		Messages:    llm.SystemAndUser(systemPrompt, question),
		MaxTokens:   chatMaxTokens,
		Temperature: temperature,
	}

	resp, err := b.complete(ctx, "chat", req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (b *LLMBackend) complete(ctx context.Context, operation string, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	var promptChars int
	for _, m := range req.Messages {
		promptChars += len(m.Content)
	}

	start := time.Now()
	resp, err := b.provider.Complete(ctx, req)
	b.metrics.ObserveProvider(operation, start)

	if err != nil {
		b.logger.Warn("provider call failed",
			zap.String("operation", operation),
			zap.String("provider", b.provider.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	b.logger.Debug("provider call",
		zap.String("operation", operation),
		zap.String("model", resp.Model),
		zap.Int("prompt_chars", promptChars),
		zap.Int("input_tokens", resp.InputTokens),
		zap.Int("output_tokens", resp.OutputTokens),
		zap.Float64("est_cost_usd", llm.EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

// shapeReply turns a reply into a Result. The content is the parsed JSON
// when the reply holds any, with a top-level "test_cases" key unwrapped for
// test case requests; otherwise it is the reply text itself.
func shapeReply(kind Kind, reply string) *Result {
	if kind != KindTestCases && kind != KindTestPlan {
		return &Result{Kind: KindRaw, Raw: reply}
	}

	var content any = reply
	if js, err := llm.ExtractJSON(reply); err == nil {
		var parsed any
		if err := json.Unmarshal([]byte(js), &parsed); err == nil {
			content = parsed
			if obj, ok := parsed.(map[string]any); ok && kind == KindTestCases {
				if cases, ok := obj["test_cases"]; ok {
					content = cases
				}
			}
		}
	}

	return &Result{Kind: kind, Content: content, Raw: reply}
}
