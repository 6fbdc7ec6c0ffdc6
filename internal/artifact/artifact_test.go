package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ziadkadry99/auto-qa/internal/config"
	"github.com/ziadkadry99/auto-qa/internal/llm"
	"github.com/ziadkadry99/auto-qa/internal/metrics"
)

type fakeProvider struct {
	reply string
	err   error
	calls []llm.CompletionRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.reply, Model: "fake-model"}, nil
}

func marshal(t *testing.T, r *Result) map[string]any {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestMockShapesByKind(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	cases, err := m.Generate(ctx, "prompt", Meta{Kind: KindTestCases})
	require.NoError(t, err)
	out := marshal(t, cases)
	assert.Contains(t, out, "test_cases")
	assert.NotContains(t, out, "test_plan")
	assert.Len(t, out["test_cases"], 3)

	plan, err := m.Generate(ctx, "prompt", Meta{Kind: KindTestPlan, Source: SourceDocument})
	require.NoError(t, err)
	out = marshal(t, plan)
	assert.Contains(t, out, "test_plan")
	assert.NotContains(t, out, "test_cases")
	assert.Contains(t, out["raw"], "source=document")

	raw, err := m.Generate(ctx, "prompt", Meta{})
	require.NoError(t, err)
	out = marshal(t, raw)
	assert.Equal(t, []string{"raw"}, keys(out))
}

func TestMockTestCasesFollowSchema(t *testing.T) {
	res, err := NewMock().Generate(context.Background(), "p", Meta{Kind: KindTestCases})
	require.NoError(t, err)

	out := marshal(t, res)
	for _, tc := range out["test_cases"].([]any) {
		obj := tc.(map[string]any)
		for _, key := range []string{"id", "title", "priority", "type", "preconditions", "steps", "expected_result", "tags", "automation_candidate"} {
			assert.Contains(t, obj, key)
		}
	}
}

func TestMockIsDeterministic(t *testing.T) {
	m := NewMock()
	a, _ := m.Generate(context.Background(), "same", Meta{Kind: KindTestPlan})
	b, _ := m.Generate(context.Background(), "same", Meta{Kind: KindTestPlan})
	assert.Equal(t, marshal(t, a), marshal(t, b))

	answer, err := m.ChatCompletion(context.Background(), "sys", "How do I file a bug?", 0.3)
	require.NoError(t, err)
	assert.Contains(t, answer, "How do I file a bug?")
}

func TestLLMBackendParsesJSONReply(t *testing.T) {
	fp := &fakeProvider{reply: "```json\n{\"test_cases\":[{\"id\":\"TC-1\"}]}\n```"}
	b := NewLLMBackend(fp, "m", 0, nil, zap.NewNop())

	res, err := b.Generate(context.Background(), "prompt", Meta{Kind: KindTestCases})
	require.NoError(t, err)

	out := marshal(t, res)
	assert.Equal(t, []any{map[string]any{"id": "TC-1"}}, out["test_cases"])
	assert.Equal(t, fp.reply, out["raw"])

	require.Len(t, fp.calls, 1)
	assert.Equal(t, 0.2, fp.calls[0].Temperature)
	assert.True(t, fp.calls[0].JSONMode)
}

func TestLLMBackendKeepsUnparseableReply(t *testing.T) {
	fp := &fakeProvider{reply: "Sorry, I cannot produce a plan."}
	b := NewLLMBackend(fp, "m", 0, metrics.New(), zap.NewNop())

	res, err := b.Generate(context.Background(), "prompt", Meta{Kind: KindTestPlan})
	require.NoError(t, err)
	assert.Equal(t, KindTestPlan, res.Kind)
	assert.Equal(t, fp.reply, res.Content)
	assert.Equal(t, 0.1, fp.calls[0].Temperature)
}

func TestLLMBackendRawKind(t *testing.T) {
	fp := &fakeProvider{reply: `{"x":1}`}
	b := NewLLMBackend(fp, "m", 0, nil, zap.NewNop())

	res, err := b.Generate(context.Background(), "prompt", Meta{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"raw": `{"x":1}`}, marshal(t, res))
	assert.False(t, fp.calls[0].JSONMode)
}

func TestLLMBackendWrapsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fp := &fakeProvider{err: errors.New("quota exceeded")}
	b := NewLLMBackend(fp, "m", 0, nil, zap.New(core))

	_, err := b.Generate(context.Background(), "prompt", Meta{Kind: KindTestCases})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGeneration))
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, 1, logs.FilterMessage("provider call failed").Len())

	_, err = b.ChatCompletion(context.Background(), "sys", "q", 0.3)
	assert.True(t, errors.Is(err, ErrGeneration))
}

func TestLLMBackendChatCompletion(t *testing.T) {
	fp := &fakeProvider{reply: "Use the staging environment."}
	b := NewLLMBackend(fp, "m", 4096, nil, zap.NewNop())

	answer, err := b.ChatCompletion(context.Background(), "system prompt", "Where do I test?", 0.3)
	require.NoError(t, err)
	assert.Equal(t, "Use the staging environment.", answer)

	req := fp.calls[0]
	assert.Equal(t, chatMaxTokens, req.MaxTokens)
	assert.Equal(t, 0.3, req.Temperature)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleSystem, Content: "system prompt"},
		{Role: llm.RoleUser, Content: "Where do I test?"},
	}, req.Messages)
}

func TestNewSelectsMock(t *testing.T) {
	g, err := New(config.DefaultConfig(), nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "mock", g.Name())
}

func TestNewFailsWithoutKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg := config.DefaultConfig()
	cfg.Provider = config.ProviderAnthropic

	_, err := New(cfg, nil, zap.NewNop())
	assert.Error(t, err)
}

func keys(m map[string]any) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
