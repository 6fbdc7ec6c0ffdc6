package llm

import "context"

// Provider is a chat-completion backend. Implementations must be safe for
// concurrent use since one provider serves every request of the process.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
