package ai

import (
	"context"
	"time"
)

// Supported provider backends.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// WithTimeout bounds ctx by timeout when timeout is positive.
// The returned cancel func must always be called.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
