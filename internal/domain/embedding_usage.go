package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects token usage for a single request.
// The handler puts a pointer into the context, the analysis service adds tokens
// after embedding, and the handler reports the total in a response header.
type EmbeddingUsage struct {
	TotalTokens int
	Turns       int
	Used        bool // true if embedding was called, even on a cache hit with 0 tokens
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Add records consumed tokens for the given number of embedded turns.
func (u *EmbeddingUsage) Add(tokens, turns int) {
	if u != nil {
		u.TotalTokens += tokens
		u.Turns += turns
		u.Used = true
	}
}
