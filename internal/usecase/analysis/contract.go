package analysis

import (
	"context"

	"github.com/kailas-cloud/synergyphi/internal/domain"
)

// Embedder vectorizes a single turn.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
