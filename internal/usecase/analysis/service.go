// Package analysis computes alignment metrics from raw conversation text.
package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/synergyphi/internal/domain"
	"github.com/kailas-cloud/synergyphi/internal/domain/quotient"
	"github.com/kailas-cloud/synergyphi/internal/domain/vector"
)

// Service embeds turns and feeds the vectors to the metric functions.
type Service struct {
	embed       Embedder
	concurrency int
	logger      *zap.Logger
}

// New creates an analysis service. concurrency bounds parallel Embed calls
// when the embedder has no batch support; values below 1 mean 1.
func New(embed Embedder, concurrency int, logger *zap.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embed: embed, concurrency: concurrency, logger: logger}
}

// Coherence embeds every turn and returns the cosine similarity of each
// consecutive pair.
func (s *Service) Coherence(ctx context.Context, turns []string) ([]float64, error) {
	if len(turns) < vector.MinCoherenceInputs {
		return nil, domain.TooFewInputs("turns", vector.MinCoherenceInputs, len(turns))
	}

	embeddings, err := s.embedAll(ctx, turns)
	if err != nil {
		return nil, err
	}

	scores, err := vector.Coherence(embeddings)
	if err != nil {
		return nil, fmt.Errorf("coherence: %w", err)
	}
	return scores, nil
}

// BeingSeen embeds the turns and the baseline statement and returns the
// Expanded Being-Seen Quotient.
func (s *Service) BeingSeen(
	ctx context.Context, affirmations []float64, turns []string, baseline string,
) (float64, error) {
	if len(affirmations) == 0 {
		return 0, domain.EmptyInput("affirmations")
	}
	if len(turns) == 0 {
		return 0, domain.EmptyInput("turns")
	}

	embeddings, err := s.embedAll(ctx, append(append(make([]string, 0, len(turns)+1), turns...), baseline))
	if err != nil {
		return 0, err
	}

	n := len(turns)
	bsq, err := quotient.Expanded(affirmations, embeddings[:n], embeddings[n])
	if err != nil {
		return 0, fmt.Errorf("being-seen quotient: %w", err)
	}
	return bsq, nil
}

// embedAll vectorizes texts in input order, recording token usage on the
// request context.
func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	var raw [][]float32
	var tokens int

	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("vectorize turns: %w", err)
		}
		if len(res.Embeddings) != len(texts) {
			return nil, fmt.Errorf("vectorize turns: %w", domain.NewLengthMismatch(len(texts), len(res.Embeddings)))
		}
		raw, tokens = res.Embeddings, res.TotalTokens
	} else {
		var err error
		raw, tokens, err = s.embedParallel(ctx, texts)
		if err != nil {
			return nil, err
		}
	}

	domain.UsageFromContext(ctx).Add(tokens, len(texts))
	s.logger.Debug("Turns embedded", zap.Int("turns", len(texts)), zap.Int("tokens", tokens))

	out := make([][]float64, len(raw))
	for i, v := range raw {
		out[i] = vector.FromFloat32(v)
	}
	return out, nil
}

func (s *Service) embedParallel(ctx context.Context, texts []string) ([][]float32, int, error) {
	raw := make([][]float32, len(texts))
	tokens := make([]int, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, text := range texts {
		g.Go(func() error {
			res, err := s.embed.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("vectorize turn %d: %w", i, err)
			}
			raw[i] = res.Embedding
			tokens[i] = res.TotalTokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var total int
	for _, t := range tokens {
		total += t
	}
	return raw, total, nil
}
