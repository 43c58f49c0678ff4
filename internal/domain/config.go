package domain

// EmbeddingConfig holds provider-independent embedding defaults.
type EmbeddingConfig struct {
	Model       string
	Dimensions  int // 0 keeps the provider's native size
	Concurrency int
}

// DefaultEmbeddingConfig returns the defaults used when config leaves fields empty.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		Model:       "text-embedding-3-small",
		Dimensions:  0,
		Concurrency: 4,
	}
}
