package ai

import (
	"context"
	"fmt"
	"time"
)

// TaskTypeDocument and TaskTypeQuery follow the gemini task-type naming;
// providers without the distinction ignore them.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// domainPrefix biases the embedding space toward the listing domain. It
// must be applied identically to indexed documents and search queries or
// similarity ranking degrades, so it lives here and nowhere else.
const domainPrefix = "Hebrew Real Estate: "

type EmbedderOptions struct {
	Model     string
	Dimension int
	Timeout   time.Duration
}

type embedder struct {
	provider  IEmbedProvider
	model     string
	dimension int
	timeout   time.Duration
}

func NewEmbedder(provider IEmbedProvider, opts EmbedderOptions) IEmbedder {
	return &embedder{
		provider:  provider,
		model:     opts.Model,
		dimension: opts.Dimension,
		timeout:   opts.Timeout,
	}
}

func (e *embedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()
	values, err := e.provider.Embed(ctx, e.model, domainPrefix+text, taskType)
	if err != nil {
		return nil, err
	}
	if err := e.checkDimension(values); err != nil {
		return nil, err
	}
	return values, nil
}

func (e *embedder) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	ctx, cancel := e.callContext(ctx)
	defer cancel()
	prefixed := make([]string, 0, len(texts))
	for _, text := range texts {
		prefixed = append(prefixed, domainPrefix+text)
	}
	results, err := e.provider.EmbedBatch(ctx, e.model, prefixed, taskType)
	if err != nil {
		return nil, err
	}
	for _, values := range results {
		if err := e.checkDimension(values); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (e *embedder) ModelName() string {
	return e.model
}

func (e *embedder) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

// A vector of the wrong width would silently corrupt the index, so a
// dimension mismatch is a hard error.
func (e *embedder) checkDimension(values []float32) error {
	if e.dimension > 0 && len(values) != e.dimension {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(values), e.dimension)
	}
	return nil
}
