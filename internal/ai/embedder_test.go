package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubProvider returns vectors of a fixed width and records the texts it
// was asked to embed.
type stubProvider struct {
	width int
	texts []string
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	p.texts = append(p.texts, text)
	return make([]float32, p.width), nil
}

func (p *stubProvider) EmbedBatch(ctx context.Context, model string, texts []string, taskType string) ([][]float32, error) {
	p.texts = append(p.texts, texts...)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, p.width)
	}
	return out, nil
}

// blockingProvider waits for the call context to expire.
type blockingProvider struct{}

func (blockingProvider) Name() string { return "blocking" }

func (blockingProvider) Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (p blockingProvider) EmbedBatch(ctx context.Context, model string, texts []string, taskType string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestEmbedderDimensionMismatch(t *testing.T) {
	provider := &stubProvider{width: 8}
	e := NewEmbedder(provider, EmbedderOptions{Model: "m", Dimension: 16})

	_, err := e.Embed(context.Background(), "text", TaskTypeDocument)
	require.Error(t, err)
	require.Contains(t, err.Error(), "dimension mismatch")

	_, err = e.EmbedBatch(context.Background(), []string{"a", "b"}, TaskTypeDocument)
	require.Error(t, err)
	require.Contains(t, err.Error(), "dimension mismatch")
}

func TestEmbedderDimensionMatch(t *testing.T) {
	provider := &stubProvider{width: 16}
	e := NewEmbedder(provider, EmbedderOptions{Model: "m", Dimension: 16})

	vec, err := e.Embed(context.Background(), "text", TaskTypeQuery)
	require.NoError(t, err)
	require.Len(t, vec, 16)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"}, TaskTypeDocument)
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	// Dimension zero disables the check.
	loose := NewEmbedder(provider, EmbedderOptions{Model: "m"})
	_, err = loose.Embed(context.Background(), "text", TaskTypeQuery)
	require.NoError(t, err)
}

func TestEmbedderAppliesDomainPrefix(t *testing.T) {
	provider := &stubProvider{width: 4}
	e := NewEmbedder(provider, EmbedderOptions{Model: "m", Dimension: 4})

	_, err := e.Embed(context.Background(), "3 rooms in Haifa", TaskTypeQuery)
	require.NoError(t, err)
	_, err = e.EmbedBatch(context.Background(), []string{"doc one", "doc two"}, TaskTypeDocument)
	require.NoError(t, err)

	require.Len(t, provider.texts, 3)
	for _, text := range provider.texts {
		require.True(t, strings.HasPrefix(text, domainPrefix), "text %q misses prefix", text)
	}
}

func TestEmbedderTimeout(t *testing.T) {
	e := NewEmbedder(blockingProvider{}, EmbedderOptions{Model: "m", Timeout: 20 * time.Millisecond})

	_, err := e.Embed(context.Background(), "text", TaskTypeQuery)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = e.EmbedBatch(context.Background(), []string{"a"}, TaskTypeDocument)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
