package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sivanlg/homeradar/internal/ai"
	"github.com/sivanlg/homeradar/internal/model"
	appErr "github.com/sivanlg/homeradar/internal/pkg/errors"
	"github.com/sivanlg/homeradar/internal/repo"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

type SearchService struct {
	embedder   ai.IEmbedder
	embeddings *repo.EmbeddingRepo
}

func NewSearchService(embedder ai.IEmbedder, embeddings *repo.EmbeddingRepo) *SearchService {
	return &SearchService{embedder: embedder, embeddings: embeddings}
}

// Search embeds the free-text query and ranks stored listings by vector
// distance under the exact filters. Without a query vector there is no
// meaningful ranking, so an embedding failure is terminal for the call.
func (s *SearchService) Search(ctx context.Context, query string, filters model.SearchFilters, limit int) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErr.ErrInvalid
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	logger := logutil.GetLogger(ctx).With(zap.String("query", query))
	vector, err := s.embedder.Embed(ctx, query, ai.TaskTypeQuery)
	if err != nil {
		logger.Error("failed to embed search query", zap.Error(err))
		return nil, appErr.ErrUnavailable
	}
	results, err := s.embeddings.SearchSimilar(ctx, vector, limit, filters)
	if err != nil {
		logger.Error("similarity search failed", zap.Error(err))
		return nil, err
	}
	logger.Debug("search done", zap.Int("results", len(results)))
	return results, nil
}
