package service

import (
	"context"
	"encoding/json"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sivanlg/homeradar/internal/ai"
	"github.com/sivanlg/homeradar/internal/model"
	"github.com/sivanlg/homeradar/internal/normalize"
	"github.com/sivanlg/homeradar/internal/pkg/timeutil"
)

// backfillChunkSize caps how many documents go to the gateway in one
// batch call, so the per-call timeout bounds a chunk, not the whole run.
const backfillChunkSize = 16

// BackfillEmbeddings embeds ads that have no vector yet, rebuilding each
// semantic document from the ad's stored raw payload. Used by the
// scheduled backfill job to catch up after embedding outages. Documents
// go to the gateway in bounded chunks; vectors from completed chunks are
// saved before the next chunk starts, so a failed chunk loses only its
// own work. The failure is returned as the job error and the remainder
// is retried on the next tick.
func (s *IngestService) BackfillEmbeddings(ctx context.Context, limit int) (int, error) {
	logger := logutil.GetLogger(ctx)
	ads, err := s.embeddings.ListAdsMissingEmbedding(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(ads) == 0 {
		return 0, nil
	}

	var items []pendingEmbed
	var documents []string
	for _, ad := range ads {
		var raw normalize.Record
		if err := json.Unmarshal(ad.RawData, &raw); err != nil {
			logger.Warn("skipping ad with unreadable raw payload", zap.String("ad_id", ad.ID), zap.Error(err))
			continue
		}
		norm, err := normalize.Normalize(raw, normalize.Context{City: ad.City, Neighborhood: ad.Neighborhood})
		if err != nil {
			logger.Warn("skipping ad that no longer normalizes", zap.String("ad_id", ad.ID), zap.Error(err))
			continue
		}
		items = append(items, pendingEmbed{
			adID:  ad.ID,
			hash:  normalize.HashDocument(norm.Document),
			price: norm.Price,
			rooms: norm.Rooms,
			city:  norm.Ad.City,
		})
		documents = append(documents, norm.Document)
	}
	if len(items) == 0 {
		return 0, nil
	}

	saved := 0
	for start := 0; start < len(items); start += backfillChunkSize {
		end := start + backfillChunkSize
		if end > len(items) {
			end = len(items)
		}
		vectors, err := s.embedder.EmbedBatch(ctx, documents[start:end], ai.TaskTypeDocument)
		if err != nil {
			return saved, err
		}
		for i, item := range items[start:end] {
			if err := s.embeddings.Upsert(ctx, &model.AdEmbedding{
				AdID:        item.adID,
				Embedding:   vectors[i],
				ContentHash: item.hash,
				MetaPrice:   item.price,
				MetaRooms:   item.rooms,
				MetaCity:    item.city,
				Ctime:       timeutil.NowUnix(),
			}); err != nil {
				logger.Error("failed to save backfilled embedding", zap.String("ad_id", item.adID), zap.Error(err))
				continue
			}
			saved++
		}
	}
	logger.Info("embedding backfill done", zap.Int("candidates", len(ads)), zap.Int("saved", saved))
	return saved, nil
}
