package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sivanlg/homeradar/internal/ai"
	"github.com/sivanlg/homeradar/internal/filestore"
	"github.com/sivanlg/homeradar/internal/model"
	"github.com/sivanlg/homeradar/internal/normalize"
	"github.com/sivanlg/homeradar/internal/repo"
	"github.com/sivanlg/homeradar/internal/pkg/timeutil"
)

type IngestService struct {
	ads          *repo.AdRepo
	embeddings   *repo.EmbeddingRepo
	embedder     ai.IEmbedder
	archive      filestore.Store
	embedWorkers int
}

func NewIngestService(ads *repo.AdRepo, embeddings *repo.EmbeddingRepo, embedder ai.IEmbedder, archive filestore.Store, embedWorkers int) *IngestService {
	if embedWorkers <= 0 {
		embedWorkers = 1
	}
	return &IngestService{
		ads:          ads,
		embeddings:   embeddings,
		embedder:     embedder,
		archive:      archive,
		embedWorkers: embedWorkers,
	}
}

type RecordError struct {
	AdID    string `json:"ad_id"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type IngestResult struct {
	Saved    int           `json:"saved"`
	Embedded int           `json:"embedded"`
	Skipped  int           `json:"skipped"`
	Errors   []RecordError `json:"errors"`
}

// pendingEmbed is one ad whose semantic document changed (or was never
// embedded) during the current batch.
type pendingEmbed struct {
	adID     string
	document string
	hash     string
	price    int64
	rooms    float64
	city     string
}

// IngestBatch runs the full pipeline over one batch of raw records.
// Persistence is sequential per record, each ad+snapshot pair in its own
// transaction. Embedding calls, the dominant external cost, run on a
// bounded worker pool afterwards. A failure at any stage of one record
// is logged and counted, never fatal to the rest of the batch, and never
// undoes an already persisted ad/snapshot pair.
func (s *IngestService) IngestBatch(ctx context.Context, items []normalize.Record, segmentID string, meta normalize.Context) *IngestResult {
	logger := logutil.GetLogger(ctx).With(zap.String("segment_id", segmentID), zap.Int("batch_size", len(items)))
	result := &IngestResult{}

	// One embedding write per ad id per batch; a later duplicate of the
	// same ad replaces the earlier pending entry.
	pending := make(map[string]pendingEmbed)
	order := make([]string, 0, len(items))

	for _, raw := range items {
		norm, err := normalize.Normalize(raw, meta)
		if err != nil {
			result.Skipped++
			logger.Info("record skipped", zap.Error(err))
			continue
		}
		norm.Ad.SegmentID = segmentID

		if err := s.ads.SaveWithSnapshot(ctx, &norm.Ad, &model.AdSnapshot{
			AdID:         norm.Ad.ID,
			Price:        norm.Price,
			Rooms:        norm.Rooms,
			SquareMeters: norm.SquareMeters,
			Floor:        norm.Floor,
			Attributes:   norm.Attributes,
		}); err != nil {
			result.Errors = append(result.Errors, RecordError{AdID: norm.Ad.ID, Stage: "persist", Message: err.Error()})
			logger.Error("persist failed", zap.String("ad_id", norm.Ad.ID), zap.Error(err))
			continue
		}
		result.Saved++

		hash := normalize.HashDocument(norm.Document)
		stored, ok, err := s.embeddings.GetContentHash(ctx, norm.Ad.ID)
		if err != nil {
			result.Errors = append(result.Errors, RecordError{AdID: norm.Ad.ID, Stage: "hash_check", Message: err.Error()})
			continue
		}
		if ok && stored == hash {
			// Unchanged document: reuse the stored vector, skip the call.
			continue
		}
		if _, queued := pending[norm.Ad.ID]; !queued {
			order = append(order, norm.Ad.ID)
		}
		pending[norm.Ad.ID] = pendingEmbed{
			adID:     norm.Ad.ID,
			document: norm.Document,
			hash:     hash,
			price:    norm.Price,
			rooms:    norm.Rooms,
			city:     norm.Ad.City,
		}
	}

	embedded, errs := s.embedPending(ctx, pending, order)
	result.Embedded = embedded
	result.Errors = append(result.Errors, errs...)

	logger.Info("batch ingested",
		zap.Int("saved", result.Saved),
		zap.Int("embedded", result.Embedded),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result
}

// embedPending generates and stores vectors for the changed documents.
// Calls run concurrently up to the worker limit; each ad id appears once,
// so embedding writes never race on the same row.
func (s *IngestService) embedPending(ctx context.Context, pending map[string]pendingEmbed, order []string) (int, []RecordError) {
	if len(pending) == 0 {
		return 0, nil
	}
	var mu sync.Mutex
	var errs []RecordError
	embedded := 0

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.embedWorkers)
	for _, adID := range order {
		item := pending[adID]
		group.Go(func() error {
			vector, err := s.embedder.Embed(groupCtx, item.document, ai.TaskTypeDocument)
			if err != nil {
				mu.Lock()
				errs = append(errs, RecordError{AdID: item.adID, Stage: "embed", Message: err.Error()})
				mu.Unlock()
				return nil
			}
			if err := s.embeddings.Upsert(groupCtx, &model.AdEmbedding{
				AdID:        item.adID,
				Embedding:   vector,
				ContentHash: item.hash,
				MetaPrice:   item.price,
				MetaRooms:   item.rooms,
				MetaCity:    item.city,
				Ctime:       timeutil.NowUnix(),
			}); err != nil {
				mu.Lock()
				errs = append(errs, RecordError{AdID: item.adID, Stage: "embed_save", Message: err.Error()})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			embedded++
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return embedded, errs
}

// scrapeFile is the shape of one scraper output file: the items plus
// metadata about the query that produced them.
type scrapeFile struct {
	Query struct {
		City         string `json:"city"`
		Neighborhood string `json:"neighborhood"`
		URL          string `json:"url"`
	} `json:"query"`
	Items []normalize.Record `json:"items"`
}

// IngestFile parses a scraper output file and runs the batch pipeline on
// its items. File-level problems (missing file, bad JSON) are terminal
// for the call; per-item problems follow batch semantics. On success the
// consumed file is archived when an archive store is configured.
func (s *IngestService) IngestFile(ctx context.Context, path, city, segmentID string) (*IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scrape file: %w", err)
	}
	var file scrapeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode scrape file: %w", err)
	}
	meta := normalize.Context{City: city, Neighborhood: file.Query.Neighborhood}
	if meta.City == "" {
		meta.City = file.Query.City
	}

	result := s.IngestBatch(ctx, file.Items, segmentID, meta)

	if s.archive != nil {
		key := fmt.Sprintf("%d_%s", timeutil.NowUnix(), filepath.Base(path))
		if err := s.archiveFile(ctx, path, key); err != nil {
			logutil.GetLogger(ctx).Warn("archive scrape file failed", zap.String("path", path), zap.Error(err))
		}
	}
	return result, nil
}

func (s *IngestService) archiveFile(ctx context.Context, path, key string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.archive.Save(ctx, key, file)
}
