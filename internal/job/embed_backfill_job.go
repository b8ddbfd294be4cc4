package job

import (
	"context"

	"github.com/sivanlg/homeradar/internal/service"
)

type EmbedBackfillJob struct {
	ingest *service.IngestService
	limit  int
}

func NewEmbedBackfillJob(ingest *service.IngestService, limit int) *EmbedBackfillJob {
	return &EmbedBackfillJob{ingest: ingest, limit: limit}
}

func (j *EmbedBackfillJob) Name() string {
	return "embed_backfill"
}

func (j *EmbedBackfillJob) Run(ctx context.Context) error {
	if j.ingest == nil {
		return nil
	}
	_, err := j.ingest.BackfillEmbeddings(ctx, j.limit)
	return err
}
