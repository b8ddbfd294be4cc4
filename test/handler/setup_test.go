package handler_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/sivanlg/homeradar/internal/ai"
	"github.com/sivanlg/homeradar/internal/config"
	"github.com/sivanlg/homeradar/internal/filestore"
	"github.com/sivanlg/homeradar/internal/handler"
	"github.com/sivanlg/homeradar/internal/middleware"
	"github.com/sivanlg/homeradar/internal/repo"
	"github.com/sivanlg/homeradar/internal/service"
	"github.com/sivanlg/homeradar/test/testutil"
)

const vectorDim = 1536

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	v := make([]float32, vectorDim)
	v[0] = 1
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, vectorDim)
		out[i][0] = 1
	}
	return out, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-model" }

var _ ai.IEmbedder = (*fakeEmbedder)(nil)

type testEnv struct {
	router     http.Handler
	ingest     *service.IngestService
	archiveDir string
}

func setupRouter(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	adRepo := repo.NewAdRepo(db)
	snapshotRepo := repo.NewSnapshotRepo(db)
	embeddingRepo := repo.NewEmbeddingRepo(db)
	segmentRepo := repo.NewSegmentRepo(db)

	archiveDir := t.TempDir()
	archive, err := filestore.New(config.ArchiveConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": archiveDir},
	})
	require.NoError(t, err)

	embedder := &fakeEmbedder{}
	ingestService := service.NewIngestService(adRepo, embeddingRepo, embedder, archive, 2)
	searchService := service.NewSearchService(embedder, embeddingRepo)
	segmentService := service.NewSegmentService(segmentRepo, nil, nil)
	adService := service.NewAdService(adRepo, snapshotRepo)

	deps := handler.RouterDeps{
		Search:   handler.NewSearchHandler(searchService),
		Segments: handler.NewSegmentHandler(segmentService),
		Ads:      handler.NewAdHandler(adService),
		Ingest:   handler.NewIngestHandler(ingestService),
		Archive:  handler.NewArchiveHandler(archive),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return &testEnv{router: engine, ingest: ingestService, archiveDir: archiveDir}, cleanup
}
