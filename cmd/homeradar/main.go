package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/sivanlg/homeradar/internal/ai"
	"github.com/sivanlg/homeradar/internal/config"
	"github.com/sivanlg/homeradar/internal/db"
	"github.com/sivanlg/homeradar/internal/embedcache"
	"github.com/sivanlg/homeradar/internal/filestore"
	"github.com/sivanlg/homeradar/internal/handler"
	"github.com/sivanlg/homeradar/internal/job"
	"github.com/sivanlg/homeradar/internal/middleware"
	"github.com/sivanlg/homeradar/internal/repo"
	"github.com/sivanlg/homeradar/internal/schedule"
	"github.com/sivanlg/homeradar/internal/scraper"
	"github.com/sivanlg/homeradar/internal/service"
)

func main() {
	var configPath string
	var ingestFile string
	var ingestCity string
	var ingestSegment string

	// Secrets like OPENAI_API_KEY come from the environment; a local
	// .env file is an optional overlay for development.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "homeradar",
		Short: "homeradar listing intelligence server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run homeradar server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := setup(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg, database)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")

	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "ingest one scraper output file and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ingestFile == "" {
				return fmt.Errorf("--file is required")
			}
			cfg, database, err := setup(configPath)
			if err != nil {
				return err
			}
			defer database.Close()
			return runIngest(cmd.Context(), cfg, database, ingestFile, ingestCity, ingestSegment)
		},
	}
	ingestCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "scraper output file to ingest")
	ingestCmd.Flags().StringVar(&ingestCity, "city", "", "city override for the batch")
	ingestCmd.Flags().StringVar(&ingestSegment, "segment", "", "segment id to attribute the batch to")

	rootCmd.AddCommand(runCmd, ingestCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func setup(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(database); err != nil {
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, database, nil
}

type services struct {
	ingest   *service.IngestService
	search   *service.SearchService
	segments *service.SegmentService
	ads      *service.AdService
	archive  filestore.Store
}

// buildServices wires the repos, the embedding stack and the services.
func buildServices(cfg *config.Config, database *sql.DB) (*services, error) {
	segmentRepo := repo.NewSegmentRepo(database)
	adRepo := repo.NewAdRepo(database)
	snapshotRepo := repo.NewSnapshotRepo(database)
	embeddingRepo := repo.NewEmbeddingRepo(database)

	providerArgs := cfg.AI.Data
	if providerArgs == nil {
		providerArgs = map[string]interface{}{}
	}
	provider, err := ai.NewProvider(cfg.AI.Provider, providerArgs)
	if err != nil {
		return nil, fmt.Errorf("init embedding provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, ai.EmbedderOptions{
		Model:     cfg.AI.Model,
		Dimension: cfg.AI.Dimension,
		Timeout:   time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})
	embedder = embedcache.WrapLRU(embedder, cfg.AI.CacheSize, time.Duration(cfg.AI.CacheTTLMinutes)*time.Minute)

	archive, err := filestore.New(cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("init archive store: %w", err)
	}

	ingestService := service.NewIngestService(adRepo, embeddingRepo, embedder, archive, cfg.Ingest.EmbedWorkers)
	searchService := service.NewSearchService(embedder, embeddingRepo)

	var resolver *scraper.LocationResolver
	if cfg.Scraper.LocationsFile != "" {
		resolver, err = scraper.NewLocationResolver(cfg.Scraper.LocationsFile)
		if err != nil {
			return nil, fmt.Errorf("load locations: %w", err)
		}
	}
	var runner *scraper.Runner
	if cfg.Scraper.Command != "" {
		runner = scraper.NewRunner(cfg.Scraper.Dir, cfg.Scraper.Command, func(ctx context.Context, outputFile, city, segmentID string) error {
			_, err := ingestService.IngestFile(ctx, outputFile, city, segmentID)
			return err
		})
	}
	segmentService := service.NewSegmentService(segmentRepo, resolver, runner)
	adService := service.NewAdService(adRepo, snapshotRepo)

	return &services{
		ingest:   ingestService,
		search:   searchService,
		segments: segmentService,
		ads:      adService,
		archive:  archive,
	}, nil
}

func runServer(cfg *config.Config, database *sql.DB) error {
	defer database.Close()
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model),
		zap.String("archive", cfg.Archive.Type),
	)

	svcs, err := buildServices(cfg, database)
	if err != nil {
		return err
	}

	deps := handler.RouterDeps{
		Search:           handler.NewSearchHandler(svcs.search),
		Segments:         handler.NewSegmentHandler(svcs.segments),
		Ads:              handler.NewAdHandler(svcs.ads),
		Ingest:           handler.NewIngestHandler(svcs.ingest),
		Archive:          handler.NewArchiveHandler(svcs.archive),
		WriteLimitWindow: time.Duration(cfg.WriteLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Jobs.EmbedBackfillCron != "" {
		backfill := job.NewEmbedBackfillJob(svcs.ingest, cfg.Jobs.EmbedBackfillLimit)
		if err := scheduler.AddJob(backfill, cfg.Jobs.EmbedBackfillCron); err != nil {
			return fmt.Errorf("schedule backfill: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

func runIngest(ctx context.Context, cfg *config.Config, database *sql.DB, file, city, segmentID string) error {
	svcs, err := buildServices(cfg, database)
	if err != nil {
		return err
	}
	result, err := svcs.ingest.IngestFile(ctx, file, city, segmentID)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("ingest finished",
		zap.Int("saved", result.Saved),
		zap.Int("embedded", result.Embedded),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	for _, recErr := range result.Errors {
		logutil.GetLogger(ctx).Warn("record error",
			zap.String("ad_id", recErr.AdID),
			zap.String("stage", recErr.Stage),
			zap.String("message", recErr.Message),
		)
	}
	return nil
}
