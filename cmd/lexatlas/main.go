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
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/lexatlas/lexatlas/internal/chunker"
	"github.com/lexatlas/lexatlas/internal/config"
	"github.com/lexatlas/lexatlas/internal/db"
	"github.com/lexatlas/lexatlas/internal/embed"
	"github.com/lexatlas/lexatlas/internal/embedcache"
	"github.com/lexatlas/lexatlas/internal/filestore"
	"github.com/lexatlas/lexatlas/internal/handler"
	"github.com/lexatlas/lexatlas/internal/job"
	"github.com/lexatlas/lexatlas/internal/middleware"
	"github.com/lexatlas/lexatlas/internal/normalize"
	"github.com/lexatlas/lexatlas/internal/repo"
	"github.com/lexatlas/lexatlas/internal/schedule"
	"github.com/lexatlas/lexatlas/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "lexatlas",
		Short: "lexatlas legal ingestion server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run lexatlas server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
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

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("jurisdiction", cfg.Jurisdiction),
		zap.String("archive", cfg.Archive.Type),
		zap.String("embed_provider", cfg.Embedding.Provider),
	)

	docRepo := repo.NewDocumentRepo(conn)
	chunkRepo := repo.NewChunkRepo(conn)
	jobRepo := repo.NewJobRepo(conn)
	embRepo := repo.NewEmbeddingRepo(conn)
	cacheRepo := repo.NewEmbeddingCacheRepo(conn)
	settingsRepo := repo.NewSettingsRepo(conn)

	archive, err := filestore.New(cfg.Archive)
	if err != nil {
		return fmt.Errorf("init archive: %w", err)
	}

	provider, err := embed.NewProvider(cfg.Embedding.Provider, cfg.Embedding.Data)
	if err != nil {
		return fmt.Errorf("init embedding provider: %w", err)
	}
	buildEmbedder := func(model string) embed.IEmbedder {
		e := embed.NewEmbedder(provider, model)
		e = embedcache.WrapDB(e, cacheRepo)
		return embedcache.WrapLRU(e, cfg.Embedding.CacheSize,
			time.Duration(cfg.Embedding.CacheTTLSeconds)*time.Second)
	}
	embedder := buildEmbedder(cfg.Embedding.Model)
	settingsService := service.NewSettingsService(settingsRepo,
		time.Duration(cfg.Embedding.SettingsTTLSecs)*time.Second)

	normalizer := normalize.New(cfg.Jurisdiction, cfg.SourceName)
	ck := chunker.New(chunker.Config{
		MaxChunkChars:    cfg.Chunker.MaxChunkChars,
		WindowChars:      cfg.Chunker.WindowChars,
		WindowOverlap:    cfg.Chunker.WindowOverlap,
		TailMergeChars:   cfg.Chunker.TailMergeChars,
		MinPreambleChars: cfg.Chunker.MinPreambleChars,
	})
	notifier := service.NewTableNotifier(cfg.TableNotify.URL,
		time.Duration(cfg.TableNotify.TimeoutSeconds)*time.Second)

	ingestService := service.NewIngestService(normalizer, ck, docRepo, chunkRepo, jobRepo,
		archive, notifier, cfg.Chunker, cfg.Jobs, "documents")
	chunkWorker := service.NewChunkWorker(docRepo, chunkRepo, jobRepo, ck, notifier, cfg.Chunker, cfg.Jobs)
	embedWorker := service.NewEmbedWorker(docRepo, chunkRepo, jobRepo, embRepo, embedder,
		settingsService, buildEmbedder, cfg.Jobs, cfg.Embedding.TaskType)
	exportService := service.NewExportService(docRepo, chunkRepo, cfg.Chunker.MaxChunkChars)

	deps := handler.RouterDeps{
		Ingest:    handler.NewIngestHandler(ingestService),
		Workers:   handler.NewWorkerHandler(chunkWorker, embedWorker),
		Documents: handler.NewDocumentHandler(ingestService),
		Jobs:      handler.NewJobHandler(jobRepo),
		Export:    handler.NewExportHandler(exportService),
		Settings:  handler.NewSettingsHandler(settingsService),
		APIKey:    cfg.APIKey,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
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
	if err := scheduler.AddJob(job.NewChunkQueueJob(chunkWorker), cfg.Jobs.ChunkCron); err != nil {
		return fmt.Errorf("schedule chunk queue: %w", err)
	}
	if err := scheduler.AddJob(job.NewEmbedQueueJob(embedWorker), cfg.Jobs.EmbedCron); err != nil {
		return fmt.Errorf("schedule embed queue: %w", err)
	}
	if err := scheduler.AddJob(job.NewLeaseRecoveryJob(jobRepo), cfg.Jobs.RecoverCron); err != nil {
		return fmt.Errorf("schedule lease recovery: %w", err)
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
