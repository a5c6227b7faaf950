package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"tailoring-engine/internal/adapter/events"
	httpadapter "tailoring-engine/internal/adapter/http"
	repo "tailoring-engine/internal/adapter/repository"
	"tailoring-engine/internal/config"
	"tailoring-engine/internal/infrastructure/migration"
	"tailoring-engine/internal/observability"
	"tailoring-engine/internal/platform/logger"
	"tailoring-engine/internal/usecase"
	"tailoring-engine/pkg/ai"
	infra "tailoring-engine/pkg/infrastructure"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	shutdownOTel := observability.InitOTel(ctx, lg, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: observability.TracerName,
		Environment: cfg.LogMode,
	})

	// infra setup
	pool, err := infra.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("database unavailable", "error", err)
	}
	defer pool.Close()
	if err := migration.RunMigrations(ctx, pool); err != nil {
		lg.Fatal("migrations failed", "error", err)
	}

	var publisher usecase.EventPublisher
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			lg.Warn("redis unavailable, material events disabled (non-fatal)", "error", err)
		} else {
			defer rdb.Close()
			publisher = events.NewRedisPublisher(rdb)
		}
	}

	llm, err := ai.NewCompleter(cfg.AI, lg)
	if err != nil {
		lg.Fatal("ai provider", "error", err)
	}
	aiClient := ai.NewClient(llm, cfg.AI.Language)

	cvs := repo.NewCVRepo(pool)
	letters := repo.NewCoverLetterRepo(pool)
	speeches := repo.NewSpeechRepo(pool)

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Profiles:     repo.NewProfileRepo(pool),
		Companies:    repo.NewCompanyRepo(pool),
		Generator:    aiClient,
		CVs:          cvs,
		CoverLetters: letters,
		Speeches:     speeches,
		Events:       publisher,
		Log:          lg,
		Language:     cfg.AI.Language,
	})
	loader := usecase.NewContextLoader(repo.NewJobsRepo(pool), repo.NewMatchingSummaryRepo(pool), repo.NewCompanyRepo(pool), lg)

	app := fiber.New(fiber.Config{ErrorHandler: httpadapter.ErrorHandler(lg)})

	h := httpadapter.NewHandler(httpadapter.Deps{
		Loader:    loader,
		Materials: repo.NewMaterialsRepo(pool),
		Generator: orchestrator,
		Stores:    httpadapter.Stores{CVs: cvs, CoverLetters: letters, Speeches: speeches},
		Evaluator: aiClient,
		Improver:  aiClient,
		Renderer:  infra.NewChromedpRenderer(cfg.ChromePath),
		Language:  cfg.AI.Language,
		Log:       lg,
	})
	h.Register(app)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			lg.Fatal("server failed", "error", err)
		}
	}()
	lg.Info("tailoring engine listening", "port", cfg.Port, "ai_provider", cfg.AI.Provider)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		lg.Warn("server shutdown", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdownOTel(shutdownCtx); err != nil {
		lg.Warn("otel shutdown", "error", err)
	}
}
