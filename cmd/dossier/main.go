package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/argus-agency/dossier/internal/api"
	"github.com/argus-agency/dossier/internal/config"
	"github.com/argus-agency/dossier/internal/embed"
	"github.com/argus-agency/dossier/internal/events"
	"github.com/argus-agency/dossier/internal/ingest"
	"github.com/argus-agency/dossier/internal/llm"
	"github.com/argus-agency/dossier/internal/pipeline"
	"github.com/argus-agency/dossier/internal/retrieval"
	"github.com/argus-agency/dossier/internal/roster"
	"github.com/argus-agency/dossier/internal/store"
	"github.com/argus-agency/dossier/internal/vecindex"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("dossier starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database and personnel roster. The roster is read once and treated
	// as immutable for the process lifetime.
	var db *store.Store
	dir := roster.Directory{}
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		dir, err = db.LoadRoster(ctx)
		if err != nil {
			slog.Error("failed to load personnel roster", "error", err)
			os.Exit(1)
		}
		slog.Info("database connected", "roster_entries", len(dir))
	} else {
		slog.Warn("DATABASE_URL not set, running without roster or record persistence")
	}

	// Generation service.
	if cfg.AnthropicAPIKey == "" {
		slog.Error("ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}
	generator := llm.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	slog.Info("generation client ready", "model", cfg.AnthropicModel)

	// Embedding gateway and vector index.
	embedder := embed.NewClient(cfg.EmbeddingURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	index := vecindex.NewClient(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection)

	// Read path.
	assembler := retrieval.NewAssembler(index)
	pipe := pipeline.New(embedder, assembler, generator, cfg.TopK, slog.Default())

	// Write path, fed by NATS events.
	var writer ingest.MessageWriter
	if db != nil {
		writer = db
	}
	ingestSvc := ingest.New(embedder, index, writer, dir, slog.Default())

	eventsClient, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventsClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	handlers := ingest.NewHandlers(ingestSvc, eventsClient)
	if err := eventsClient.Subscribe(events.SubjectChatlogStored, handlers.HandleChatlogStored); err != nil {
		slog.Error("failed to subscribe to chatlog events", "error", err)
		os.Exit(1)
	}
	if err := eventsClient.Subscribe(events.SubjectDocumentStored, handlers.HandleDocumentStored); err != nil {
		slog.Error("failed to subscribe to document events", "error", err)
		os.Exit(1)
	}

	// HTTP API.
	srv := api.NewServer(cfg.Port, pipe)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("dossier ready", "port", cfg.Port)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("dossier stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
