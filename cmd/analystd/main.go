package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/preyalameta02/balance-sheet-analysis/internal/common"
	"github.com/preyalameta02/balance-sheet-analysis/internal/events"
	"github.com/preyalameta02/balance-sheet-analysis/internal/export"
	"github.com/preyalameta02/balance-sheet-analysis/internal/ingest"
	"github.com/preyalameta02/balance-sheet-analysis/internal/llm"
	"github.com/preyalameta02/balance-sheet-analysis/internal/llm/openai"
	"github.com/preyalameta02/balance-sheet-analysis/internal/parser"
	"github.com/preyalameta02/balance-sheet-analysis/internal/repository"
	"github.com/preyalameta02/balance-sheet-analysis/internal/server"
)

// analystd serves the balance-sheet dashboard API.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	users := repository.NewUserRepository(db, logger)
	companies := repository.NewCompanyRepository(db, logger)
	documents := repository.NewDocumentRepository(db, logger)
	records := repository.NewRecordRepository(db, logger)

	// Extraction pipeline
	vocab, err := parser.LoadVocabulary(cfg.Upload.VocabularyPath)
	if err != nil {
		logger.Error("vocabulary load failed", "error", err)
		os.Exit(1)
	}
	pipeline, err := parser.New(vocab, logger)
	if err != nil {
		logger.Error("pipeline init failed", "error", err)
		os.Exit(1)
	}

	// Document events (disabled when no brokers are configured)
	producer := events.NewProducer(cfg.Events.Brokers, cfg.Events.Topic, logger)
	defer producer.Close()

	// Chat completer
	completer := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		MaxRetries:  cfg.LLM.MaxRetries,
	}, logger)
	if !completer.Available() {
		logger.Info("no OpenAI key configured, chat uses fallback answers")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Deps{
		Users:     users,
		Companies: companies,
		Documents: documents,
		Records:   records,
		Ingest: ingest.NewService(companies, documents, records, pipeline,
			producer, cfg.Upload, logger),
		Chat:        llm.NewService(records, completer, logger),
		Export:      export.NewService(records, documents, logger),
		DB:          db,
		Auth:        cfg.Auth,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
