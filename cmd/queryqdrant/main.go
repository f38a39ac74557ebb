package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/searchctx/queryqdrant/internal/config"
	"github.com/searchctx/queryqdrant/internal/embedder"
	"github.com/searchctx/queryqdrant/internal/extract"
	"github.com/searchctx/queryqdrant/internal/logger"
	"github.com/searchctx/queryqdrant/internal/mcp"
	"github.com/searchctx/queryqdrant/internal/relevance"
	"github.com/searchctx/queryqdrant/internal/searcher"
	"github.com/searchctx/queryqdrant/internal/vectorstore"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("query-qdrant MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		os.Exit(0)
	}

	// Bootstrap errors go to stderr (stdout is reserved for the protocol).
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("query-qdrant MCP server starting",
		zap.String("version", version),
		zap.String("qdrant_addr", cfg.QdrantAddr),
		zap.String("collection", cfg.Collection),
		zap.String("embedding_model", cfg.EmbeddingModel),
		zap.String("source_path", cfg.SourcePath),
		zap.Float32("min_relevance_score", cfg.MinRelevanceScore))

	emb := embedder.NewOpenAIProvider(embedder.Config{
		BaseURL: cfg.LMStudioURL,
		APIKey:  cfg.LMStudioAPIKey,
		Model:   cfg.EmbeddingModel,
	})
	defer func() { _ = emb.Close() }()

	store, err := vectorstore.NewQdrant(cfg.QdrantAddr, cfg.Collection)
	if err != nil {
		zl.Fatal("Failed to initialize vector store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	pipeline := searcher.New(
		emb,
		store,
		relevance.DefaultRuleset(),
		extract.New(cfg.SourcePath, cfg.MaxExcerptChars),
		searcher.Options{
			MinScore:   cfg.MinRelevanceScore,
			Oversample: cfg.OversampleFactor,
			Timeout:    cfg.QueryTimeout,
			Logger:     zl,
		},
	)

	server := mcp.NewServer(pipeline, zl)

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		zl.Info("server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		zl.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			zl.Fatal("server error", zap.Error(err))
		}
	}

	zl.Info("server stopped")
}
