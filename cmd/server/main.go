package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"

	"github.com/neuraltwin/assistant-engine/pkg/ai"
	"github.com/neuraltwin/assistant-engine/pkg/assistant"
	"github.com/neuraltwin/assistant-engine/pkg/assistant/searchctx"
	"github.com/neuraltwin/assistant-engine/pkg/config"
	"github.com/neuraltwin/assistant-engine/pkg/knowledge"
	"github.com/neuraltwin/assistant-engine/pkg/logging"
	"github.com/neuraltwin/assistant-engine/pkg/search"
	"github.com/neuraltwin/assistant-engine/pkg/session"
)

func main() {
	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})

	cfg, err := config.LoadConfig(false)
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	if level, parseErr := log.ParseLevel(cfg.LogLevel); parseErr == nil {
		logger.SetLevel(level)
	}

	factory := logging.NewFactory(logger)
	factory.LoadLogLevelsFromEnv()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.Fatal("Failed to create database directory", "error", err)
	}
	store, err := session.NewStore(cfg.DBPath)
	if err != nil {
		logger.Fatal("Failed to open session store", "error", err)
	}
	defer func() { _ = store.Close() }()

	aiService := ai.NewOpenAIService(factory.ForClient("openai"), cfg.EmbeddingsAPIKey, cfg.EmbeddingsAPIURL)
	cache, err := ai.NewLRUCache(intEnv(cfg.EmbedCacheSize, 512))
	if err != nil {
		logger.Fatal("Failed to create embedding cache", "error", err)
	}
	embedder := ai.NewCachedEmbedder(
		factory.ForClient("embedder"),
		aiService,
		cache,
		msEnv(cfg.EmbedTimeoutMs, 1500*time.Millisecond),
	)
	retriever := knowledge.NewRetriever(
		factory.ForService("knowledge"),
		embedder,
		cfg.EmbeddingsModel,
		knowledge.NewSQLStore(store.DB()),
	)

	var searcher assistant.Searcher
	if cfg.NaverClientID != "" && cfg.NaverClientSecret != "" {
		var providers []search.Provider
		for _, sourceType := range []searchctx.SourceType{searchctx.SourceWeb, searchctx.SourceNews, searchctx.SourceSNS} {
			provider, provErr := search.NewNaverProvider(nil, cfg.NaverClientID, cfg.NaverClientSecret, sourceType)
			if provErr != nil {
				logger.Fatal("Failed to create search provider", "error", provErr)
			}
			providers = append(providers, provider)
		}
		searcher = search.NewAggregator(
			factory.ForClient("search"),
			msEnv(cfg.SearchTimeoutMs, 3*time.Second),
			providers...,
		)
	} else {
		logger.Warn("Naver credentials missing, external search disabled")
	}

	var nc *nats.Conn
	nc, err = nats.Connect(cfg.NatsURL)
	if err != nil {
		logger.Warn("NATS unavailable, lead events disabled", "url", cfg.NatsURL, "error", err)
		nc = nil
	} else {
		defer nc.Close()
	}

	svc := assistant.NewService(factory.ForService("assistant"), store, retriever, searcher, nc)
	router := newRouter(factory.ForHandler("http"), svc)

	logger.Info("Starting assistant engine", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		logger.Fatal("HTTP server stopped", "error", err)
	}
}

func intEnv(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func msEnv(raw string, fallback time.Duration) time.Duration {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Millisecond
}
