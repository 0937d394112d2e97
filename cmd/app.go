package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/itish2003/studysense/config"
	"github.com/itish2003/studysense/logger"
	"github.com/itish2003/studysense/services"
	"github.com/itish2003/studysense/vectorstore"
)

// app holds the services shared by every command.
type app struct {
	log        logger.Logger
	store      vectorstore.Store
	subjects   services.SubjectService
	knowledge  services.KnowledgeService
	flashcards services.FlashcardService
	generation services.GenerationService
	imports    *services.ImportService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New(cfg.Logging.Level, cfg.Logging.File, cfg.IsProduction())

	store, err := newStore(cfg.VectorStore)
	if err != nil {
		return nil, err
	}

	extractor, err := services.NewFileExtractor(cfg.Extraction.UnidocLicenseKey)
	if err != nil {
		log.Warn("APP", "PDF extraction disabled", map[string]interface{}{"error": err.Error()})
		extractor = &services.FileExtractor{}
	}

	httpClient := &http.Client{Timeout: cfg.Ollama.Timeout}
	embedder := services.NewCachedEmbedder(
		services.NewOllamaEmbedder(httpClient, cfg.Ollama.BaseURL, cfg.Ollama.EmbedModel),
		cfg.Embedding.CacheTTL,
	)

	generator, err := newGenerator(ctx, cfg, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	knowledge := services.NewKnowledgeService(store, extractor, embedder, log)
	flashcards := services.NewFlashcardService(store, embedder, log)

	log.Info("APP", "services ready", map[string]interface{}{
		"vector_store": cfg.VectorStore.Type,
		"provider":     cfg.Generation.Provider,
	})
	return &app{
		log:        log,
		store:      store,
		subjects:   services.NewSubjectService(store, flashcards, log),
		knowledge:  knowledge,
		flashcards: flashcards,
		generation: services.NewGenerationService(knowledge, flashcards, generator, log),
		imports:    services.NewImportService(knowledge, cfg.Import.Includes, log),
	}, nil
}

func newStore(cfg config.VectorStoreConfig) (vectorstore.Store, error) {
	switch cfg.Type {
	case "bolt":
		return vectorstore.NewBoltStore(cfg.BoltPath)
	case "memory":
		return vectorstore.NewMemoryStore(), nil
	case "chroma":
		return vectorstore.NewChromaStore(cfg.ChromaURL)
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.Type)
	}
}

func newGenerator(ctx context.Context, cfg *config.Config, log logger.Logger) (services.TextGenerator, error) {
	if cfg.Generation.Provider == "gemini" {
		return services.NewGeminiGenerator(ctx, cfg.Generation.GeminiAPIKey, cfg.Generation.GeminiModel, log)
	}
	return services.NewOllamaGenerator(cfg.Ollama, log), nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("APP", "failed to close vector store", map[string]interface{}{"error": err.Error()})
	}
	_ = a.log.Sync()
}
