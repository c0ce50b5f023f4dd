package cli

import (
	"fmt"

	"go.uber.org/zap"

	"webrag/config"
	"webrag/internal/adapter/analyzer"
	"webrag/internal/adapter/cache"
	"webrag/internal/adapter/chunker"
	"webrag/internal/adapter/fetcher"
	"webrag/internal/adapter/index"
	"webrag/internal/adapter/llm"
	"webrag/internal/adapter/retriever"
	"webrag/internal/port"
	"webrag/internal/usecase"
)

// newRetriever wires chunker, tokenizer and index builder into a retriever,
// wrapped in the query cache when one is configured.
func newRetriever(cfg *config.Config) (port.Retriever, error) {
	chk, err := chunker.NewRecursiveChunker(cfg.Chunk.Size, cfg.Chunk.Overlap)
	if err != nil {
		return nil, err
	}
	builder := index.NewBuilder(analyzer.NewTokenizer(), cfg.Index.MaxFeatures)
	r := retriever.NewTFIDFRetriever(chk, builder)

	if cfg.Retrieve.CacheSize == 0 {
		return r, nil
	}
	return cache.NewCachedRetriever(r, cache.NewQueryCache(cfg.Retrieve.CacheSize, cfg.Retrieve.CacheTTL())), nil
}

func newFetcher(cfg *config.Config) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.Options{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout(),
		MaxBytes:  cfg.Fetch.MaxBytes,
	})
}

func newLLM(cfg *config.Config, temperature float64) (*llm.Client, error) {
	client, err := llm.NewClient(llm.Config{
		Provider:          cfg.LLM.Provider,
		BaseURL:           cfg.LLM.BaseURL,
		APIKeyEnv:         cfg.LLM.APIKeyEnv,
		Model:             cfg.LLM.Model,
		Temperature:       temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		Timeout:           cfg.LLM.Timeout(),
		MaxRetries:        cfg.LLM.MaxRetries,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// chainFactory returns a constructor for independent chains that share one
// fetcher and one answer generator.
func chainFactory(cfg *config.Config, logger *zap.Logger) (usecase.ChainFactory, error) {
	client, err := newLLM(cfg, cfg.LLM.Temperature)
	if err != nil {
		return nil, err
	}
	// validated up front so the factory itself cannot fail
	if _, err := newRetriever(cfg); err != nil {
		return nil, err
	}

	source := newFetcher(cfg)
	generator := llm.NewPromptGenerator(client)
	opts := usecase.ChainOptions{
		TopK:             cfg.Retrieve.TopK,
		MinScore:         cfg.Retrieve.MinScoreThreshold,
		SummarizeOnIndex: cfg.Chain.SummarizeOnIndex,
	}

	return func() *usecase.Chain {
		r, _ := newRetriever(cfg)
		return usecase.NewChain(source, r, generator, opts, logger)
	}, nil
}

func newChain(cfg *config.Config, logger *zap.Logger) (*usecase.Chain, error) {
	factory, err := chainFactory(cfg, logger)
	if err != nil {
		return nil, err
	}
	return factory(), nil
}
