package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"webrag/config"
	"webrag/internal/adapter/analyzer"
	"webrag/internal/adapter/cache"
	"webrag/internal/adapter/chunker"
	"webrag/internal/adapter/fetcher"
	"webrag/internal/adapter/index"
	"webrag/internal/adapter/retriever"
	"webrag/internal/domain"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding webrag.yaml")
	source := flag.String("source", "", "URL or local file to index")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 5, "Number of results")
	rounds := flag.Int("n", 1000, "Query repetitions for latency")
	flag.Parse()

	if *source == "" || *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -source https://example.com -q \"query\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Index build time and size")
		fmt.Println("  2. Ranked matches with similarity")
		fmt.Println("  3. Query latency with and without the query cache")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	content, err := loadSource(cfg, *source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading source: %v\n", err)
		os.Exit(1)
	}

	chk, err := chunker.NewRecursiveChunker(cfg.Chunk.Size, cfg.Chunk.Overlap)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating chunker: %v\n", err)
		os.Exit(1)
	}
	tokenizer := analyzer.NewTokenizer()
	builder := index.NewBuilder(tokenizer, cfg.Index.MaxFeatures)
	r := retriever.NewTFIDFRetriever(chk, builder)

	start := time.Now()
	n, err := r.IndexSource(content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing error: %v\n", err)
		os.Exit(1)
	}
	buildTime := time.Since(start)
	stats := r.Stats()

	fmt.Println("TF-IDF RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Source: %s (%d chars)\n", *source, len(content))
	fmt.Printf("Chunks: %d (size %d, overlap %d)\n", n, cfg.Chunk.Size, cfg.Chunk.Overlap)
	fmt.Printf("Vocabulary: %d (max %d)\n", stats.Vocabulary, cfg.Index.MaxFeatures)
	fmt.Printf("Build time: %s\n\n", buildTime)

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	// a standalone index over the same chunks, for vocabulary lookups
	ix, err := builder.Build(chk.Split(content))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Terms against %s:\n", ix)
	for _, word := range queryWords(*query) {
		switch {
		case tokenizer.IsStopword(word):
			fmt.Printf("  %-20s stop word\n", word)
		case ix.Contains(word):
			fmt.Printf("  %-20s in vocabulary\n", word)
		default:
			fmt.Printf("  %-20s not in vocabulary\n", word)
		}
	}
	fmt.Println()

	results, err := r.Query(*query, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query error: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Println("No chunk shares a term with the query.")
		os.Exit(0)
	}

	fmt.Printf("Top %d matches:\n\n", len(results))
	for i, res := range results {
		preview := strings.ReplaceAll(strings.TrimSpace(res.Chunk.Text), "\n", " ")
		if rs := []rune(preview); len(rs) > 150 {
			preview = string(rs[:150]) + "..."
		}
		fmt.Printf("%d. [%s %.3f] chunk %d\n", i+1, rating(res.Score), res.Score, res.Chunk.Index)
		fmt.Printf("   %s\n\n", preview)
	}

	raw := measure(*rounds, func() { _, _ = r.Query(*query, *topK) })
	qc := cache.NewQueryCache(cfg.Retrieve.CacheSize, cfg.Retrieve.CacheTTL())
	cached := cache.NewCachedRetriever(r, qc)
	_, _ = cached.Query(*query, *topK)
	hit := measure(*rounds, func() { _, _ = cached.Query(*query, *topK) })

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("LATENCY (%d rounds):\n", *rounds)
	fmt.Printf("  Uncached query: %s/op\n", raw)
	fmt.Printf("  Cached query:   %s/op\n", hit)
	fmt.Printf("  Cache entries:  %d\n", qc.Size())
}

// queryWords splits a query the way the tokenizer does, keeping stop words.
func queryWords(query string) []string {
	var words []string
	for _, w := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}) {
		if len([]rune(w)) >= 2 {
			words = append(words, w)
		}
	}
	return words
}

func loadSource(cfg *config.Config, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		f := fetcher.NewHTTPFetcher(fetcher.Options{
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.Fetch.Timeout(),
			MaxBytes:  cfg.Fetch.MaxBytes,
		})
		return f.Fetch(context.Background(), source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", err
	}
	if strings.HasSuffix(source, ".html") || strings.HasSuffix(source, ".htm") {
		return fetcher.ExtractText(string(data))
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", domain.ErrEmptyContent
	}
	return string(data), nil
}

func rating(score float64) string {
	switch {
	case score > 0.5:
		return "HIGH"
	case score > 0.3:
		return "GOOD"
	case score > 0.1:
		return "OK"
	}
	return "LOW"
}

func measure(rounds int, fn func()) time.Duration {
	if rounds < 1 {
		rounds = 1
	}
	start := time.Now()
	for i := 0; i < rounds; i++ {
		fn()
	}
	return time.Since(start) / time.Duration(rounds)
}
