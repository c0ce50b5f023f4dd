package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"webrag/internal/adapter/fetcher"
	"webrag/internal/adapter/fs"
	"webrag/internal/domain"
	"webrag/internal/usecase"
)

var (
	searchQuery string
	searchTopK  int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <path|glob>...",
	Short: "Rank chunks of local files against a query",
	Long: `Read local text, markdown and HTML files, index them as one document
and print the chunks that best match the query. No LLM is involved.

Directories are walked using the search include and exclude patterns from
the config. Globs support ** (doublestar).

Examples:
  webrag search notes/ -q "fission reactor"
  webrag search "docs/**/*.md" README.md -q "rate limit" --top-k 5 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

type searchResult struct {
	Rank  int     `json:"rank"`
	Chunk int     `json:"chunk"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := GetLogger()

	walker := fs.NewWalker(cfg.Search.Includes, cfg.Search.Excludes)
	files, err := walker.Collect(args)
	if err != nil {
		return fmt.Errorf("failed to collect files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched %s", strings.Join(args, " "))
	}

	var parts []string
	for _, f := range files {
		text, err := readSearchFile(walker, f.Path)
		if err != nil {
			logger.Sugar().Warnf("skipping %s: %v", f.Path, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	r, err := newRetriever(cfg)
	if err != nil {
		return err
	}
	n, err := r.IndexSource(strings.Join(parts, "\n\n"))
	if errors.Is(err, domain.ErrEmptyContent) {
		return fmt.Errorf("no text content in %d file(s)", len(files))
	}
	if err != nil {
		return fmt.Errorf("failed to index files: %w", err)
	}
	logger.Sugar().Debugf("indexed %d files into %d chunks", len(files), n)

	topK := cfg.Retrieve.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}

	chunks, err := usecase.NewRetrieveUseCase(r, cfg.Retrieve.MinScoreThreshold).Retrieve(searchQuery, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := make([]searchResult, len(chunks))
	for i, c := range chunks {
		results[i] = searchResult{Rank: i + 1, Chunk: c.Chunk.Index, Score: c.Score, Text: c.Chunk.Text}
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("Found %d results for: %s (%d files, %d chunks)\n\n", len(results), searchQuery, len(files), n)
	for _, res := range results {
		fmt.Printf("--- [%d] chunk %d (score: %.3f) ---\n", res.Rank, res.Chunk, res.Score)
		fmt.Println(truncate(res.Text, 500))
		fmt.Println()
	}
	return nil
}

func readSearchFile(walker *fs.Walker, path string) (string, error) {
	text, err := walker.ReadFile(path)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return fetcher.ExtractText(text)
	}
	return text, nil
}
