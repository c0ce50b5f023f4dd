package port

import "webrag/internal/domain"

// Retriever owns the current chunk collection and its term-vector index.
type Retriever interface {
	// IndexSource replaces the current collection with the chunks of content.
	// It returns the number of chunks indexed.
	IndexSource(content string) (int, error)

	// Query returns up to topK chunks ranked by similarity, most relevant first.
	Query(question string, topK int) ([]domain.ScoredChunk, error)

	// Ready reports whether an index has been built.
	Ready() bool

	// Lead returns up to n chunks in origin order.
	Lead(n int) []domain.Chunk

	Stats() domain.IndexStats
}
