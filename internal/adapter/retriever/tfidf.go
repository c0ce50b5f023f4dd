package retriever

import (
	"sort"
	"sync/atomic"

	"webrag/internal/adapter/index"
	"webrag/internal/domain"
	"webrag/internal/port"
)

// DefaultTopK is the number of chunks returned when the caller does not say.
const DefaultTopK = 3

// snapshot pairs a chunk collection with the index built from it. It is
// never mutated after publication.
type snapshot struct {
	chunks     []domain.Chunk
	index      *index.TFIDF
	generation uint64
}

// TFIDFRetriever holds exactly one chunk collection at a time. IndexSource
// builds a complete replacement off to the side and publishes it with a
// single atomic store, so readers see either the old or the new pair.
type TFIDFRetriever struct {
	chunker    port.Chunker
	builder    *index.Builder
	current    atomic.Pointer[snapshot]
	generation atomic.Uint64
}

func NewTFIDFRetriever(chunker port.Chunker, builder *index.Builder) *TFIDFRetriever {
	return &TFIDFRetriever{
		chunker: chunker,
		builder: builder,
	}
}

// IndexSource chunks content, builds a fresh index and replaces the current
// one. On error the previous index stays in place.
func (r *TFIDFRetriever) IndexSource(content string) (int, error) {
	texts := r.chunker.Split(content)
	if len(texts) == 0 {
		return 0, domain.ErrEmptyContent
	}

	ix, err := r.builder.Build(texts)
	if err != nil {
		return 0, err
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Index: i, Text: text}
	}

	r.current.Store(&snapshot{
		chunks:     chunks,
		index:      ix,
		generation: r.generation.Add(1),
	})
	return len(chunks), nil
}

// Query ranks every chunk against question and returns at most topK with a
// similarity above zero. Equal scores keep origin order.
func (r *TFIDFRetriever) Query(question string, topK int) ([]domain.ScoredChunk, error) {
	results, _, err := r.QueryAt(question, topK)
	return results, err
}

// QueryAt is Query that also reports the generation of the index it read.
func (r *TFIDFRetriever) QueryAt(question string, topK int) ([]domain.ScoredChunk, uint64, error) {
	if topK < 1 {
		return nil, 0, domain.ErrInvalidTopK
	}

	snap := r.current.Load()
	if snap == nil {
		return nil, 0, domain.ErrNoIndexYet
	}

	sims := snap.index.Score(question)
	ranked := make([]domain.ScoredChunk, 0, len(sims))
	for _, s := range sims {
		if s.Score <= 0 {
			continue
		}
		ranked = append(ranked, domain.ScoredChunk{
			Chunk: snap.chunks[s.Chunk],
			Score: s.Score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Chunk.Index < ranked[j].Chunk.Index
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, snap.generation, nil
}

func (r *TFIDFRetriever) Ready() bool {
	return r.current.Load() != nil
}

// Lead returns up to n chunks from the start of the current collection.
func (r *TFIDFRetriever) Lead(n int) []domain.Chunk {
	snap := r.current.Load()
	if snap == nil || n <= 0 {
		return nil
	}
	if n > len(snap.chunks) {
		n = len(snap.chunks)
	}
	out := make([]domain.Chunk, n)
	copy(out, snap.chunks[:n])
	return out
}

func (r *TFIDFRetriever) Stats() domain.IndexStats {
	snap := r.current.Load()
	if snap == nil {
		return domain.IndexStats{}
	}
	return domain.IndexStats{
		Chunks:     len(snap.chunks),
		Vocabulary: snap.index.VocabularySize(),
		Generation: snap.generation,
	}
}
