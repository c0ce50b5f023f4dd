package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/domain"
)

type countingRetriever struct {
	generation uint64
	queries    int
	chunks     []domain.Chunk
}

func (r *countingRetriever) IndexSource(content string) (int, error) {
	if content == "" {
		return 0, domain.ErrEmptyContent
	}
	r.generation++
	r.chunks = []domain.Chunk{{Index: 0, Text: content}}
	return 1, nil
}

func (r *countingRetriever) Query(question string, topK int) ([]domain.ScoredChunk, error) {
	res, _, err := r.QueryAt(question, topK)
	return res, err
}

func (r *countingRetriever) QueryAt(question string, topK int) ([]domain.ScoredChunk, uint64, error) {
	if r.generation == 0 {
		return nil, 0, domain.ErrNoIndexYet
	}
	r.queries++
	return []domain.ScoredChunk{{Chunk: r.chunks[0], Score: 1}}, r.generation, nil
}

func (r *countingRetriever) Ready() bool { return r.generation > 0 }

func (r *countingRetriever) Lead(n int) []domain.Chunk { return r.chunks }

func (r *countingRetriever) Stats() domain.IndexStats {
	return domain.IndexStats{Chunks: len(r.chunks), Generation: r.generation}
}

func TestCachedRetriever_HitsCacheForRepeatedQuery(t *testing.T) {
	inner := &countingRetriever{}
	r := NewCachedRetriever(inner, NewQueryCache(10, time.Minute))

	_, err := r.IndexSource("first source")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		results, err := r.Query("question", 3)
		require.NoError(t, err)
		require.Len(t, results, 1)
	}
	assert.Equal(t, 1, inner.queries)

	_, err = r.Query("question", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.queries)
}

func TestCachedRetriever_ReindexInvalidates(t *testing.T) {
	inner := &countingRetriever{}
	r := NewCachedRetriever(inner, NewQueryCache(10, time.Minute))

	_, err := r.IndexSource("first source")
	require.NoError(t, err)
	_, err = r.Query("question", 3)
	require.NoError(t, err)

	_, err = r.IndexSource("second source")
	require.NoError(t, err)
	results, err := r.Query("question", 3)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.queries)
	assert.Equal(t, "second source", results[0].Chunk.Text)
}

func TestCachedRetriever_PassesErrorsThrough(t *testing.T) {
	r := NewCachedRetriever(&countingRetriever{}, NewQueryCache(10, time.Minute))

	_, err := r.Query("question", 3)
	assert.True(t, errors.Is(err, domain.ErrNoIndexYet))

	_, err = r.IndexSource("")
	assert.True(t, errors.Is(err, domain.ErrEmptyContent))
}

func TestQueryCache_KeyIncludesGeneration(t *testing.T) {
	c := NewQueryCache(0, 0)
	c.Put(1, "q", 3, []domain.ScoredChunk{{Score: 1}})

	_, ok := c.Get(2, "q", 3)
	assert.False(t, ok)
	got, ok := c.Get(1, "q", 3)
	assert.True(t, ok)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, c.Size())

	c.Invalidate()
	assert.Equal(t, 0, c.Size())
}
