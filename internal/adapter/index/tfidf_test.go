package index

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/adapter/analyzer"
	"webrag/internal/domain"
)

func newBuilder(maxFeatures int) *Builder {
	return NewBuilder(analyzer.NewTokenizer(), maxFeatures)
}

func TestBuild_EmptyCorpus(t *testing.T) {
	_, err := newBuilder(0).Build(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyCorpus))
}

func TestScore_SingleChunk(t *testing.T) {
	ix, err := newBuilder(0).Build([]string{"Cats are mammals. Dogs are mammals. Rocks are minerals."})
	require.NoError(t, err)

	sims := ix.Score("Are cats mammals?")
	require.Len(t, sims, 1)
	assert.Greater(t, sims[0].Score, 0.0)

	sims = ix.Score("What is the price of gold?")
	require.Len(t, sims, 1)
	assert.Equal(t, 0.0, sims[0].Score)
}

func TestScore_OrderAndRange(t *testing.T) {
	ix, err := newBuilder(0).Build([]string{
		"golang channels and goroutines",
		"python generators",
		"goroutines leak when channels block",
	})
	require.NoError(t, err)

	sims := ix.Score("goroutines channels")
	require.Len(t, sims, 3)
	for i, s := range sims {
		assert.Equal(t, i, s.Chunk)
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 1.0+1e-9)
	}
	assert.Equal(t, 0.0, sims[1].Score)
	assert.Greater(t, sims[0].Score, 0.0)
	assert.Greater(t, sims[2].Score, 0.0)
}

func TestBuild_IDFDownweightsCommonTerms(t *testing.T) {
	ix, err := newBuilder(0).Build([]string{
		"apple banana",
		"apple cherry",
		"apple durian",
	})
	require.NoError(t, err)

	weight := func(term string, chunk int) float64 {
		id := ix.vocab[term]
		for _, p := range ix.postings[id] {
			if p.Chunk == chunk {
				return p.Weight
			}
		}
		return 0
	}
	assert.Greater(t, weight("banana", 0), weight("apple", 0))
}

func TestBuild_VectorsAreNormalized(t *testing.T) {
	ix, err := newBuilder(0).Build([]string{
		"alpha beta beta gamma",
		"delta delta delta epsilon",
		"the and of",
	})
	require.NoError(t, err)

	norms := make([]float64, ix.Len())
	for _, postings := range ix.postings {
		for _, p := range postings {
			norms[p.Chunk] += p.Weight * p.Weight
		}
	}
	assert.InDelta(t, 1.0, math.Sqrt(norms[0]), 1e-9)
	assert.InDelta(t, 1.0, math.Sqrt(norms[1]), 1e-9)
	// all stop words: empty vector
	assert.Equal(t, 0.0, norms[2])
}

func TestBuild_VocabularyCap(t *testing.T) {
	ix, err := newBuilder(2).Build([]string{"alpha alpha alpha beta beta gamma"})
	require.NoError(t, err)

	assert.Equal(t, 2, ix.VocabularySize())
	assert.True(t, ix.Contains("alpha"))
	assert.True(t, ix.Contains("beta"))
	assert.False(t, ix.Contains("gamma"))

	sims := ix.Score("gamma")
	assert.Equal(t, 0.0, sims[0].Score)
}

func TestBuild_StopwordOnlyCorpus(t *testing.T) {
	ix, err := newBuilder(0).Build([]string{"the of and", "is was were"})
	require.NoError(t, err)
	assert.Equal(t, 0, ix.VocabularySize())

	for _, s := range ix.Score("the") {
		assert.Equal(t, 0.0, s.Score)
	}
}

func TestScore_Deterministic(t *testing.T) {
	chunks := []string{"red green blue", "green yellow", "blue blue purple"}
	a, err := newBuilder(0).Build(chunks)
	require.NoError(t, err)
	b, err := newBuilder(0).Build(chunks)
	require.NoError(t, err)

	assert.Equal(t, a.Score("blue green"), b.Score("blue green"))
}
