package index

import (
	"fmt"
	"math"
	"sort"

	"webrag/internal/domain"
	"webrag/internal/port"
)

// DefaultMaxFeatures caps the vocabulary to the most frequent corpus terms.
const DefaultMaxFeatures = 1000

// Posting records the normalized weight of a term in one chunk.
type Posting struct {
	Chunk  int
	Weight float64
}

// Similarity is the cosine similarity between a query and one chunk.
type Similarity struct {
	Chunk int
	Score float64
}

// TFIDF is a sparse term-weighted index over a fixed chunk collection.
// It is immutable once built and safe for concurrent readers.
type TFIDF struct {
	tokenizer port.Tokenizer
	vocab     map[string]int
	terms     []string
	idf       []float64
	postings  [][]Posting
	numChunks int
}

type Builder struct {
	tokenizer   port.Tokenizer
	maxFeatures int
}

func NewBuilder(tokenizer port.Tokenizer, maxFeatures int) *Builder {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Builder{
		tokenizer:   tokenizer,
		maxFeatures: maxFeatures,
	}
}

// Build learns the vocabulary and IDF values from chunks and computes an
// L2-normalized vector for each chunk.
func (b *Builder) Build(chunks []string) (*TFIDF, error) {
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	chunkCounts := make([]map[string]int, len(chunks))
	corpusCounts := make(map[string]int)
	docFreq := make(map[string]int)

	for i, text := range chunks {
		counts := make(map[string]int)
		for _, term := range b.tokenizer.Tokenize(text) {
			counts[term]++
		}
		for term, c := range counts {
			corpusCounts[term] += c
			docFreq[term]++
		}
		chunkCounts[i] = counts
	}

	terms := make([]string, 0, len(corpusCounts))
	for term := range corpusCounts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		ci, cj := corpusCounts[terms[i]], corpusCounts[terms[j]]
		if ci != cj {
			return ci > cj
		}
		return terms[i] < terms[j]
	})
	if len(terms) > b.maxFeatures {
		terms = terms[:b.maxFeatures]
	}
	sort.Strings(terms)

	ix := &TFIDF{
		tokenizer: b.tokenizer,
		vocab:     make(map[string]int, len(terms)),
		terms:     terms,
		idf:       make([]float64, len(terms)),
		postings:  make([][]Posting, len(terms)),
		numChunks: len(chunks),
	}

	n := float64(len(chunks))
	for id, term := range terms {
		ix.vocab[term] = id
		// Smoothed IDF
		ix.idf[id] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	for chunk, counts := range chunkCounts {
		weights := ix.weigh(counts)
		ids := make([]int, 0, len(weights))
		for id := range weights {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			ix.postings[id] = append(ix.postings[id], Posting{Chunk: chunk, Weight: weights[id]})
		}
	}

	return ix, nil
}

// weigh turns raw term counts into an L2-normalized sparse vector over the
// fixed vocabulary. Out-of-vocabulary terms are dropped.
func (ix *TFIDF) weigh(counts map[string]int) map[int]float64 {
	ids := make([]int, 0, len(counts))
	raw := make(map[int]int, len(counts))
	for term, c := range counts {
		if id, ok := ix.vocab[term]; ok {
			ids = append(ids, id)
			raw[id] = c
		}
	}
	sort.Ints(ids)

	vec := make(map[int]float64, len(ids))
	norm := 0.0
	for _, id := range ids {
		w := float64(raw[id]) * ix.idf[id]
		vec[id] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for id := range vec {
		vec[id] /= norm
	}
	return vec
}

// Score returns the cosine similarity between query and every chunk, in
// chunk order.
func (ix *TFIDF) Score(query string) []Similarity {
	if ix == nil || ix.numChunks == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, term := range ix.tokenizer.Tokenize(query) {
		counts[term]++
	}
	qvec := ix.weigh(counts)

	// Accumulate in term order so repeated queries sum identically.
	ids := make([]int, 0, len(qvec))
	for id := range qvec {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	scores := make([]float64, ix.numChunks)
	for _, id := range ids {
		qw := qvec[id]
		for _, p := range ix.postings[id] {
			scores[p.Chunk] += qw * p.Weight
		}
	}

	out := make([]Similarity, ix.numChunks)
	for i, s := range scores {
		out[i] = Similarity{Chunk: i, Score: s}
	}
	return out
}

func (ix *TFIDF) Len() int { return ix.numChunks }

func (ix *TFIDF) VocabularySize() int { return len(ix.terms) }

// Contains reports whether term is part of the learned vocabulary.
func (ix *TFIDF) Contains(term string) bool {
	_, ok := ix.vocab[term]
	return ok
}

func (ix *TFIDF) String() string {
	return fmt.Sprintf("tfidf(chunks=%d, vocabulary=%d)", ix.numChunks, len(ix.terms))
}
