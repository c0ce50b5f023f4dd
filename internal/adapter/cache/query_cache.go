package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"webrag/internal/domain"
	"webrag/internal/port"
)

const (
	DefaultSize = 128
	DefaultTTL  = 5 * time.Minute
)

// QueryCache memoizes ranked results per index generation. Entries for a
// replaced index are never served because the generation is part of the key.
type QueryCache struct {
	entries *expirable.LRU[string, []domain.ScoredChunk]
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{
		entries: expirable.NewLRU[string, []domain.ScoredChunk](maxSize, nil, ttl),
	}
}

func cacheKey(generation uint64, query string, topK int) string {
	data := []byte(strconv.FormatUint(generation, 10))
	data = append(data, 0)
	data = append(data, strconv.Itoa(topK)...)
	data = append(data, 0)
	data = append(data, query...)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

func (c *QueryCache) Get(generation uint64, query string, topK int) ([]domain.ScoredChunk, bool) {
	return c.entries.Get(cacheKey(generation, query, topK))
}

func (c *QueryCache) Put(generation uint64, query string, topK int, results []domain.ScoredChunk) {
	c.entries.Add(cacheKey(generation, query, topK), results)
}

func (c *QueryCache) Invalidate() {
	c.entries.Purge()
}

func (c *QueryCache) Size() int {
	return c.entries.Len()
}

// GenerationalRetriever reports which index generation answered a query.
type GenerationalRetriever interface {
	port.Retriever
	QueryAt(question string, topK int) ([]domain.ScoredChunk, uint64, error)
}

// CachedRetriever decorates a retriever with a QueryCache. Indexing a new
// source purges the cache.
type CachedRetriever struct {
	GenerationalRetriever
	cache *QueryCache
}

func NewCachedRetriever(retriever GenerationalRetriever, cache *QueryCache) *CachedRetriever {
	return &CachedRetriever{
		GenerationalRetriever: retriever,
		cache:                 cache,
	}
}

func (r *CachedRetriever) IndexSource(content string) (int, error) {
	n, err := r.GenerationalRetriever.IndexSource(content)
	if err != nil {
		return 0, err
	}
	r.cache.Invalidate()
	return n, nil
}

func (r *CachedRetriever) Query(question string, topK int) ([]domain.ScoredChunk, error) {
	if generation := r.Stats().Generation; generation != 0 {
		if results, hit := r.cache.Get(generation, question, topK); hit {
			return results, nil
		}
	}

	results, generation, err := r.QueryAt(question, topK)
	if err != nil {
		return nil, err
	}

	r.cache.Put(generation, question, topK, results)
	return results, nil
}
