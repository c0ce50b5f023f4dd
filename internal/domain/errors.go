package domain

import "errors"

var (
	ErrFetchFailure      = errors.New("failed to fetch source content")
	ErrEmptyContent      = errors.New("source content is empty")
	ErrNoIndexYet        = errors.New("no source has been processed yet")
	ErrNoRelevantContent = errors.New("no relevant content found")
	ErrGenerationFailure = errors.New("answer generation failed")

	// ErrInvalidConfig is the only unrecoverable error; it is raised at
	// construction time, never during a query.
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidTopK   = errors.New("top_k must be at least 1")
	ErrEmptyCorpus   = errors.New("cannot build index from zero chunks")
	ErrRunNotFound   = errors.New("evaluation run not found")
)
