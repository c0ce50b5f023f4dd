package domain

import "time"

// Chunk is an immutable segment of a source document. Index is its position
// in chunking order and never changes once the chunk is created.
type Chunk struct {
	Index int
	Text  string
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Source describes the document currently held by the retriever.
type Source struct {
	Location   string
	Chunks     int
	Generation uint64
	IndexedAt  time.Time
}

// IndexStats summarizes a built term-vector index.
type IndexStats struct {
	Chunks     int    `json:"chunks"`
	Vocabulary int    `json:"vocabulary"`
	Generation uint64 `json:"generation"`
}

// EvalExample is one row of an evaluation dataset.
type EvalExample struct {
	URL            string `yaml:"url" json:"url"`
	Question       string `yaml:"question" json:"question"`
	AnswerCriteria string `yaml:"answer_criteria" json:"answer_criteria"`
}

type Dataset struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Examples    []EvalExample `yaml:"examples" json:"examples"`
}

// EvalResult is the scored outcome of running one example through the chain.
type EvalResult struct {
	Position int         `json:"position"`
	Example  EvalExample `json:"example"`
	Answer   string      `json:"answer"`
	Context  string      `json:"context"`
	Score    float64     `json:"score"`
	Value    string      `json:"value"`
	Comment  string      `json:"comment"`
}

type EvalRun struct {
	ID         string    `json:"id"`
	Dataset    string    `json:"dataset"`
	Prefix     string    `json:"prefix"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Examples   int       `json:"examples"`
	MeanScore  float64   `json:"mean_score"`
}
