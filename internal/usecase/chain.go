package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"webrag/internal/domain"
	"webrag/internal/port"
)

// State is whether the chain holds an index.
type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "uninitialized"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Kind classifies the outcome of one chain call.
type Kind int

const (
	KindIndexed Kind = iota
	KindSummary
	KindAnswer
	KindFetchFailure
	KindEmptyContent
	KindNoIndexYet
	KindNoRelevantContent
	KindGenerationFailure
)

var kindNames = map[Kind]string{
	KindIndexed:           "indexed",
	KindSummary:           "summary",
	KindAnswer:            "answer",
	KindFetchFailure:      "fetch_failure",
	KindEmptyContent:      "empty_content",
	KindNoIndexYet:        "no_index_yet",
	KindNoRelevantContent: "no_relevant_content",
	KindGenerationFailure: "generation_failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Result is what the chain hands back for every input. Text is always
// displayable. Err is nil on success and otherwise wraps the domain error
// matching Kind.
type Result struct {
	Kind    Kind
	Text    string
	Context string
	Err     error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Err == nil }

const (
	summaryQuery    = "Summarize this content"
	summaryQuestion = "Summarize"
)

type ChainOptions struct {
	TopK             int
	MinScore         float64 // drop retrieved chunks scoring below this (0 = disabled)
	SummarizeOnIndex bool
}

// Chain routes each input either to source indexing or to question
// answering against the current source.
type Chain struct {
	source    port.ContentSource
	retriever port.Retriever
	retrieve  *RetrieveUseCase
	generator port.AnswerGenerator
	opts      ChainOptions
	logger    *zap.Logger

	mu      sync.RWMutex
	current *domain.Source
}

func NewChain(source port.ContentSource, retriever port.Retriever, generator port.AnswerGenerator, opts ChainOptions, logger *zap.Logger) *Chain {
	if opts.TopK < 1 {
		opts.TopK = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{
		source:    source,
		retriever: retriever,
		retrieve:  NewRetrieveUseCase(retriever, opts.MinScore),
		generator: generator,
		opts:      opts,
		logger:    logger,
	}
}

// IsSourceURL is the dispatch heuristic: trimmed input starting with an
// http or https scheme is a source. A question that happens to start with
// "http://" is treated as a URL.
func IsSourceURL(input string) bool {
	s := strings.TrimSpace(input)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (c *Chain) ProcessInput(ctx context.Context, input string) Result {
	if IsSourceURL(input) {
		return c.ProcessSource(ctx, strings.TrimSpace(input))
	}
	return c.Query(ctx, input)
}

// ProcessSource fetches url and replaces the current index with its
// content. On failure the previous index is left untouched.
func (c *Chain) ProcessSource(ctx context.Context, url string) Result {
	content, err := c.source.Fetch(ctx, url)
	if err == nil && content == "" {
		err = fmt.Errorf("%w: no content returned for %s", domain.ErrFetchFailure, url)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrFetchFailure) {
			err = fmt.Errorf("%w: %v", domain.ErrFetchFailure, err)
		}
		c.logger.Warn("fetch failed", zap.String("url", url), zap.Error(err))
		return Result{
			Kind: KindFetchFailure,
			Text: fmt.Sprintf("Failed to fetch URL content: %v", err),
			Err:  err,
		}
	}

	// held across the swap so Status never pairs one source with another's index
	c.mu.Lock()
	n, err := c.retriever.IndexSource(content)
	if err != nil {
		c.mu.Unlock()
		if !errors.Is(err, domain.ErrEmptyContent) {
			err = fmt.Errorf("%w: %v", domain.ErrEmptyContent, err)
		}
		c.logger.Warn("source has no indexable content", zap.String("url", url), zap.Error(err))
		return Result{
			Kind: KindEmptyContent,
			Text: "No text content found at the URL.",
			Err:  err,
		}
	}

	c.current = &domain.Source{
		Location:   url,
		Chunks:     n,
		Generation: c.retriever.Stats().Generation,
		IndexedAt:  time.Now(),
	}
	c.mu.Unlock()

	c.logger.Info("source indexed", zap.String("url", url), zap.Int("chunks", n))

	if !c.opts.SummarizeOnIndex {
		return Result{
			Kind: KindIndexed,
			Text: fmt.Sprintf("Vector store initialized with %d chunks.", n),
		}
	}
	return c.summarize(ctx)
}

func (c *Chain) summarize(ctx context.Context) Result {
	chunks, err := c.retrieve.Retrieve(summaryQuery, c.opts.TopK)
	if err != nil || len(chunks) == 0 {
		// the summary query shares no terms with the page; use its opening
		for _, ch := range c.retriever.Lead(c.opts.TopK) {
			chunks = append(chunks, domain.ScoredChunk{Chunk: ch})
		}
	}

	res := c.generate(ctx, JoinContext(chunks), summaryQuestion)
	if res.Kind == KindAnswer {
		res.Kind = KindSummary
	}
	return res
}

// Query answers question from the current source. It never calls the
// generator without context.
func (c *Chain) Query(ctx context.Context, question string) Result {
	chunks, err := c.retrieve.Retrieve(question, c.opts.TopK)
	switch {
	case errors.Is(err, domain.ErrNoIndexYet):
		return Result{
			Kind: KindNoIndexYet,
			Text: "No source has been processed yet. Send a URL first.",
			Err:  err,
		}
	case err != nil:
		// only a misconfigured top_k gets here, which NewChain rules out
		return Result{Kind: KindNoRelevantContent, Text: err.Error(), Err: fmt.Errorf("%w: %v", domain.ErrNoRelevantContent, err)}
	case len(chunks) == 0:
		c.logger.Debug("no relevant content", zap.String("question", question))
		return Result{
			Kind: KindNoRelevantContent,
			Text: "No relevant content found",
			Err:  domain.ErrNoRelevantContent,
		}
	}

	return c.generate(ctx, JoinContext(chunks), question)
}

func (c *Chain) generate(ctx context.Context, excerpts, question string) Result {
	answer, err := c.generator.GenerateAnswer(ctx, excerpts, question)
	if err != nil {
		c.logger.Warn("generation failed", zap.Error(err))
		return Result{
			Kind:    KindGenerationFailure,
			Text:    fmt.Sprintf("Error generating response: %v", err),
			Context: excerpts,
			Err:     fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err),
		}
	}
	return Result{
		Kind:    KindAnswer,
		Text:    answer,
		Context: excerpts,
	}
}

func (c *Chain) State() State {
	if c.retriever.Ready() {
		return StateReady
	}
	return StateUninitialized
}

func (c *Chain) Stats() domain.IndexStats {
	return c.retriever.Stats()
}

// Status is a consistent view of the current source and its index.
type Status struct {
	State  State
	Source *domain.Source
	Stats  domain.IndexStats
}

func (c *Chain) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := Status{State: c.State(), Stats: c.retriever.Stats()}
	if c.current != nil {
		src := *c.current
		st.Source = &src
	}
	return st
}
