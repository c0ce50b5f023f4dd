package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"webrag/internal/domain"
	"webrag/internal/port"
)

const DefaultExperimentPrefix = "relevance-eval"

// ChainFactory returns a chain with no source indexed. Every example gets
// its own chain so examples cannot see each other's index.
type ChainFactory func() *Chain

// EvalOptions tune a single evaluation run.
type EvalOptions struct {
	Prefix         string
	MaxConcurrency int
	// OnProgress is called after each example with the number finished so far.
	OnProgress func(done, total int, result domain.EvalResult)
}

// Evaluator runs a dataset through fresh chains and scores every answer
// with a judge.
type Evaluator struct {
	newChain ChainFactory
	judge    port.Judge
	store    port.EvalStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewEvaluator builds an evaluator. store may be nil, in which case runs are
// not persisted.
func NewEvaluator(newChain ChainFactory, judge port.Judge, store port.EvalStore, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		newChain: newChain,
		judge:    judge,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

func (e *Evaluator) Run(ctx context.Context, ds domain.Dataset, opts EvalOptions) (domain.EvalRun, []domain.EvalResult, error) {
	if opts.Prefix == "" {
		opts.Prefix = DefaultExperimentPrefix
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}

	run := domain.EvalRun{
		ID:        uuid.NewString(),
		Dataset:   ds.Name,
		Prefix:    opts.Prefix,
		StartedAt: e.now(),
		Examples:  len(ds.Examples),
	}
	e.logger.Info("evaluation started",
		zap.String("run", run.ID),
		zap.String("dataset", ds.Name),
		zap.Int("examples", len(ds.Examples)),
		zap.Int("concurrency", opts.MaxConcurrency))

	results := make([]domain.EvalResult, len(ds.Examples))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrency)

	for i, ex := range ds.Examples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := e.evaluate(gctx, i, ex)
			e.logger.Debug("example scored",
				zap.Int("position", i),
				zap.String("url", ex.URL),
				zap.Float64("score", res.Score))

			mu.Lock()
			results[i] = res
			done++
			finished := done
			mu.Unlock()

			if opts.OnProgress != nil {
				opts.OnProgress(finished, len(ds.Examples), res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.EvalRun{}, nil, err
	}

	run.FinishedAt = e.now()
	run.MeanScore = meanScore(results)

	if e.store != nil {
		if err := e.store.SaveRun(run, results); err != nil {
			return run, results, fmt.Errorf("failed to save run: %w", err)
		}
	}

	e.logger.Info("evaluation finished",
		zap.String("run", run.ID),
		zap.Float64("mean_score", run.MeanScore),
		zap.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)))
	return run, results, nil
}

// evaluate runs one example. Failures are recorded in the result; they do
// not abort the run.
func (e *Evaluator) evaluate(ctx context.Context, position int, ex domain.EvalExample) domain.EvalResult {
	res := domain.EvalResult{Position: position, Example: ex}

	if strings.TrimSpace(ex.URL) == "" || strings.TrimSpace(ex.Question) == "" {
		res.Answer = "Error: Missing URL or question"
		return zeroScore(res, "Example is missing a URL or question")
	}

	chain := e.newChain()
	indexed := chain.ProcessSource(ctx, ex.URL)
	if !indexed.OK() {
		e.logger.Warn("example source failed", zap.String("url", ex.URL), zap.Error(indexed.Err))
		res.Answer = fmt.Sprintf("Error processing URL: %s", indexed.Text)
		return zeroScore(res, indexed.Text)
	}

	answered := chain.Query(ctx, ex.Question)
	res.Answer = answered.Text
	res.Context = answered.Context

	verdict := e.judge.Judge(ctx, port.JudgeInput{
		Question: ex.Question,
		Answer:   answered.Text,
		Context:  answered.Context,
		Criteria: ex.AnswerCriteria,
	})
	res.Score = verdict.Score
	res.Value = verdict.Value
	res.Comment = verdict.Comment
	return res
}

func zeroScore(res domain.EvalResult, comment string) domain.EvalResult {
	res.Score = 0
	res.Value = "0/10"
	res.Comment = comment
	return res
}

func meanScore(results []domain.EvalResult) float64 {
	if len(results) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range results {
		total += r.Score
	}
	return total / float64(len(results))
}
