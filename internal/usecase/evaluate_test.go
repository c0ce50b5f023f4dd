package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webrag/internal/adapter/analyzer"
	"webrag/internal/adapter/chunker"
	"webrag/internal/adapter/index"
	"webrag/internal/adapter/retriever"
	"webrag/internal/domain"
	"webrag/internal/port"
)

type scriptedJudge struct {
	mu     sync.Mutex
	inputs []port.JudgeInput
}

func (j *scriptedJudge) Judge(ctx context.Context, in port.JudgeInput) port.JudgeVerdict {
	j.mu.Lock()
	j.inputs = append(j.inputs, in)
	j.mu.Unlock()
	return port.JudgeVerdict{Score: 8, Value: "8/10", Comment: "grounded"}
}

type memoryStore struct {
	runs    map[string]domain.EvalRun
	results map[string][]domain.EvalResult
}

func newMemoryStore() *memoryStore {
	return &memoryStore{runs: map[string]domain.EvalRun{}, results: map[string][]domain.EvalResult{}}
}

func (s *memoryStore) SaveRun(run domain.EvalRun, results []domain.EvalResult) error {
	s.runs[run.ID] = run
	s.results[run.ID] = results
	return nil
}

func (s *memoryStore) GetRun(id string) (domain.EvalRun, []domain.EvalResult, error) {
	run, ok := s.runs[id]
	if !ok {
		return domain.EvalRun{}, nil, domain.ErrRunNotFound
	}
	return run, s.results[id], nil
}

func (s *memoryStore) ListRuns() ([]domain.EvalRun, error) {
	var out []domain.EvalRun
	for _, r := range s.runs {
		out = append(out, r)
	}
	return out, nil
}

func (s *memoryStore) Close() error { return nil }

// safeSource is a fakeSource that may be shared by concurrent chains.
type safeSource struct {
	pages map[string]string
}

func (s *safeSource) Fetch(ctx context.Context, url string) (string, error) {
	page, ok := s.pages[url]
	if !ok {
		return "", errors.New("404 not found")
	}
	return page, nil
}

type echoGenerator struct{}

func (echoGenerator) GenerateAnswer(ctx context.Context, excerpts, question string) (string, error) {
	return "answer to " + question, nil
}

func newEvalFixture(t *testing.T) (ChainFactory, *scriptedJudge, *memoryStore) {
	t.Helper()
	src := &safeSource{pages: map[string]string{
		"https://moon.example":   "NASA plans a fission reactor on the Moon producing 40 kilowatts by 2030.",
		"https://python.example": "Python is a readable programming language with a large standard library.",
	}}
	c, err := chunker.NewRecursiveChunker(200, 0)
	require.NoError(t, err)
	builder := index.NewBuilder(analyzer.NewTokenizer(), index.DefaultMaxFeatures)
	factory := func() *Chain {
		return NewChain(src, retriever.NewTFIDFRetriever(c, builder), echoGenerator{}, ChainOptions{TopK: 3}, zap.NewNop())
	}
	return factory, &scriptedJudge{}, newMemoryStore()
}

func TestEvaluator_Run(t *testing.T) {
	factory, judge, store := newEvalFixture(t)
	ev := NewEvaluator(factory, judge, store, zap.NewNop())

	ds := domain.Dataset{
		Name: "qa",
		Examples: []domain.EvalExample{
			{URL: "https://moon.example", Question: "How much power will the reactor produce?", AnswerCriteria: "Mentions kilowatts"},
			{URL: "https://python.example", Question: "Why is Python popular?"},
			{URL: "https://missing.example", Question: "Anything?"},
			{URL: "https://moon.example", Question: "What is the distance between the Earth and the Moon?"},
		},
	}

	var progress []int
	var mu sync.Mutex
	run, results, err := ev.Run(context.Background(), ds, EvalOptions{
		MaxConcurrency: 3,
		OnProgress: func(done, total int, _ domain.EvalResult) {
			mu.Lock()
			progress = append(progress, done)
			mu.Unlock()
			assert.Equal(t, 4, total)
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "qa", run.Dataset)
	assert.Equal(t, DefaultExperimentPrefix, run.Prefix)
	assert.Equal(t, 4, run.Examples)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, progress)

	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, i, r.Position)
		assert.Equal(t, ds.Examples[i], r.Example)
	}

	assert.Equal(t, "answer to How much power will the reactor produce?", results[0].Answer)
	assert.Contains(t, results[0].Context, "40 kilowatts")
	assert.Equal(t, 8.0, results[0].Score)

	assert.Contains(t, results[2].Answer, "Error processing URL:")
	assert.Equal(t, 0.0, results[2].Score)
	assert.Equal(t, "0/10", results[2].Value)

	// "distance", "earth" are not in the page but "moon" is, so the question
	// still reaches the generator and judge
	assert.Equal(t, 8.0, results[3].Score)

	assert.Len(t, judge.inputs, 3)
	assert.InDelta(t, 6.0, run.MeanScore, 1e-9)

	saved, savedResults, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, saved)
	assert.Len(t, savedResults, 4)
}

func TestEvaluator_JudgeSeesCriteria(t *testing.T) {
	factory, judge, _ := newEvalFixture(t)
	ev := NewEvaluator(factory, judge, nil, nil)

	_, _, err := ev.Run(context.Background(), domain.Dataset{
		Name: "one",
		Examples: []domain.EvalExample{
			{URL: "https://moon.example", Question: "reactor power", AnswerCriteria: "Mentions kilowatts"},
		},
	}, EvalOptions{Prefix: "custom"})
	require.NoError(t, err)

	require.Len(t, judge.inputs, 1)
	assert.Equal(t, "Mentions kilowatts", judge.inputs[0].Criteria)
	assert.Equal(t, "reactor power", judge.inputs[0].Question)
	assert.Contains(t, judge.inputs[0].Context, "fission reactor")
}

func TestEvaluator_NoRelevantContentStillJudged(t *testing.T) {
	factory, judge, _ := newEvalFixture(t)
	ev := NewEvaluator(factory, judge, nil, nil)

	_, results, err := ev.Run(context.Background(), domain.Dataset{
		Examples: []domain.EvalExample{
			{URL: "https://python.example", Question: "latest blockchain developments"},
		},
	}, EvalOptions{})
	require.NoError(t, err)

	assert.Equal(t, "No relevant content found", results[0].Answer)
	assert.Empty(t, results[0].Context)
	assert.Len(t, judge.inputs, 1)
}

func TestEvaluator_MissingFields(t *testing.T) {
	factory, judge, _ := newEvalFixture(t)
	ev := NewEvaluator(factory, judge, nil, nil)

	_, results, err := ev.Run(context.Background(), domain.Dataset{
		Examples: []domain.EvalExample{{URL: "https://moon.example"}},
	}, EvalOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Error: Missing URL or question", results[0].Answer)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Empty(t, judge.inputs)
}

func TestEvaluator_Canceled(t *testing.T) {
	factory, judge, store := newEvalFixture(t)
	ev := NewEvaluator(factory, judge, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ev.Run(ctx, domain.Dataset{
		Examples: []domain.EvalExample{{URL: "https://moon.example", Question: "q"}},
	}, EvalOptions{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, store.runs)
}

func TestEvaluator_EmptyDataset(t *testing.T) {
	factory, judge, _ := newEvalFixture(t)
	run, results, err := NewEvaluator(factory, judge, nil, nil).Run(context.Background(), domain.Dataset{Name: "none"}, EvalOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0.0, run.MeanScore)
}
