package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/domain"
)

const sample = `name: moon
description: lunar questions
examples:
  - url: https://example.com/moon
    question: Is there a reactor planned?
    answer_criteria: Mentions kilowatts.
  - url: https://example.com/moon
    question: How far is the Moon?
`

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moon.yaml")
	write(t, path, sample)

	ds, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "moon", ds.Name)
	assert.Equal(t, "lunar questions", ds.Description)
	require.Len(t, ds.Examples, 2)
	assert.Equal(t, domain.EvalExample{
		URL:            "https://example.com/moon",
		Question:       "Is there a reactor planned?",
		AnswerCriteria: "Mentions kilowatts.",
	}, ds.Examples[0])
	assert.Empty(t, ds.Examples[1].AnswerCriteria)
}

func TestLoad_NameFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unnamed.yml")
	write(t, path, "examples:\n  - url: https://a.example\n    question: q\n")

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "unnamed", ds.Name)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	write(t, empty, "name: empty\n")
	_, err = Load(empty)
	assert.True(t, errors.Is(err, ErrNoExamples))

	noURL := filepath.Join(dir, "nourl.yaml")
	write(t, noURL, "examples:\n  - question: q\n")
	_, err = Load(noURL)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	write(t, broken, "examples: [\n")
	_, err = Load(broken)
	assert.Error(t, err)
}

func TestDiscoverAndFind(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "evals", "moon.yaml"), sample)
	write(t, filepath.Join(dir, "evals", "nested", "python.yml"), "name: Python Intro\nexamples:\n  - url: https://p.example\n    question: What is Python?\n")
	write(t, filepath.Join(dir, "evals", "README.md"), "not a dataset")

	paths, err := Discover([]string{filepath.Join(dir, "evals", "**", "*.{yaml,yml}")})
	require.NoError(t, err)
	require.Len(t, paths, 2)

	paths, err = Discover([]string{filepath.Join(dir, "evals")})
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	ds, err := Find([]string{filepath.Join(dir, "evals")}, "Python Intro")
	require.NoError(t, err)
	assert.Equal(t, "What is Python?", ds.Examples[0].Question)

	ds, err = Find([]string{filepath.Join(dir, "evals")}, "python")
	require.NoError(t, err)
	assert.Equal(t, "Python Intro", ds.Name)

	_, err = Find([]string{filepath.Join(dir, "evals")}, "absent")
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ds.yaml")
	in := domain.Dataset{
		Name:     "saved",
		Examples: []domain.EvalExample{{URL: "https://s.example", Question: "why?"}},
	}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestShippedDataset(t *testing.T) {
	ds, err := Load(filepath.Join("..", "..", "..", "evals", "summarizer_qa.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Text Summarizer Q&A Dataset", ds.Name)
	assert.Len(t, ds.Examples, 6)
}
