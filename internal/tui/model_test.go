package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webrag/internal/domain"
	"webrag/internal/usecase"
)

type fakeChain struct {
	inputs []string
	state  usecase.State
}

func (f *fakeChain) ProcessInput(ctx context.Context, input string) usecase.Result {
	f.inputs = append(f.inputs, input)
	if usecase.IsSourceURL(input) {
		f.state = usecase.StateReady
		return usecase.Result{Kind: usecase.KindIndexed, Text: "Vector store initialized with 2 chunks."}
	}
	if f.state != usecase.StateReady {
		return usecase.Result{Kind: usecase.KindNoIndexYet, Text: "No source has been processed yet.", Err: domain.ErrNoIndexYet}
	}
	return usecase.Result{Kind: usecase.KindAnswer, Text: "An answer."}
}

func (f *fakeChain) State() usecase.State { return f.state }

func submit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	next, _ = m.Update(cmd())
	return next.(Model)
}

func TestModel_Conversation(t *testing.T) {
	chain := &fakeChain{}
	var m tea.Model = New(context.Background(), chain)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model := m.(Model)

	model = submit(t, model, "what is this?")
	assert.False(t, model.busy)
	assert.Contains(t, model.status, "no_index_yet")

	model = submit(t, model, "https://example.com/page")
	assert.Contains(t, model.status, "[ready] indexed")

	model = submit(t, model, "tell me more")
	assert.Equal(t, []string{"what is this?", "https://example.com/page", "tell me more"}, chain.inputs)
	require.Len(t, model.transcript, 3)

	view := model.View()
	assert.Contains(t, view, "webrag chat")
	assert.True(t, strings.Contains(model.renderTranscript(), "An answer."))
	assert.Empty(t, model.input.Value())
}

func TestModel_IgnoresEmptyInput(t *testing.T) {
	m := New(context.Background(), &fakeChain{})
	m.input.SetValue("   ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).busy)
}

func TestModel_Quit(t *testing.T) {
	m := New(context.Background(), &fakeChain{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := New(context.Background(), &fakeChain{})
	assert.Equal(t, "Loading...", m.View())
}
