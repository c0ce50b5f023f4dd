package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"webrag/internal/usecase"
)

// ChainPort is the TUI-facing subset of the chain.
type ChainPort interface {
	ProcessInput(ctx context.Context, input string) usecase.Result
	State() usecase.State
}

type entry struct {
	input  string
	result usecase.Result
}

type resultMsg struct {
	input  string
	result usecase.Result
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	ctx        context.Context
	chain      ChainPort
	input      textinput.Model
	viewport   viewport.Model
	transcript []entry
	status     string
	busy       bool
	ready      bool
}

func New(ctx context.Context, chain ChainPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Paste a URL to load a page, or ask a question"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		chain:    chain,
		input:    ti,
		viewport: vp,
		status:   "No page loaded.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input line, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case resultMsg:
		m.busy = false
		m.transcript = append(m.transcript, entry{input: msg.input, result: msg.result})
		m.status = m.statusLine(msg.result)
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.SetValue("")
			m.busy = true
			if usecase.IsSourceURL(text) {
				m.status = "Fetching " + text + " ..."
			} else {
				m.status = "Thinking ..."
			}
			return m, m.process(text)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) process(text string) tea.Cmd {
	ctx, chain := m.ctx, m.chain
	return func() tea.Msg {
		return resultMsg{input: text, result: chain.ProcessInput(ctx, text)}
	}
}

func (m Model) statusLine(res usecase.Result) string {
	state := m.chain.State()
	if res.OK() {
		return fmt.Sprintf("[%s] %s", state, res.Kind)
	}
	return fmt.Sprintf("[%s] %s: %v", state, res.Kind, res.Err)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("webrag chat")
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	statusStyle := okStyle
	if len(m.transcript) > 0 && !m.transcript[len(m.transcript)-1].result.OK() {
		statusStyle = errStyle
	}
	return header + "\n" + transcript + "\n" + input + "\n" + statusStyle.Render(m.status)
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return dimStyle.Render("Start by pasting a URL.")
	}
	width := max(20, m.viewport.Width-2)
	var sb strings.Builder
	for i, e := range m.transcript {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(userStyle.Render("> " + e.input))
		sb.WriteString("\n")
		style := answerStyle
		if !e.result.OK() {
			style = errStyle
		}
		sb.WriteString(style.Width(width).Render(e.result.Text))
	}
	return sb.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle        = lipgloss.NewStyle().Bold(true)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle        = lipgloss.NewStyle()
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
