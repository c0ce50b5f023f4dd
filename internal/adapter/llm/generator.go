package llm

import (
	"context"
	"strings"

	"webrag/internal/port"
)

var _ port.AnswerGenerator = (*PromptGenerator)(nil)

// PromptGenerator answers a question by filling the answer template with
// the retrieved context and sending it to an LLM.
type PromptGenerator struct {
	llm port.LLM
}

func NewPromptGenerator(llm port.LLM) *PromptGenerator {
	return &PromptGenerator{llm: llm}
}

func (g *PromptGenerator) GenerateAnswer(ctx context.Context, excerpts, question string) (string, error) {
	prompt, err := render("answer.txt", struct {
		Context  string
		Question string
	}{
		Context:  excerpts,
		Question: strings.TrimSpace(question),
	})
	if err != nil {
		return "", err
	}
	return g.llm.Generate(ctx, prompt)
}
