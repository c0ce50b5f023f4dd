package port

import "context"

// LLM represents a language model for text generation.
type LLM interface {
	// Generate generates text based on the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateWithSystem generates text with a system prompt.
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}

// AnswerGenerator answers a question from a retrieved context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, excerpts, question string) (string, error)
}

// Judge scores an answer for relevance to the question and retrieved context.
type Judge interface {
	Judge(ctx context.Context, in JudgeInput) JudgeVerdict
}

type JudgeInput struct {
	Question string
	Answer   string
	Context  string
	Criteria string
}

type JudgeVerdict struct {
	Score   float64
	Value   string
	Comment string
}
