package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"webrag/internal/port"
)

var _ port.Judge = (*RelevanceJudge)(nil)

const (
	scoreMarker       = "RELEVANCE_SCORE:"
	explanationMarker = "EXPLANATION:"
	defaultScore      = 5.0
	maxScore          = 10.0
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// RelevanceJudge asks an LLM to grade an answer from 0 to 10.
type RelevanceJudge struct {
	llm port.LLM
}

func NewRelevanceJudge(llm port.LLM) *RelevanceJudge {
	return &RelevanceJudge{llm: llm}
}

// Judge never fails; an LLM error becomes a zero score with the error in
// the comment.
func (j *RelevanceJudge) Judge(ctx context.Context, in port.JudgeInput) port.JudgeVerdict {
	prompt, err := render("judge.txt", in)
	if err != nil {
		return failedVerdict(err)
	}

	out, err := j.llm.Generate(ctx, prompt)
	if err != nil {
		return failedVerdict(err)
	}
	return ParseVerdict(out)
}

func failedVerdict(err error) port.JudgeVerdict {
	return port.JudgeVerdict{
		Score:   0,
		Value:   formatValue(0),
		Comment: fmt.Sprintf("Evaluation failed: %v", err),
	}
}

// ParseVerdict reads the score and explanation lines from a judge response.
func ParseVerdict(text string) port.JudgeVerdict {
	score := defaultScore
	comment := "Could not parse evaluation"

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.Contains(line, scoreMarker):
			rest := line[strings.LastIndex(line, scoreMarker)+len(scoreMarker):]
			if m := numberPattern.FindString(rest); m != "" {
				if v, err := strconv.ParseFloat(m, 64); err == nil {
					score = min(max(v, 0), maxScore)
				}
			}
		case strings.Contains(line, explanationMarker):
			comment = strings.TrimSpace(line[strings.LastIndex(line, explanationMarker)+len(explanationMarker):])
		}
	}

	return port.JudgeVerdict{
		Score:   score,
		Value:   formatValue(score),
		Comment: comment,
	}
}

func formatValue(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64) + "/10"
}
