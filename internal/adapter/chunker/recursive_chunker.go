package chunker

import (
	"fmt"
	"strings"

	"webrag/internal/domain"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// separatorGroups lists natural boundaries from strongest to weakest.
// Separators in the same group are equally preferred.
var separatorGroups = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? "},
	{" "},
}

// RecursiveChunker cuts text into windows of at most size runes, preferring
// to end a window on a paragraph, line, sentence or word boundary. Each window
// after the first starts overlap runes before the previous one ended.
type RecursiveChunker struct {
	size       int
	overlap    int
	lookback   int
	separators [][][]rune
}

func NewRecursiveChunker(size, overlap int) (*RecursiveChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", domain.ErrInvalidConfig, size, overlap)
	}

	groups := make([][][]rune, len(separatorGroups))
	for i, group := range separatorGroups {
		for _, sep := range group {
			groups[i] = append(groups[i], []rune(sep))
		}
	}

	lookback := size / 2
	if lookback < 1 {
		lookback = 1
	}

	return &RecursiveChunker{
		size:       size,
		overlap:    overlap,
		lookback:   lookback,
		separators: groups,
	}, nil
}

func (c *RecursiveChunker) Size() int    { return c.size }
func (c *RecursiveChunker) Overlap() int { return c.overlap }

// Split returns the chunks of text in left-to-right order.
func (c *RecursiveChunker) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []string
	start := 0

	for {
		limit := start + c.size
		if limit >= n {
			chunks = append(chunks, string(runes[start:n]))
			break
		}

		end := c.cutPoint(runes, start, limit)
		// a whitespace-only window is kept so the next one still overlaps
		// its predecessor exactly; it has no terms and never ranks.
		chunks = append(chunks, string(runes[start:end]))

		// end > start+overlap, so the next window always moves forward.
		start = end - c.overlap
	}

	return chunks
}

// cutPoint picks where the window [start, limit) should end.
func (c *RecursiveChunker) cutPoint(runes []rune, start, limit int) int {
	floor := start + c.overlap
	if lb := limit - c.lookback; lb > floor {
		floor = lb
	}

	for _, group := range c.separators {
		best := -1
		for _, sep := range group {
			if p := lastCut(runes, sep, floor, limit); p > best {
				best = p
			}
		}
		if best > floor {
			return best
		}
	}

	return limit
}

// lastCut returns the end offset of the right-most occurrence of sep that
// finishes in (floor, limit], or -1.
func lastCut(runes []rune, sep []rune, floor, limit int) int {
	m := len(sep)
	for end := limit; end > floor; end-- {
		if end-m < 0 {
			break
		}
		if equalRunes(runes[end-m:end], sep) {
			return end
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
