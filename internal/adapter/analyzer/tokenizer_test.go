package analyzer

import (
	"testing"
)

func TestTokenizer_Tokenize_CaseFolding(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("Cats CATS cats")
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(tokens), tokens)
	}
	for _, token := range tokens {
		if token != "cats" {
			t.Errorf("expected case-folded 'cats', got %q", token)
		}
	}
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("What is the price of gold?")
	expected := []string{"price", "gold"}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, tokens)
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("token %d: expected %q, got %q", i, expected[i], tokens[i])
		}
	}
}

func TestTokenizer_ShortWordRemoval(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("x y z go")
	if len(tokens) != 1 || tokens[0] != "go" {
		t.Errorf("expected only 'go', got %v", tokens)
	}
}

func TestTokenizer_NoStemming(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("running dogs")
	if len(tokens) != 2 || tokens[0] != "running" || tokens[1] != "dogs" {
		t.Errorf("expected terms to remain unstemmed, got %v", tokens)
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("")
	if len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}
	if got := tok.Tokenize("  \n\t "); len(got) != 0 {
		t.Errorf("expected 0 tokens for blank input, got %v", got)
	}
}

func TestTokenizer_IsStopword(t *testing.T) {
	tok := NewTokenizer()

	if !tok.IsStopword("The") {
		t.Error("expected 'The' to be a stopword")
	}
	if tok.IsStopword("mammals") {
		t.Error("did not expect 'mammals' to be a stopword")
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"hello_world", 1},
		{"hello-world", 2},
		{"don't stop", 3},
		{"Café au lait", 3},
		{"123numbers456", 1},
		{"", 0},
	}

	for _, tt := range tests {
		words := splitWords(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitWords(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}
