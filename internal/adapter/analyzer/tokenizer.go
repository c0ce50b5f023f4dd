package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into case-folded terms with English stop words removed.
type Tokenizer struct {
	stopwords map[string]struct{}
	minLen    int
}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{
		stopwords: defaultStopwords(),
		minLen:    2,
	}
}

// Tokenize splits text into terms.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len([]rune(word)) < t.minLen {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// IsStopword reports whether the case-folded word is on the stop list.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[strings.ToLower(word)]
	return ok
}

// splitWords splits text into words using unicode word boundaries.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

// defaultStopwords returns a set of common English function words.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "about", "above", "after", "again", "against", "all", "almost",
		"alone", "along", "already", "also", "although", "always", "am",
		"among", "an", "and", "another", "any", "anyhow", "anyone",
		"anything", "anyway", "anywhere", "are", "around", "as", "at", "be",
		"became", "because", "become", "becomes", "been", "before",
		"beforehand", "behind", "being", "below", "beside", "besides",
		"between", "beyond", "both", "but", "by", "can", "cannot", "could",
		"did", "do", "does", "doing", "done", "down", "due", "during", "each",
		"either", "else", "elsewhere", "enough", "etc", "even", "ever",
		"every", "everyone", "everything", "everywhere", "except", "few",
		"for", "former", "formerly", "from", "further", "had", "has", "have",
		"having", "he", "hence", "her", "here", "hereafter", "hereby",
		"herein", "hers", "herself", "him", "himself", "his", "how",
		"however", "ie", "if", "in", "indeed", "into", "is", "it", "its",
		"itself", "just", "last", "latter", "least", "less", "many", "may",
		"me", "meanwhile", "might", "mine", "more", "moreover", "most",
		"mostly", "much", "must", "my", "myself", "namely", "neither",
		"never", "nevertheless", "next", "no", "nobody", "none", "nor", "not",
		"nothing", "now", "nowhere", "of", "off", "often", "on", "once",
		"one", "only", "onto", "or", "other", "others", "otherwise", "our",
		"ours", "ourselves", "out", "over", "own", "per", "perhaps", "rather",
		"re", "same", "seem", "seemed", "seeming", "seems", "several", "she",
		"should", "since", "so", "some", "somehow", "someone", "something",
		"sometime", "sometimes", "somewhere", "still", "such", "than", "that",
		"the", "their", "theirs", "them", "themselves", "then", "thence",
		"there", "thereafter", "thereby", "therefore", "therein", "these",
		"they", "this", "those", "though", "through", "throughout", "thru",
		"thus", "to", "together", "too", "toward", "towards", "under",
		"until", "up", "upon", "us", "very", "via", "was", "we", "well",
		"were", "what", "whatever", "when", "whence", "whenever", "where",
		"whereafter", "whereas", "whereby", "wherein", "whereupon",
		"wherever", "whether", "which", "while", "whither", "who", "whoever",
		"whole", "whom", "whose", "why", "will", "with", "within", "without",
		"would", "yet", "you", "your", "yours", "yourself", "yourselves",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
