package port

// Chunker splits source text into ordered, overlapping segments.
type Chunker interface {
	Split(text string) []string
}
