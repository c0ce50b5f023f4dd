package port

import "context"

// ContentSource fetches a URL and returns its extracted plain text.
type ContentSource interface {
	Fetch(ctx context.Context, url string) (string, error)
}
