package repo

import "context"

// DocumentSource fetches remotely hosted plain-text documents: the
// welcome and notification templates and the fraud list. Every call
// re-fetches; the relay keeps no local copy.
type DocumentSource interface {
	Fetch(ctx context.Context, url string) (string, error)
}
