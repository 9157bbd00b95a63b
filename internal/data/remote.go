package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nfdbot/telegram-relay/internal/biz/repo"
)

// remoteDocs fetches plain-text documents over HTTP.
type remoteDocs struct {
	httpClient *http.Client
}

// NewRemoteDocs creates the production document source.
func NewRemoteDocs() repo.DocumentSource {
	return &remoteDocs{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *remoteDocs) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
