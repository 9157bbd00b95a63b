package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/nfdbot/telegram-relay/internal/biz/repo"
)

// FraudUsecase checks sender ids against an externally hosted
// newline-delimited id list.
type FraudUsecase struct {
	source repo.DocumentSource
	url    string
}

// NewFraudUsecase creates a fraud oracle reading the list at url.
func NewFraudUsecase(source repo.DocumentSource, url string) *FraudUsecase {
	return &FraudUsecase{source: source, url: url}
}

// IsFraud reports whether id has an exact full-line match in the fraud
// list. Every call re-fetches the document.
func (uc *FraudUsecase) IsFraud(ctx context.Context, id string) (bool, error) {
	doc, err := uc.source.Fetch(ctx, uc.url)
	if err != nil {
		return false, fmt.Errorf("fetch fraud list: %w", err)
	}

	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if line == id {
			return true, nil
		}
	}
	return false, nil
}
