package crawler

import (
	"context"
	"errors"

	"github.com/googol-project/googol/fetch"
	"github.com/googol-project/googol/pipeline"
)

// Fetcher is implemented by the page-fetch collaborator.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

type fetchStage struct {
	fetcher Fetcher
}

func newFetchStage(fetcher Fetcher) *fetchStage {
	return &fetchStage{fetcher: fetcher}
}

func (s *fetchStage) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*crawlerPayload)

	page, err := s.fetcher.Fetch(ctx, payload.URL)
	if errors.Is(err, fetch.ErrSkipped) {
		return nil, nil
	}
	if err != nil {
		return nil, nil // transport failures drop this URL; the dispatcher's dedup means it won't be retried automatically
	}

	payload.Title = page.Title
	payload.Tokens = page.Tokens
	payload.Links = page.Links
	return payload, nil
}
