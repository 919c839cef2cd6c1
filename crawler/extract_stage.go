package crawler

import (
	"context"

	"github.com/googol-project/googol/pipeline"
)

// termStage reduces a page's full token stream to its deduplicated term
// set. Snippet construction stays with the payload itself (snippet takes
// the first 30 tokens of the untouched stream, not the deduplicated set).
type termStage struct{}

func newTermStage() *termStage {
	return &termStage{}
}

func (termStage) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*crawlerPayload)

	seen := make(map[string]struct{}, len(payload.Tokens))
	terms := make([]string, 0, len(payload.Tokens))
	for _, tok := range payload.Tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}
	payload.Terms = terms

	return payload, nil
}
