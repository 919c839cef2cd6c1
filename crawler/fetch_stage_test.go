package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/googol-project/googol/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	page *fetch.Page
	err  error
}

func (s stubFetcher) Fetch(ctx context.Context, url string) (*fetch.Page, error) {
	return s.page, s.err
}

func TestFetchStage_PopulatesPayloadFromPage(t *testing.T) {
	stage := newFetchStage(stubFetcher{page: &fetch.Page{
		Title:  "Hello",
		Tokens: []string{"go", "lang"},
		Links:  []string{"http://a"},
	}})

	out, err := stage.Process(context.Background(), &crawlerPayload{URL: "http://x"})
	require.NoError(t, err)

	payload := out.(*crawlerPayload)
	assert.Equal(t, "Hello", payload.Title)
	assert.Equal(t, []string{"go", "lang"}, payload.Tokens)
	assert.Equal(t, []string{"http://a"}, payload.Links)
}

func TestFetchStage_SkippedPageProducesNoOutput(t *testing.T) {
	stage := newFetchStage(stubFetcher{err: fetch.ErrSkipped})

	out, err := stage.Process(context.Background(), &crawlerPayload{URL: "http://x"})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestFetchStage_TransportFailureProducesNoOutput(t *testing.T) {
	stage := newFetchStage(stubFetcher{err: errors.New("connection reset")})

	out, err := stage.Process(context.Background(), &crawlerPayload{URL: "http://x"})
	require.NoError(t, err)
	assert.Nil(t, out)
}
