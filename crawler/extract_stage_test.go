package crawler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermStage_DeduplicatesTokens(t *testing.T) {
	payload := &crawlerPayload{Tokens: []string{"go", "go", "lang", "go"}}

	out, err := newTermStage().Process(context.Background(), payload)
	require.NoError(t, err)

	result := out.(*crawlerPayload)
	assert.Equal(t, []string{"go", "lang"}, result.Terms)
}

func TestTermStage_EmptyTokens(t *testing.T) {
	payload := &crawlerPayload{}
	out, err := newTermStage().Process(context.Background(), payload)
	require.NoError(t, err)
	assert.Empty(t, out.(*crawlerPayload).Terms)
}

func TestPayload_SnippetTruncatesToN(t *testing.T) {
	payload := &crawlerPayload{Tokens: []string{"a", "b", "c", "d"}}
	assert.Equal(t, "a b", payload.snippet(2))
	assert.Equal(t, "a b c d", payload.snippet(10))
}
