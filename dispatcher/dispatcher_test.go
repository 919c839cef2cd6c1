package dispatcher

import (
	"testing"

	"github.com/googol-project/googol/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Barrels.Count = 2
	cfg.Barrels.Prefix = "barrel"
	return cfg
}

func noopResolver(name string) (string, bool, error) {
	return "", false, nil
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	return New(testConfig(), t.TempDir(), nil, noopResolver)
}

func TestSubmitURL_DedupsAndQueues(t *testing.T) {
	d := newTestDispatcher(t)

	require.NoError(t, d.SubmitURL("http://a"))
	require.NoError(t, d.SubmitURL("http://a"))

	url, ok := d.NextURLToCrawl()
	require.True(t, ok)
	assert.Equal(t, "http://a", url)

	_, ok = d.NextURLToCrawl()
	assert.False(t, ok)
}

func TestNextURLToCrawl_FIFOOrder(t *testing.T) {
	d := newTestDispatcher(t)
	require.NoError(t, d.SubmitURL("http://a"))
	require.NoError(t, d.SubmitURL("http://b"))

	first, _ := d.NextURLToCrawl()
	second, _ := d.NextURLToCrawl()
	assert.Equal(t, "http://a", first)
	assert.Equal(t, "http://b", second)
}

func TestNextURLToCrawl_EmptyQueue(t *testing.T) {
	d := newTestDispatcher(t)
	_, ok := d.NextURLToCrawl()
	assert.False(t, ok)
}

func TestSubmitURL_AppendsIndexedURLLog(t *testing.T) {
	dir := t.TempDir()
	d := New(testConfig(), dir, nil, noopResolver)

	require.NoError(t, d.SubmitURL("http://a"))
	require.NoError(t, d.SubmitURL("http://b"))

	assert.FileExists(t, dir+"/indexed_urls.log")
}
