package crawler

import (
	"strings"
	"sync"

	"github.com/googol-project/googol/pipeline"
)

// crawlerPayload flows through the fetch -> extract -> dispatch pipeline
// for a single URL.
type crawlerPayload struct {
	URL string

	Title   string
	Tokens  []string // every token on the page, feeds the term set
	Links   []string // deduplicated outgoing absolute links

	Terms []string // Tokens, deduplicated
}

func (p *crawlerPayload) Clone() pipeline.Payload {
	clone := payloadPool.Get().(*crawlerPayload)
	clone.URL = p.URL
	clone.Title = p.Title
	clone.Tokens = append([]string(nil), p.Tokens...)
	clone.Links = append([]string(nil), p.Links...)
	clone.Terms = append([]string(nil), p.Terms...)
	return clone
}

func (p *crawlerPayload) MarkAsProcessed() {
	p.URL = ""
	p.Title = ""
	p.Tokens = p.Tokens[:0]
	p.Links = p.Links[:0]
	p.Terms = p.Terms[:0]
	payloadPool.Put(p)
}

// snippet renders the first n space-joined tokens, trimmed.
func (p *crawlerPayload) snippet(n int) string {
	return snippetFromTokens(p.Tokens, n)
}

func snippetFromTokens(tokens []string, n int) string {
	if len(tokens) < n {
		n = len(tokens)
	}
	return strings.TrimSpace(strings.Join(tokens[:n], " "))
}

// pageResult is a copy of the fields processURL needs, taken before the
// source payload is handed back to the pool by MarkAsProcessed.
type pageResult struct {
	URL    string
	Title  string
	Tokens []string
	Terms  []string
	Links  []string
}

func (r *pageResult) snippet(n int) string {
	return snippetFromTokens(r.Tokens, n)
}

var payloadPool = sync.Pool{
	New: func() interface{} { return new(crawlerPayload) },
}
