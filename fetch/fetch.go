// Package fetch is the concrete page-fetch collaborator the crawler
// depends on: given a URL, it retrieves the page over HTTP, sanitizes and
// tokenizes its visible text, and extracts its title and outgoing links.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// ErrSkipped means the URL was deliberately not fetched or not indexed:
// excluded by extension, resolves to a private network, returned a non-2xx
// status, or wasn't HTML. It is not a transport failure.
var ErrSkipped = errors.New("fetch: page skipped")

// maxBodyBytes bounds how much of a response body is read, guarding
// against unbounded memory growth on a misbehaving server.
const maxBodyBytes = 5 << 20

var exclusionRegex = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|gif|ico|css|js|pdf|zip|svg)$`)

// PrivateNetworkDetector reports whether a host resolves to a private
// or loopback network address, so the fetcher can refuse to crawl internal
// infrastructure.
type PrivateNetworkDetector interface {
	IsPrivate(host string) (bool, error)
}

// Page is the parsed result of fetching one URL.
type Page struct {
	Title string
	// Tokens holds every lower-cased token found in the page's sanitized
	// visible text, in document order.
	Tokens []string
	// Links holds deduplicated, absolute, http(s) outgoing links.
	Links []string
}

// Fetcher retrieves and parses web pages.
type Fetcher struct {
	client      *http.Client
	netDetector PrivateNetworkDetector
	policy      *bluemonday.Policy
	limiter     *rate.Limiter
}

// New returns a Fetcher bounded by timeout per request, pacing itself to at
// most requestsPerSecond fetches per second (0 means unlimited). netDetector
// may be nil to skip the private-network check (useful in tests).
func New(timeout time.Duration, netDetector PrivateNetworkDetector, requestsPerSecond float64) *Fetcher {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		netDetector: netDetector,
		policy:      bluemonday.StrictPolicy(),
		limiter:     rate.NewLimiter(limit, 1),
	}
}

// Fetch retrieves rawURL and extracts its title, text tokens, and outgoing
// links. Returns ErrSkipped for pages the crawler
// should silently pass over rather than treat as a transport failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if exclusionRegex.MatchString(rawURL) {
		return nil, ErrSkipped
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	if f.netDetector != nil {
		if isPrivate, err := f.netDetector.IsPrivate(u.Hostname()); err != nil || isPrivate {
			return nil, ErrSkipped
		}
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrSkipped
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, ErrSkipped
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	return f.parse(u, body)
}

func (f *Fetcher) parse(base *url.URL, body []byte) (*Page, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	page := &Page{}
	seenLinks := make(map[string]struct{})
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "title":
				if page.Title == "" && n.FirstChild != nil {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				for _, attr := range n.Attr {
					if attr.Key != "href" {
						continue
					}
					link := resolveLink(base, attr.Val)
					if link == "" {
						continue
					}
					if _, ok := seenLinks[link]; ok {
						continue
					}
					seenLinks[link] = struct{}{}
					page.Links = append(page.Links, link)
				}
			case "script", "style":
				return
			}
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	sanitized := f.policy.Sanitize(text.String())
	page.Tokens = strings.Fields(strings.ToLower(sanitized))

	return page, nil
}

func resolveLink(base *url.URL, href string) string {
	target, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(target)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
