// Package fetch retrieves product pages and parses them into an HTML node
// tree for signal extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html"
)

// Storefronts routinely block default Go client identities, so checks go out
// with a desktop browser User-Agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

// maxBodySize caps how much of a page is read (product pages are small;
// this guards against pathological responses).
const maxBodySize = 8 << 20 // 8MB

// Fetcher retrieves a URL and returns the parsed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*html.Node, error)
}

// HTTPFetcher fetches pages over plain HTTP with a bounded timeout.
type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTP creates an HTTPFetcher. Each fetch is bounded by timeout.
func NewHTTP(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Fetch retrieves url and parses the response body. Network errors, non-2xx
// statuses and parse failures are all returned as errors for the caller to
// degrade into a failed-check verdict.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*html.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}
