// Package search provides web search over DuckDuckGo's HTML lite interface,
// plus the keyword-driven paper search used by the tech-watch cycle.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hadrienbr/techwatch/logging"
	"github.com/hadrienbr/techwatch/security"
)

// Result is one web search hit.
type Result struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Snippet   string    `json:"snippet"`
	Retrieved time.Time `json:"retrieved"`
}

// Options configures the search client.
type Options struct {
	HTTPClient *http.Client
	Logger     logging.Logger

	// MaxResults caps the hits returned per query.
	MaxResults int
}

// Client scrapes the DuckDuckGo lite HTML page. The lite version is more
// stable for scraping than the full site.
type Client struct {
	http       *http.Client
	logger     logging.Logger
	maxResults int
}

// New creates a search client with a modest timeout.
func New(optFns ...func(o *Options)) *Client {
	opts := Options{
		Logger:     logging.NoOpLogger{},
		MaxResults: 10,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		http:       opts.HTTPClient,
		logger:     opts.Logger,
		maxResults: opts.MaxResults,
	}
}

const liteEndpoint = "https://lite.duckduckgo.com/lite/"

// Search runs one query and returns at most MaxResults hits with well-formed
// URLs. The query is sanitized first; a query with nothing usable left is an
// error.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	clean := security.SanitizeQuery(query)
	if clean == "" {
		return nil, errors.New("query is empty after sanitization")
	}

	c.logger.Info("searching", "query", clean)

	form := url.Values{}
	form.Set("q", clean)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, liteEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; TechWatch-Research-Bot/1.0)")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	results := parseResults(string(body))

	filtered := make([]Result, 0, len(results))
	for _, r := range results {
		if !security.ValidURL(r.URL) {
			continue
		}
		r.Retrieved = time.Now()
		filtered = append(filtered, r)
		if len(filtered) >= c.maxResults {
			break
		}
	}

	c.logger.Info("search finished", "query", clean, "results", len(filtered))

	return filtered, nil
}

// SearchPapers runs the keyword sweep of the tech-watch cycle: per keyword
// one arxiv-scoped query and one general research query, deduplicated by
// URL. A pause between keywords keeps the scraper under the rate limit.
func (c *Client) SearchPapers(ctx context.Context, keywords []string) ([]Result, error) {
	var all []Result

	for i, keyword := range keywords {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
		}

		academic, err := c.Search(ctx, fmt.Sprintf("site:arxiv.org %s", keyword))
		if err != nil {
			c.logger.Warn("academic search failed", "keyword", keyword, "error", err)
		} else {
			all = append(all, academic...)
		}

		general, err := c.Search(ctx, fmt.Sprintf("%s research", keyword))
		if err != nil {
			c.logger.Warn("general search failed", "keyword", keyword, "error", err)
		} else {
			all = append(all, general...)
		}
	}

	return dedupeByURL(all), nil
}

func dedupeByURL(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	unique := make([]Result, 0, len(results))

	for _, r := range results {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		unique = append(unique, r)
	}

	return unique
}
