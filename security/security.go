// Package security centralizes input sanitization and content validation:
// search query cleaning, URL allow-listing for extraction targets, and HTML
// stripping for scraped page bodies.
package security

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Content bounds applied to extracted page bodies.
const (
	MaxContentLength = 50000
	MinContentLength = 100

	maxQueryLength = 200
)

// Domains extraction is allowed to fetch from. Scraped search results point
// anywhere; only sources on this list are worth the fetch.
var allowedDomains = []string{
	"arxiv.org",
	"scholar.google.com",
	"researchgate.net",
	"ieee.org",
	"acm.org",
	"springer.com",
	"sciencedirect.com",
	"nature.com",
	"openai.com",
	"huggingface.co",
	"github.com",
	"medium.com",
	"towardsdatascience.com",
	"ai.googleblog.com",
	"research.google",
	"deepmind.com",
	"anthropic.com",
}

var (
	dangerousChars = regexp.MustCompile(`[<>"']`)
	multiSpace     = regexp.MustCompile(`\s+`)

	stripPolicy = bluemonday.StrictPolicy()
)

// SanitizeQuery cleans a raw search query: dangerous characters removed,
// whitespace collapsed, length capped. Returns "" when nothing usable
// remains.
func SanitizeQuery(query string) string {
	query = dangerousChars.ReplaceAllString(query, "")

	if len(query) > maxQueryLength {
		query = query[:maxQueryLength]
	}

	query = multiSpace.ReplaceAllString(query, " ")
	query = strings.TrimSpace(query)

	if len(query) < 2 {
		return ""
	}

	return query
}

// ValidURL reports whether raw parses as an absolute http(s) URL.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// AllowedSource reports whether the URL's host is on the extraction
// allow-list (exact host or subdomain).
func AllowedSource(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, domain := range allowedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}

	return false
}

// StripHTML removes every tag from an HTML fragment, returning text only.
func StripHTML(html string) string {
	return stripPolicy.Sanitize(html)
}

// SanitizeContent strips markup from extracted content, collapses
// whitespace and caps the length.
func SanitizeContent(content string) string {
	content = StripHTML(content)
	content = multiSpace.ReplaceAllString(content, " ")
	content = strings.TrimSpace(content)

	if len(content) > MaxContentLength {
		content = content[:MaxContentLength]
	}

	return content
}

// ValidContentLength reports whether content is long enough to analyze and
// short enough to store.
func ValidContentLength(content string) bool {
	return len(content) >= MinContentLength && len(content) <= MaxContentLength
}
