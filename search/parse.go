package search

import (
	"net/url"
	"regexp"
	"strings"
)

// The lite page has a simple structure: result links carry a result-link
// class, snippets follow in a result-snippet cell.
var (
	linkPattern        = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>(.*?)</a>`)
	linkPatternAlt     = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>(.*?)</a>`)
	snippetPattern     = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>(.*?)</td>`)
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
	redirectURLPattern = regexp.MustCompile(`uddg=([^&]+)`)
)

// parseResults extracts search results from the DuckDuckGo lite HTML.
func parseResults(html string) []Result {
	var results []Result

	matches := linkPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = linkPatternAlt.FindAllStringSubmatch(html, -1)
	}

	snippets := snippetPattern.FindAllStringSubmatch(html, -1)

	for i, m := range matches {
		link := resolveRedirect(m[1])
		title := cleanText(m[2])

		if link == "" || title == "" {
			continue
		}

		var snippet string
		if i < len(snippets) {
			snippet = cleanText(snippets[i][1])
		}

		results = append(results, Result{
			Title:   title,
			URL:     link,
			Snippet: snippet,
		})
	}

	return results
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<encoded> redirect links to
// the target URL.
func resolveRedirect(link string) string {
	if !strings.Contains(link, "uddg=") {
		return link
	}

	m := redirectURLPattern.FindStringSubmatch(link)
	if len(m) < 2 {
		return link
	}

	decoded, err := url.QueryUnescape(m[1])
	if err != nil {
		return link
	}

	return decoded
}

func cleanText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	return strings.TrimSpace(s)
}
