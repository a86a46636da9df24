// Package webpage fetches article pages and reduces them to analyzable
// plain text.
package webpage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hadrienbr/techwatch/document"
	"github.com/hadrienbr/techwatch/logging"
	"github.com/hadrienbr/techwatch/security"
)

// Page is the extracted form of one web page.
type Page struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Length    int       `json:"length"`
	Extracted time.Time `json:"extracted"`
}

// Options configures the fetcher.
type Options struct {
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Fetcher downloads pages and strips them to text.
type Fetcher struct {
	http   *http.Client
	logger logging.Logger
}

// New creates a Fetcher.
func New(optFns ...func(o *Options)) *Fetcher {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Fetcher{http: opts.HTTPClient, logger: opts.Logger}
}

var (
	titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	// Boilerplate containers dropped before the body is stripped to text.
	boilerplatePattern = regexp.MustCompile(`(?is)<(script|style|nav|footer|header|aside)[^>]*>.*?</(script|style|nav|footer|header|aside)>`)
)

// Extract downloads url and returns its text content. The URL must be on the
// extraction allow-list, and the resulting text must fall inside the content
// length bounds.
func (f *Fetcher) Extract(ctx context.Context, url string) (*Page, error) {
	if !security.ValidURL(url) {
		return nil, fmt.Errorf("invalid url: %q", url)
	}
	if !security.AllowedSource(url) {
		return nil, fmt.Errorf("url not on the allowed source list: %q", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; TechWatch-Research-Bot/1.0)")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: http %d", url, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	var page *Page
	if isPDF(url, resp.Header.Get("Content-Type"), raw) {
		text, err := document.ExtractPDF(raw)
		if err != nil {
			return nil, fmt.Errorf("extract pdf %s: %w", url, err)
		}
		page = &Page{
			URL:       url,
			Content:   security.SanitizeContent(text),
			Extracted: time.Now(),
		}
		page.Length = len(page.Content)
	} else {
		page = Parse(url, string(raw))
	}

	if !security.ValidContentLength(page.Content) {
		return nil, fmt.Errorf("content length %d outside accepted bounds", page.Length)
	}

	f.logger.Info("page extracted", "url", url, "chars", page.Length)

	return page, nil
}

// isPDF detects PDF responses by extension, content type, or magic bytes.
// Arxiv serves papers as PDFs behind URLs with no extension.
func isPDF(url, contentType string, raw []byte) bool {
	if strings.HasSuffix(strings.ToLower(url), ".pdf") {
		return true
	}
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	return bytes.HasPrefix(raw, []byte("%PDF-"))
}

// Parse reduces raw HTML to a Page without network access. Split out so the
// reduction is testable with fixture documents.
func Parse(url, html string) *Page {
	var title string
	if m := titlePattern.FindStringSubmatch(html); len(m) > 1 {
		title = strings.TrimSpace(security.StripHTML(m[1]))
	}

	body := boilerplatePattern.ReplaceAllString(html, " ")
	content := security.SanitizeContent(body)

	return &Page{
		URL:       url,
		Title:     title,
		Content:   content,
		Length:    len(content),
		Extracted: time.Now(),
	}
}
