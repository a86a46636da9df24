package webpage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const articleFixture = `<html>
<head><title>Scaling Laws for Neural Language Models</title>
<style>body { color: red; }</style></head>
<body>
<nav><a href="/">Home</a></nav>
<header>Site header</header>
<article>
<h1>Scaling Laws</h1>
<p>We study empirical scaling laws for language model performance.</p>
<p>Loss scales as a power-law with model size, dataset size, and compute.</p>
</article>
<script>trackPageView();</script>
<footer>Copyright</footer>
</body></html>`

func TestParse(t *testing.T) {
	page := Parse("https://arxiv.org/abs/2001.08361", articleFixture)

	assert.Equal(t, "Scaling Laws for Neural Language Models", page.Title)
	assert.Contains(t, page.Content, "empirical scaling laws")
	assert.Contains(t, page.Content, "power-law")

	// Boilerplate is gone.
	assert.NotContains(t, page.Content, "trackPageView")
	assert.NotContains(t, page.Content, "color: red")
	assert.NotContains(t, page.Content, "Site header")
	assert.NotContains(t, page.Content, "Copyright")

	assert.Equal(t, len(page.Content), page.Length)
}

func TestParse_NoTitle(t *testing.T) {
	page := Parse("https://example.com", "<html><body><p>just text</p></body></html>")

	assert.Empty(t, page.Title)
	assert.Equal(t, "just text", page.Content)
}

func TestParse_ContentIsPlainText(t *testing.T) {
	page := Parse("https://example.com", "<html><body>"+strings.Repeat("<p>para</p>", 10)+"</body></html>")

	assert.NotContains(t, page.Content, "<p>")
}

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF("https://arxiv.org/pdf/2001.08361.pdf", "", nil))
	assert.True(t, isPDF("https://arxiv.org/pdf/2001.08361", "application/pdf; charset=binary", nil))
	assert.True(t, isPDF("https://arxiv.org/pdf/2001.08361", "", []byte("%PDF-1.7\n")))
	assert.False(t, isPDF("https://arxiv.org/abs/2001.08361", "text/html", []byte("<html>")))
}
