package watch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadrienbr/techwatch/backend"
)

func doc(title string, score int, domains ...string) Document {
	return Document{
		Title:    title,
		URL:      "https://arxiv.org/abs/" + title,
		Analysis: Analysis{RelevanceScore: score, Domains: domains, Summary: "about " + title},
	}
}

func TestBuildReport_Summary(t *testing.T) {
	report := BuildReport([]Document{
		doc("a", 9, "translation"),
		doc("b", 7, "translation", "summarization"),
		doc("c", 3, "vision"),
		doc("d", 5),
	})

	assert.Equal(t, 4, report.Summary.TotalDocumentsAnalyzed)
	assert.Equal(t, 2, report.Summary.RelevantDocuments)
	assert.InDelta(t, 0.5, report.Summary.RelevanceRate, 1e-9)
	assert.InDelta(t, 6.0, report.Summary.AverageRelevanceScore, 1e-9)

	// Low-relevance documents stay out of the detail section.
	require.Len(t, report.DetailedAnalysis, 2)
	assert.NotEmpty(t, report.Metadata.ReportID)
}

func TestBuildReport_TopDomainsRanked(t *testing.T) {
	report := BuildReport([]Document{
		doc("a", 8, "translation", "qa"),
		doc("b", 8, "translation"),
		doc("c", 9, "qa"),
		doc("d", 7, "embeddings"),
	})

	require.NotEmpty(t, report.Insights.TopDomains)
	// translation and qa tie at 2; alphabetical order breaks the tie.
	assert.Equal(t, DomainCount{Domain: "qa", Count: 2}, report.Insights.TopDomains[0])
	assert.Equal(t, DomainCount{Domain: "translation", Count: 2}, report.Insights.TopDomains[1])
	assert.Equal(t, DomainCount{Domain: "embeddings", Count: 1}, report.Insights.TopDomains[2])
}

func TestBuildReport_HighImpactPapersSortedByScore(t *testing.T) {
	report := BuildReport([]Document{
		doc("low", 7),
		doc("high", 10),
		doc("mid", 8),
	})

	require.Len(t, report.Insights.HighImpactPapers, 3)
	assert.Equal(t, "high", report.Insights.HighImpactPapers[0].Title)
	assert.Equal(t, "mid", report.Insights.HighImpactPapers[1].Title)
	assert.Equal(t, 10, report.Insights.HighImpactPapers[0].RelevanceScore)
}

func TestBuildReport_Empty(t *testing.T) {
	report := BuildReport(nil)

	assert.Zero(t, report.Summary.TotalDocumentsAnalyzed)
	assert.Zero(t, report.Summary.RelevanceRate)
	assert.Empty(t, report.Insights.HighImpactPapers)
}

func TestParseAnalysis_ValidJSON(t *testing.T) {
	a := parseAnalysis(`{"relevance_score": 8, "nlp_domains": ["qa"], "summary": "solid paper"}`)

	assert.Equal(t, 8, a.RelevanceScore)
	assert.Equal(t, []string{"qa"}, a.Domains)
	assert.Equal(t, "solid paper", a.Summary)
}

func TestParseAnalysis_FallbackSalvagesScore(t *testing.T) {
	a := parseAnalysis(`The document scores "relevance_score": 9 overall, though I could not format JSON.`)

	assert.Equal(t, 9, a.RelevanceScore)
	assert.NotEmpty(t, a.Summary)
}

func TestParseAnalysis_FallbackDefaults(t *testing.T) {
	a := parseAnalysis("no structure at all")

	assert.Equal(t, 5, a.RelevanceScore)
	assert.Equal(t, "no structure at all", a.Summary)
}

func TestAnalyzeRelevance(t *testing.T) {
	mock := backend.NewMock()
	mock.GenerateFunc = func(_ context.Context, req backend.Request) (string, error) {
		return `{"relevance_score": 7, "summary": "ok"}`, nil
	}

	r := New(mock, nil, nil, nil)

	a, err := r.analyzeRelevance(context.Background(), "Some Paper", "body text")
	require.NoError(t, err)

	assert.Equal(t, 7, a.RelevanceScore)
}
