package watch

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// relevanceThreshold separates documents worth reporting from noise.
const relevanceThreshold = 6

// Analysis is the model's relevance assessment of one document.
type Analysis struct {
	RelevanceScore int      `json:"relevance_score"`
	Domains        []string `json:"nlp_domains"`
	Techniques     []string `json:"techniques"`
	NoveltyScore   int      `json:"novelty_score"`
	Summary        string   `json:"summary"`
	Keywords       []string `json:"keywords"`
}

// Document is one analyzed source flowing through a cycle.
type Document struct {
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Snippet    string    `json:"snippet"`
	Content    string    `json:"content,omitempty"`
	Analysis   Analysis  `json:"analysis"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Report is the synthesized output of a full watch cycle.
type Report struct {
	Metadata struct {
		GeneratedAt time.Time `json:"generated_at"`
		ReportID    string    `json:"report_id"`
		Version     string    `json:"version"`
	} `json:"metadata"`

	Summary struct {
		TotalDocumentsAnalyzed int     `json:"total_documents_analyzed"`
		RelevantDocuments      int     `json:"relevant_documents"`
		RelevanceRate          float64 `json:"relevance_rate"`
		AverageRelevanceScore  float64 `json:"average_relevance_score"`
	} `json:"summary"`

	Insights struct {
		TopDomains         []DomainCount `json:"top_nlp_domains"`
		EmergingTechniques []string      `json:"emerging_techniques"`
		HighImpactPapers   []PaperRef    `json:"high_impact_papers"`
	} `json:"insights"`

	Session struct {
		SessionID       string   `json:"session_id"`
		DurationSeconds float64  `json:"duration_seconds"`
		PhasesCompleted []string `json:"phases_completed"`
		Errors          []string `json:"errors,omitempty"`
	} `json:"session_metadata"`

	DetailedAnalysis []Document `json:"detailed_analysis"`
}

// DomainCount is one entry of the domain frequency ranking.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// PaperRef is a high-impact paper summary line.
type PaperRef struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	RelevanceScore int    `json:"relevance_score"`
	Summary        string `json:"summary"`
}

// BuildReport synthesizes the cycle report from analyzed documents: filters
// by relevance, aggregates domain and technique frequencies, and ranks the
// top papers.
func BuildReport(analyzed []Document) Report {
	var report Report
	report.Metadata.GeneratedAt = time.Now()
	report.Metadata.ReportID = "nlp_watch_" + uuid.NewString()
	report.Metadata.Version = "1.0"

	relevant := make([]Document, 0, len(analyzed))
	scoreSum := 0
	for _, doc := range analyzed {
		scoreSum += doc.Analysis.RelevanceScore
		if doc.Analysis.RelevanceScore > relevanceThreshold {
			relevant = append(relevant, doc)
		}
	}

	total := len(analyzed)
	report.Summary.TotalDocumentsAnalyzed = total
	report.Summary.RelevantDocuments = len(relevant)
	if total > 0 {
		report.Summary.RelevanceRate = float64(len(relevant)) / float64(total)
		report.Summary.AverageRelevanceScore = float64(scoreSum) / float64(total)
	}

	domainCounts := map[string]int{}
	techniques := map[string]struct{}{}
	for _, doc := range relevant {
		for _, d := range doc.Analysis.Domains {
			domainCounts[d]++
		}
		for _, tech := range doc.Analysis.Techniques {
			techniques[tech] = struct{}{}
		}
	}

	report.Insights.TopDomains = topDomains(domainCounts, 5)
	report.Insights.EmergingTechniques = sortedKeys(techniques, 10)
	report.Insights.HighImpactPapers = topPapers(relevant, 5)
	report.DetailedAnalysis = relevant

	return report
}

func topDomains(counts map[string]int, n int) []DomainCount {
	ranked := make([]DomainCount, 0, len(counts))
	for domain, count := range counts {
		ranked = append(ranked, DomainCount{Domain: domain, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Domain < ranked[j].Domain
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	return ranked
}

func sortedKeys(set map[string]struct{}, n int) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	if len(keys) > n {
		keys = keys[:n]
	}

	return keys
}

func topPapers(relevant []Document, n int) []PaperRef {
	ranked := make([]Document, len(relevant))
	copy(ranked, relevant)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Analysis.RelevanceScore > ranked[j].Analysis.RelevanceScore
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}

	papers := make([]PaperRef, 0, len(ranked))
	for _, doc := range ranked {
		papers = append(papers, PaperRef{
			Title:          doc.Title,
			URL:            doc.URL,
			RelevanceScore: doc.Analysis.RelevanceScore,
			Summary:        doc.Analysis.Summary,
		})
	}

	return papers
}
