// Package watch implements the periodic tech-watch cycle: keyword search,
// content extraction, per-document relevance analysis through the model
// backend, and report synthesis.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/logging"
	"github.com/hadrienbr/techwatch/search"
	"github.com/hadrienbr/techwatch/security"
	"github.com/hadrienbr/techwatch/storage"
	"github.com/hadrienbr/techwatch/webpage"
)

// maxAnalysisContent bounds the document excerpt sent for relevance scoring.
const maxAnalysisContent = 4000

// Options configures a Runner.
type Options struct {
	Logger logging.Logger

	// MaxDocuments caps how many search hits are extracted per cycle.
	MaxDocuments int

	// Pause between successive fetches and analyses, lowered in tests.
	Pause time.Duration
}

// Runner drives watch cycles. One Runner is safe for sequential reuse; each
// cycle gets its own session id.
type Runner struct {
	backend backend.Backend
	search  *search.Client
	fetcher *webpage.Fetcher
	store   *storage.Store
	logger  logging.Logger

	maxDocuments int
	pause        time.Duration
}

// New creates a Runner from its collaborators.
func New(b backend.Backend, sc *search.Client, f *webpage.Fetcher, st *storage.Store, optFns ...func(o *Options)) *Runner {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		MaxDocuments: 10,
		Pause:        time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		backend:      b,
		search:       sc,
		fetcher:      f,
		store:        st,
		logger:       opts.Logger,
		maxDocuments: opts.MaxDocuments,
		pause:        opts.Pause,
	}
}

// RunFullCycle executes search, extraction, analysis and synthesis for the
// given keywords, persisting intermediate artifacts and the final report.
// Per-document failures are logged and skipped; a phase producing nothing
// ends the cycle with an error report rather than a Go error.
func (r *Runner) RunFullCycle(ctx context.Context, keywords []string) (Report, error) {
	sessionID := uuid.NewString()
	started := time.Now()

	r.logger.Info("starting watch cycle", "session", sessionID, "keywords", len(keywords))

	var phases []string
	var errs []string

	// Phase 1: search.
	results, err := r.search.SearchPapers(ctx, keywords)
	if err != nil {
		return r.errorReport(sessionID, started, phases, append(errs, err.Error())), err
	}
	if len(results) == 0 {
		err := fmt.Errorf("no search results for %d keywords", len(keywords))
		return r.errorReport(sessionID, started, phases, append(errs, err.Error())), err
	}
	if _, err := r.store.SaveSearchResults(results, fmt.Sprintf("%d keywords", len(keywords))); err != nil {
		r.logger.Warn("failed to persist search results", "error", err)
		errs = append(errs, err.Error())
	}
	phases = append(phases, "search")

	// Phase 2: extraction.
	docs := r.extractDocuments(ctx, results)
	if len(docs) == 0 {
		err := fmt.Errorf("no content extracted from %d results", len(results))
		return r.errorReport(sessionID, started, phases, append(errs, err.Error())), err
	}
	phases = append(phases, "extraction")

	// Phase 3: analysis.
	analyzed := r.analyzeDocuments(ctx, docs)
	if len(analyzed) == 0 {
		err := fmt.Errorf("no document analyzed")
		return r.errorReport(sessionID, started, phases, append(errs, err.Error())), err
	}
	if _, err := r.store.SaveAnalyses(analyzed); err != nil {
		r.logger.Warn("failed to persist analyses", "error", err)
		errs = append(errs, err.Error())
	}
	phases = append(phases, "analysis")

	// Phase 4: synthesis.
	report := BuildReport(analyzed)
	report.Session.SessionID = sessionID
	report.Session.DurationSeconds = time.Since(started).Seconds()
	report.Session.PhasesCompleted = append(phases, "synthesis")
	report.Session.Errors = errs

	if _, err := r.store.SaveReport(report, report.Metadata.ReportID+".json"); err != nil {
		r.logger.Warn("failed to persist report", "error", err)
	}

	r.logger.Info("watch cycle finished", "session", sessionID, "duration", time.Since(started), "relevant", report.Summary.RelevantDocuments)

	return report, nil
}

// TargetedSearch runs one query, extracts and analyzes the hits, and
// returns the analyzed documents without synthesizing a report.
func (r *Runner) TargetedSearch(ctx context.Context, query string, maxResults int) ([]Document, error) {
	results, err := r.search.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	docs := r.extractDocuments(ctx, results)

	return r.analyzeDocuments(ctx, docs), nil
}

// Monitor runs full cycles at the given interval until the context is
// cancelled.
func (r *Runner) Monitor(ctx context.Context, keywords []string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunFullCycle(ctx, keywords); err != nil {
			r.logger.Error("watch cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) extractDocuments(ctx context.Context, results []search.Result) []Document {
	var docs []Document

	for i, res := range results {
		if len(docs) >= r.maxDocuments {
			break
		}

		if !security.AllowedSource(res.URL) {
			r.logger.Debug("skipping disallowed source", "url", res.URL)
			continue
		}

		if i > 0 && r.pause > 0 {
			select {
			case <-ctx.Done():
				return docs
			case <-time.After(r.pause):
			}
		}

		page, err := r.fetcher.Extract(ctx, res.URL)
		if err != nil {
			r.logger.Warn("extraction failed", "url", res.URL, "error", err)
			continue
		}

		title := page.Title
		if title == "" {
			title = res.Title
		}

		docs = append(docs, Document{
			Title:   title,
			URL:     res.URL,
			Snippet: res.Snippet,
			Content: page.Content,
		})
	}

	r.logger.Info("extraction finished", "extracted", len(docs), "candidates", len(results))

	return docs
}

func (r *Runner) analyzeDocuments(ctx context.Context, docs []Document) []Document {
	analyzed := make([]Document, 0, len(docs))

	for i, doc := range docs {
		if i > 0 && r.pause > 0 {
			select {
			case <-ctx.Done():
				return analyzed
			case <-time.After(r.pause):
			}
		}

		analysis, err := r.analyzeRelevance(ctx, doc.Title, doc.Content)
		if err != nil {
			r.logger.Warn("analysis failed", "title", doc.Title, "error", err)
			continue
		}

		doc.Analysis = analysis
		doc.AnalyzedAt = time.Now()
		analyzed = append(analyzed, doc)
	}

	r.logger.Info("analysis finished", "analyzed", len(analyzed), "documents", len(docs))

	return analyzed
}

// analyzeRelevance asks the backend to score one document for NLP
// relevance, expecting the Analysis JSON shape back.
func (r *Runner) analyzeRelevance(ctx context.Context, title, content string) (Analysis, error) {
	excerpt := content
	if len(excerpt) > maxAnalysisContent {
		excerpt = excerpt[:maxAnalysisContent] + "... [truncated]"
	}

	system := "You are an NLP research analyst.\n" +
		"Score the document's relevance to natural language processing research.\n" +
		"Return a JSON object with 'relevance_score' (1-10), 'nlp_domains' (list of strings), " +
		"'techniques' (list of strings), 'novelty_score' (1-10), 'summary' (string), 'keywords' (list of strings)."

	prompt := fmt.Sprintf("Title: %s\n\nContent:\n%s", title, excerpt)

	resp, err := r.backend.Generate(ctx, backend.Request{Prompt: prompt, System: system, JSONMode: true})
	if err != nil {
		return Analysis{}, err
	}

	return parseAnalysis(resp), nil
}

var relevancePattern = regexp.MustCompile(`relevance_score["\s]*:[\s]*(\d+)`)

// parseAnalysis decodes the model's analysis JSON. Models drift from the
// requested shape often enough that a degraded fallback beats dropping the
// document: salvage the score by regex and keep a prose prefix as summary.
func parseAnalysis(resp string) Analysis {
	var a Analysis
	if err := json.Unmarshal([]byte(resp), &a); err == nil {
		return a
	}

	a = Analysis{RelevanceScore: 5, NoveltyScore: 5}

	if m := relevancePattern.FindStringSubmatch(resp); len(m) > 1 {
		if score, err := strconv.Atoi(m[1]); err == nil {
			a.RelevanceScore = score
		}
	}

	summary := resp
	if len(summary) > 300 {
		summary = summary[:300]
	}
	a.Summary = summary

	return a
}

func (r *Runner) errorReport(sessionID string, started time.Time, phases, errs []string) Report {
	var report Report
	report.Metadata.GeneratedAt = time.Now()
	report.Metadata.ReportID = "error_" + sessionID
	report.Metadata.Version = "1.0"
	report.Session.SessionID = sessionID
	report.Session.DurationSeconds = time.Since(started).Seconds()
	report.Session.PhasesCompleted = phases
	report.Session.Errors = errs

	return report
}
