// Package storage persists search results, analyses and reports as JSON
// files under the configured data and report directories.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hadrienbr/techwatch/logging"
	"github.com/hadrienbr/techwatch/search"
)

const timestampLayout = "20060102_150405"

// Options configures a Store.
type Options struct {
	Logger logging.Logger
}

// Store writes run artifacts to disk. Directories are created lazily on
// first write.
type Store struct {
	dataDir    string
	reportsDir string
	logger     logging.Logger
}

// New creates a Store rooted at the given directories.
func New(dataDir, reportsDir string, optFns ...func(o *Options)) *Store {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Store{
		dataDir:    dataDir,
		reportsDir: reportsDir,
		logger:     opts.Logger,
	}
}

// searchEnvelope is the persisted form of one search run.
type searchEnvelope struct {
	Query        string          `json:"query"`
	Timestamp    string          `json:"timestamp"`
	ResultsCount int             `json:"results_count"`
	Results      []search.Result `json:"results"`
}

// SaveSearchResults persists one search run and returns the file path.
func (s *Store) SaveSearchResults(results []search.Result, query string) (string, error) {
	envelope := searchEnvelope{
		Query:        query,
		Timestamp:    time.Now().Format(timestampLayout),
		ResultsCount: len(results),
		Results:      results,
	}

	return s.writeJSON(s.dataDir, fmt.Sprintf("search_%s.json", envelope.Timestamp), envelope)
}

// SaveAnalyses persists the per-document analysis output of a cycle.
func (s *Store) SaveAnalyses(analyses any) (string, error) {
	name := fmt.Sprintf("analysis_%s.json", time.Now().Format(timestampLayout))
	return s.writeJSON(s.dataDir, name, analyses)
}

// SaveReport persists a report under the reports directory.
func (s *Store) SaveReport(report any, name string) (string, error) {
	return s.writeJSON(s.reportsDir, name, report)
}

// SaveReportText persists a plain-text rendering of a report.
func (s *Store) SaveReportText(text, name string) (string, error) {
	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	path := filepath.Join(s.reportsDir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	s.logger.Info("report saved", "path", path)

	return path, nil
}

// LoadLatestReport reads the most recently written JSON report.
func (s *Store) LoadLatestReport() (map[string]any, error) {
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	var (
		latest    string
		latestMod time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if latest == "" || info.ModTime().After(latestMod) {
			latest, latestMod = e.Name(), info.ModTime()
		}
	}

	if latest == "" {
		return nil, fmt.Errorf("no reports found in %s", s.reportsDir)
	}

	path := filepath.Join(s.reportsDir, latest)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}

	var report map[string]any
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}

	return report, nil
}

func (s *Store) writeJSON(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir %s: %w", dir, err)
	}

	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	s.logger.Info("saved", "path", path)

	return path, nil
}
