// Command techwatch runs the NLP tech-watch system: one-shot orchestrated
// queries, full watch cycles, targeted searches, continuous monitoring, or
// the HTTP API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hadrienbr/techwatch"
	"github.com/hadrienbr/techwatch/agents"
	"github.com/hadrienbr/techwatch/backend"
	anthropicbackend "github.com/hadrienbr/techwatch/backend/anthropic"
	"github.com/hadrienbr/techwatch/backend/ollama"
	openaibackend "github.com/hadrienbr/techwatch/backend/openai"
	"github.com/hadrienbr/techwatch/config"
	"github.com/hadrienbr/techwatch/logging"
	"github.com/hadrienbr/techwatch/search"
	"github.com/hadrienbr/techwatch/server"
	"github.com/hadrienbr/techwatch/storage"
	"github.com/hadrienbr/techwatch/watch"
	"github.com/hadrienbr/techwatch/webpage"
)

func main() {
	var (
		mode        = flag.String("mode", "run", "run | cycle | search | monitor | serve")
		query       = flag.String("query", "", "user query (run, search modes)")
		keywords    = flag.String("keywords", "", "comma-separated watch keywords (cycle, monitor modes); defaults to the built-in list")
		maxResults  = flag.Int("max-results", 0, "cap on search results (search mode)")
		interval    = flag.Duration("interval", time.Hour, "cycle interval (monitor mode)")
		configPath  = flag.String("config", "", "path to YAML config file")
		backendName = flag.String("backend", "ollama", "model backend: ollama | openai | anthropic")
		verbose     = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	level := logging.LogLevelInfo
	if *verbose {
		level = logging.LogLevelDebug
	}
	logger := logging.New(&logging.Config{Level: level, Format: "text", Output: os.Stderr})

	b, err := newBackend(*backendName, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !b.Available(ctx) {
		logger.Warn("model backend not reachable, requests will likely fail", "backend", *backendName)
	}

	switch *mode {
	case "run":
		err = runQuery(ctx, b, logger, *query)
	case "cycle":
		_, err = newRunner(b, cfg, logger).RunFullCycle(ctx, watchKeywords(*keywords, cfg))
	case "search":
		err = runSearch(ctx, newRunner(b, cfg, logger), *query, *maxResults)
	case "monitor":
		err = newRunner(b, cfg, logger).Monitor(ctx, watchKeywords(*keywords, cfg), *interval)
	case "serve":
		err = serve(b, cfg, logger)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newBackend(name string, cfg *config.Config, logger logging.Logger) (backend.Backend, error) {
	switch name {
	case "ollama":
		return ollama.New(func(o *ollama.Options) {
			o.BaseURL = cfg.Ollama.BaseURL
			o.Model = cfg.Ollama.Model
			o.Logger = logger
		}), nil
	case "openai":
		return openaibackend.New(), nil
	case "anthropic":
		return anthropicbackend.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func newRunner(b backend.Backend, cfg *config.Config, logger logging.Logger) *watch.Runner {
	sc := search.New(func(o *search.Options) {
		o.Logger = logger
		o.MaxResults = cfg.Search.MaxResults
	})
	fetcher := webpage.New(func(o *webpage.Options) { o.Logger = logger })
	store := storage.New(cfg.Storage.DataDir, cfg.Storage.ReportsDir, func(o *storage.Options) { o.Logger = logger })

	return watch.New(b, sc, fetcher, store, func(o *watch.Options) { o.Logger = logger })
}

func runQuery(ctx context.Context, b backend.Backend, logger logging.Logger, query string) error {
	if query == "" {
		return fmt.Errorf("run mode requires -query")
	}

	tw := techwatch.New(b, func(o *techwatch.Options) { o.Logger = logger })
	for _, a := range techwatch.DefaultAgents(b, func(o *agents.Options) { o.Logger = logger }) {
		tw.RegisterAgent(a)
	}

	result, err := tw.Run(ctx, query)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func runSearch(ctx context.Context, r *watch.Runner, query string, maxResults int) error {
	if query == "" {
		return fmt.Errorf("search mode requires -query")
	}

	docs, err := r.TargetedSearch(ctx, query, maxResults)
	if err != nil {
		return err
	}

	return printJSON(map[string]any{"count": len(docs), "documents": docs})
}

func serve(b backend.Backend, cfg *config.Config, logger logging.Logger) error {
	runner := newRunner(b, cfg, logger)
	store := storage.New(cfg.Storage.DataDir, cfg.Storage.ReportsDir, func(o *storage.Options) { o.Logger = logger })

	tw := techwatch.New(b, func(o *techwatch.Options) { o.Logger = logger })
	for _, a := range techwatch.DefaultAgents(b) {
		tw.RegisterAgent(a)
	}

	srv := server.New(tw.Orchestrator(), runner, store, b, func(o *server.Options) { o.Logger = logger })

	return srv.ListenAndServe(cfg.Server.Address)
}

func watchKeywords(flagValue string, cfg *config.Config) []string {
	if flagValue == "" {
		return cfg.Keywords
	}

	parts := strings.Split(flagValue, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}

	return keywords
}

func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(raw))

	return nil
}
