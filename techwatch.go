// Package techwatch provides a high-level façade over the orchestrator and
// the built-in agent set. Most applications interact with this package by:
//  1. Creating a TechWatch via New() with a model backend
//  2. Registering agents (the defaults via DefaultAgents, or custom ones)
//  3. Running queries through Run
//
// The façade delegates planning and execution to orchestrator.Orchestrator
// while keeping setup concise. Lower-level packages (search, webpage, watch,
// storage, server) compose into larger applications; see cmd/techwatch.
package techwatch

import (
	"context"

	"github.com/hadrienbr/techwatch/agents"
	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/core"
	"github.com/hadrienbr/techwatch/logging"
	"github.com/hadrienbr/techwatch/orchestrator"
)

// Options configures a TechWatch instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// MatchCutoff overrides the minimum similarity accepted when resolving
	// agent names from a generated plan.
	MatchCutoff float64
}

// TechWatch is the high-level façade aggregating the orchestrator and its
// agent registry.
type TechWatch struct {
	orch   *orchestrator.Orchestrator
	logger logging.Logger
}

// New creates a TechWatch bound to the given model backend.
func New(b backend.Backend, optFns ...func(o *Options)) *TechWatch {
	opts := Options{
		Logger:      logging.NoOpLogger{},
		MatchCutoff: orchestrator.DefaultMatchCutoff,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	orch := orchestrator.New(b, func(o *orchestrator.Options) {
		o.Logger = opts.Logger
		o.MatchCutoff = opts.MatchCutoff
	})

	return &TechWatch{orch: orch, logger: opts.Logger}
}

// RegisterAgent adds an agent to the underlying registry.
func (t *TechWatch) RegisterAgent(a core.Agent) { t.orch.Register(a) }

// Orchestrator exposes the underlying orchestrator for advanced use.
func (t *TechWatch) Orchestrator() *orchestrator.Orchestrator { return t.orch }

// Run plans and executes the workflow for a user query, returning the
// accumulated run context.
func (t *TechWatch) Run(ctx context.Context, userQuery string) (orchestrator.Context, error) {
	return t.orch.Run(ctx, userQuery)
}

// DefaultAgents constructs the built-in agent set against the given backend:
// document analysis, extraction, reasoning and validation.
func DefaultAgents(b backend.Backend, optFns ...func(o *agents.Options)) []core.Agent {
	return []core.Agent{
		agents.NewDocumentAnalysis(b, optFns...),
		agents.NewExtraction(b, optFns...),
		agents.NewReasoning(b, optFns...),
		agents.NewValidation(b, optFns...),
	}
}
