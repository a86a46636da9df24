package agents

import (
	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/core"
	"github.com/hadrienbr/techwatch/logging"
)

// Options configures agent construction.
type Options struct {
	Logger logging.Logger
}

// baseAgent bundles identity and the immutable backend reference shared by
// every variant. Embed it and supply Process.
type baseAgent struct {
	name        string
	description string
	backend     backend.Backend
	logger      logging.Logger
}

func newBaseAgent(name, description string, b backend.Backend, optFns ...func(o *Options)) baseAgent {
	opts := Options{Logger: logging.NoOpLogger{}}

	for _, fn := range optFns {
		fn(&opts)
	}

	return baseAgent{
		name:        name,
		description: description,
		backend:     b,
		logger:      opts.Logger,
	}
}

// Name returns the unique registry key for this agent.
func (a *baseAgent) Name() string { return a.name }

// Description returns a human-readable summary of the agent's purpose.
func (a *baseAgent) Description() string { return a.description }

// warnMissing performs the advisory input check: absent required fields are
// logged and execution proceeds with whatever data is present.
func (a *baseAgent) warnMissing(in core.Input, fields ...string) {
	if missing := in.Missing(fields...); len(missing) > 0 {
		a.logger.Warn("missing required inputs, proceeding with available data", "agent", a.name, "missing", missing)
	}
}

// truncate caps s at n runes. Step content can be an entire scraped article
// or PDF; prompts stay bounded.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
