package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/core"
	"github.com/hadrienbr/techwatch/logging"
)

// DefaultMatchCutoff is the minimum similarity ratio at which a fuzzy
// candidate is accepted during resolution. Empirically tuned; override via
// Options if the registry carries unusually close names.
const DefaultMatchCutoff = 0.6

// ErrPlanningFailed wraps every plan-generation failure returned by Run.
// Planning is the one failure that is fatal to a run.
var ErrPlanningFailed = errors.New("planning failed")

// defaultExtractionFields is supplied to extraction-style agents when the
// plan does not say what to pull.
var defaultExtractionFields = []string{"summary", "entities"}

// Context is the accumulating run state and the run's final output: the
// original query, every step's result keyed by index, every step's resolved
// agent name, every step's error (if any), and the latest result per agent
// name. Keys are append-only during a run except the per-agent slot, which
// always reflects that agent's most recent result. Each run owns its Context
// exclusively; the registry underneath is shared read-only.
type Context map[string]any

// Options configures an Orchestrator.
type Options struct {
	Logger logging.Logger

	// Similarity scores candidate names during fuzzy resolution. Defaults to
	// Ratio; swappable since the metric is a tuning knob, not a structural
	// invariant.
	Similarity func(a, b string) float64

	// MatchCutoff is the minimum Similarity score accepted during fuzzy
	// resolution.
	MatchCutoff float64
}

// Orchestrator owns the agent registry, plan generation and the step
// execution loop. Register all agents before the first Run; afterwards the
// registry is a read-only lookup table safely shared across concurrent runs.
type Orchestrator struct {
	agents  map[string]core.Agent
	order   []string // registration order, for deterministic prompts and resolution
	backend backend.Backend
	logger  logging.Logger

	similarity func(a, b string) float64
	cutoff     float64
}

// New creates an Orchestrator bound to the given backend.
func New(b backend.Backend, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger:      logging.NoOpLogger{},
		Similarity:  Ratio,
		MatchCutoff: DefaultMatchCutoff,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Orchestrator{
		agents:     make(map[string]core.Agent),
		backend:    b,
		logger:     opts.Logger,
		similarity: opts.Similarity,
		cutoff:     opts.MatchCutoff,
	}
}

// Register adds an agent keyed by its declared name. Re-registering a name
// overwrites the prior entry (last write wins), enabling hot-swap of an
// implementation during setup.
func (o *Orchestrator) Register(a core.Agent) {
	name := a.Name()
	if _, exists := o.agents[name]; !exists {
		o.order = append(o.order, name)
	}
	o.agents[name] = a

	o.logger.Info("agent registered", "name", name, "description", a.Description())
}

// Agents returns the registered agents in registration order.
func (o *Orchestrator) Agents() []core.Agent {
	out := make([]core.Agent, 0, len(o.order))
	for _, name := range o.order {
		out = append(out, o.agents[name])
	}
	return out
}

// Resolve looks an agent up by name: exact match first, then the best fuzzy
// candidate above the cutoff. The planner output is model-generated and may
// hallucinate slightly misspelled names; exact-match-or-nothing would make
// the system brittle to that class of error. Resolution over a fixed
// registry is deterministic: ties keep the earliest-registered candidate.
func (o *Orchestrator) Resolve(name string) (core.Agent, bool) {
	if a, ok := o.agents[name]; ok {
		return a, true
	}

	var (
		best      string
		bestScore float64
	)
	for _, candidate := range o.order {
		if score := o.similarity(name, candidate); score > bestScore {
			best, bestScore = candidate, score
		}
	}

	if bestScore < o.cutoff {
		return nil, false
	}

	o.logger.Warn("agent not found, using fuzzy match", "requested", name, "matched", best, "score", bestScore)

	return o.agents[best], true
}

// Run executes the full workflow for a user query: plan, then the strictly
// sequential step loop. It returns the accumulated Context. A planning
// failure is returned as an error wrapping ErrPlanningFailed and no step
// executes; every other failure is recorded inside the Context and the run
// continues with the next step.
func (o *Orchestrator) Run(ctx context.Context, userQuery string) (Context, error) {
	o.logger.Info("starting run", "query", userQuery)

	steps, err := o.Plan(ctx, userQuery)
	if err != nil {
		o.logger.Error("failed to plan run", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPlanningFailed, err)
	}

	o.logger.Info("plan created", "steps", len(steps))

	runCtx := Context{"original_query": userQuery}

	var lastResult any = userQuery

	for i, step := range steps {
		o.logger.Info("executing step", "step", i, "agent", step.Agent, "instruction", step.Instruction)

		agent, ok := o.Resolve(step.Agent)
		if !ok {
			o.logger.Error("agent not found", "name", step.Agent)
			runCtx[stepKey(i, "error")] = fmt.Sprintf("Agent %s not found", step.Agent)
			continue
		}

		in := o.synthesizeInput(agent, step, userQuery, lastResult, runCtx)

		result, err := o.invoke(ctx, agent, in)
		if err != nil {
			// Agents are contract-bound to contain their own failures, so this
			// is a defensive backstop for anything that escapes anyway.
			o.logger.Error("step execution failed", "step", i, "error", err)
			runCtx[stepKey(i, "error")] = err.Error()
			continue
		}

		runCtx[stepKey(i, "result")] = result
		runCtx[stepKey(i, "agent")] = agent.Name()
		runCtx[agent.Name()] = result

		lastResult = result
	}

	return runCtx, nil
}

// synthesizeInput builds the superset payload for a step. Every generic slot
// is populated regardless of which the target agent reads; the capability
// contract tolerates extra fields.
func (o *Orchestrator) synthesizeInput(agent core.Agent, step Step, userQuery string, lastResult any, runCtx Context) core.Input {
	content := contentToProcess(step, userQuery, lastResult)

	in := core.Input{
		Instruction: step.Instruction,
		Context:     runCtx,
		Text:        content,
		Content:     content,
		Goal:        step.Instruction,
		Criteria:    step.Instruction,
	}

	if strings.Contains(agent.Name(), "Extraction") {
		in.Fields = defaultExtractionFields
	}

	return in
}

// contentToProcess derives the string a step should work on. USER_QUERY pins
// the original query; otherwise mapping results prefer their "analysis"
// value, then the JSON form of "extracted_data", then the generic string
// form of the whole mapping.
func contentToProcess(step Step, userQuery string, lastResult any) string {
	if step.InputData == InputUserQuery {
		return userQuery
	}

	if m := asMap(lastResult); m != nil {
		content := fmt.Sprintf("%v", m)
		if v, ok := m["analysis"]; ok {
			content = fmt.Sprintf("%v", v)
		}
		if v, ok := m["extracted_data"]; ok {
			if raw, err := json.Marshal(v); err == nil {
				content = string(raw)
			}
		}
		return content
	}

	if s, ok := lastResult.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", lastResult)
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case core.Result:
		return m
	case map[string]any:
		return m
	default:
		return nil
	}
}

// invoke calls the agent, converting a panic into an error so a misbehaving
// agent cannot abort the run.
func (o *Orchestrator) invoke(ctx context.Context, agent core.Agent, in core.Input) (result core.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent %s panicked: %v", agent.Name(), r)
		}
	}()

	return agent.Process(ctx, in), nil
}

func stepKey(i int, suffix string) string {
	return fmt.Sprintf("step_%d_%s", i, suffix)
}
