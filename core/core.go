package core

import (
	"context"
	"fmt"
)

// Agent is the uniform capability contract implemented by every task-handler.
// Implementations are stateless across invocations apart from an immutable
// reference to their language-model backend, and must catch every internal
// failure, returning it via Result's "error" key rather than panicking.
type Agent interface {
	// Name returns the unique registry key for this agent.
	Name() string

	// Description returns a human-readable summary used for UI display and
	// for inclusion in the planner prompt.
	Description() string

	// Process consumes the synthesized input payload and produces a result
	// mapping. It must never panic or otherwise let a failure escape.
	Process(ctx context.Context, in Input) Result
}

// Input is the superset payload the orchestrator hands to every agent.
// Different agent variants expect differently named fields for semantically
// the same "thing to work on"; rather than special-casing each variant, the
// orchestrator populates every slot and each agent reads only what it
// recognizes. Unread fields are simply ignored.
type Input struct {
	// Instruction is the step's instruction text from the plan.
	Instruction string

	// Context is the full accumulated run context so far.
	Context map[string]any

	// Text is the content to work on (document analysis, extraction).
	Text string

	// Content mirrors Text under the name validation-style agents read.
	Content string

	// Goal mirrors Instruction under the name reasoning-style agents read.
	Goal string

	// Fields lists the field names structured-extraction agents should pull.
	Fields []string

	// Criteria mirrors Instruction under the name validation agents read.
	Criteria string
}

// Missing reports which of the named required fields are absent from the
// input. Validation is advisory: agents log the gaps and proceed with the
// data they have (fail-soft), so the caller decides what, if anything, to do
// with the returned list.
func (in Input) Missing(fields ...string) []string {
	var missing []string

	for _, f := range fields {
		absent := false

		switch f {
		case "instruction":
			absent = in.Instruction == ""
		case "context":
			absent = len(in.Context) == 0
		case "text":
			absent = in.Text == ""
		case "content":
			absent = in.Content == ""
		case "goal":
			absent = in.Goal == ""
		case "fields":
			absent = len(in.Fields) == 0
		case "criteria":
			absent = in.Criteria == ""
		default:
			absent = true
		}

		if absent {
			missing = append(missing, f)
		}
	}

	return missing
}

// Result is the generic output mapping produced by an agent. A failed
// invocation is a normal Result carrying an "error" key; this keeps the
// orchestrator ignorant of per-agent failure modes.
type Result map[string]any

// Err returns the message under the "error" key, or "" when the result does
// not represent a failure.
func (r Result) Err() string {
	if r == nil {
		return ""
	}

	v, ok := r["error"]
	if !ok {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}

// Errorf builds a failure Result from a format string.
func Errorf(format string, args ...any) Result {
	return Result{"error": fmt.Sprintf(format, args...)}
}
