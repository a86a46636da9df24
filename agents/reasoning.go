package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/core"
)

// Reasoning performs logical breakdowns and planning.
//
// Reads: Context (the accumulated run state), Goal.
// Returns: the model's JSON object, expected to carry "thought_process"
// (string) and "steps" (list of strings).
type Reasoning struct {
	baseAgent
}

// NewReasoning constructs the reasoning agent.
func NewReasoning(b backend.Backend, optFns ...func(o *Options)) *Reasoning {
	return &Reasoning{
		baseAgent: newBaseAgent(
			"ReasoningAgent",
			"Performs logical reasoning, breaks down complex problems into steps, and creates execution plans.",
			b,
			optFns...,
		),
	}
}

// Process implements core.Agent.
func (a *Reasoning) Process(ctx context.Context, in core.Input) core.Result {
	a.warnMissing(in, "context", "goal")

	a.logger.Info("reasoning about goal", "agent", a.name, "goal", in.Goal)

	system := "You are a Senior Reasoning Engine.\n" +
		"Analyze the context and goal.\n" +
		"Provide a logical breakdown and a step-by-step plan.\n" +
		"Return JSON with 'thought_process' (string) and 'steps' (list of strings)."

	contextJSON, err := json.Marshal(in.Context)
	if err != nil {
		contextJSON = []byte(fmt.Sprintf("%v", in.Context))
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nGoal:\n%s", contextJSON, in.Goal)

	resp, err := a.backend.Generate(ctx, backend.Request{Prompt: prompt, System: system, JSONMode: true})
	if err != nil {
		a.logger.Error("reasoning failed", "error", err)
		return core.Errorf("reasoning failed: %v", err)
	}

	var result core.Result
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		a.logger.Error("reasoning returned malformed JSON", "error", err)
		return core.Errorf("reasoning failed: %v", err)
	}

	return result
}
