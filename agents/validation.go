package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/core"
)

// Validation checks content quality against criteria.
//
// Reads: Content, Criteria.
// Returns: the model's JSON object, expected to carry "is_valid" (bool) and
// "feedback" (string).
type Validation struct {
	baseAgent
}

// NewValidation constructs the validation agent.
func NewValidation(b backend.Backend, optFns ...func(o *Options)) *Validation {
	return &Validation{
		baseAgent: newBaseAgent(
			"ValidationAgent",
			"Validates content against quality criteria and checks for hallucinations or format errors.",
			b,
			optFns...,
		),
	}
}

// Process implements core.Agent.
func (a *Validation) Process(ctx context.Context, in core.Input) core.Result {
	a.warnMissing(in, "content", "criteria")

	a.logger.Info("validating content", "agent", a.name, "criteria", in.Criteria)

	system := "You are a Quality Control Agent.\n" +
		"Evaluate the content against the criteria.\n" +
		"Return a JSON object with 'is_valid' (boolean) and 'feedback' (string)."

	prompt := fmt.Sprintf("Criteria: %s\n\nContent:\n%s", in.Criteria, in.Content)

	resp, err := a.backend.Generate(ctx, backend.Request{Prompt: prompt, System: system, JSONMode: true})
	if err != nil {
		a.logger.Error("validation failed", "error", err)
		return core.Errorf("validation failed: %v", err)
	}

	var result core.Result
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		a.logger.Error("validation returned malformed JSON", "error", err)
		return core.Errorf("validation failed: %v", err)
	}

	return result
}
