package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hadrienbr/techwatch/backend"
)

// Input-source markers the planner may attach to a step.
const (
	// InputUserQuery makes a step consume the original user query.
	InputUserQuery = "USER_QUERY"

	// InputPreviousResult makes a step consume the preceding step's output.
	InputPreviousResult = "PREVIOUS_RESULT"
)

// Step is one planned invocation: target agent name, instruction text and
// input source marker. Fields may be absent in model output; zero values
// apply (an empty InputData behaves like InputPreviousResult).
type Step struct {
	Agent       string `json:"agent"`
	Instruction string `json:"instruction"`
	InputData   string `json:"input_data"`
}

// plan is the JSON shape the planner prompt asks the model to emit.
type plan struct {
	Steps []Step `json:"steps"`
}

// Plan asks the backend to decompose the user query into an ordered list of
// steps. A transport failure or unparseable response is a planning error; a
// parsed object without a "steps" key is treated as an empty plan rather
// than an error.
func (o *Orchestrator) Plan(ctx context.Context, userQuery string) ([]Step, error) {
	resp, err := o.backend.Generate(ctx, backend.Request{
		Prompt:   fmt.Sprintf("User Query: %s\n\nCreate a simple plan.", userQuery),
		System:   o.plannerSystemPrompt(),
		JSONMode: true,
	})
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(resp) == "" {
		return nil, fmt.Errorf("backend returned empty plan")
	}

	var p plan
	if err := json.Unmarshal([]byte(resp), &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}

	return p.Steps, nil
}

// plannerSystemPrompt lists every registered agent with its description,
// states the usage guidelines, and pins the required JSON output shape.
func (o *Orchestrator) plannerSystemPrompt() string {
	var agents strings.Builder
	for _, name := range o.order {
		fmt.Fprintf(&agents, "- %s: %s\n", name, o.agents[name].Description())
	}

	return "You are the Orchestrator. Plan the steps to solve the user query.\n" +
		"Usage Guidelines:\n" +
		"1. Use 'DocumentAnalysisAgent' to summarize or understand text.\n" +
		"2. Use 'ReasoningAgent' to make a plan or decision.\n" +
		"3. Use 'ExtractionAgent' to get specific JSON fields.\n" +
		"4. Use 'ValidationAgent' to check quality.\n\n" +
		"Available Agents:\n" + agents.String() + "\n" +
		"RESPONSE FORMAT: JSON list of steps.\n" +
		"Example:\n" +
		`{"steps": [` + "\n" +
		`  {"agent": "DocumentAnalysisAgent", "instruction": "Summarize this text", "input_data": "USER_QUERY"},` + "\n" +
		`  {"agent": "ExtractionAgent", "instruction": "Extract dates", "input_data": "PREVIOUS_RESULT"}` + "\n" +
		`]}`
}
