package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadrienbr/techwatch/backend"
)

func TestPlan_ParsesSteps(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("summarize then extract"), `{"steps": [
		{"agent": "DocumentAnalysisAgent", "instruction": "Summarize this text", "input_data": "USER_QUERY"},
		{"agent": "ExtractionAgent", "instruction": "Extract dates", "input_data": "PREVIOUS_RESULT"}
	]}`)

	o := New(mock)

	steps, err := o.Plan(context.Background(), "summarize then extract")
	require.NoError(t, err)

	require.Len(t, steps, 2)
	assert.Equal(t, Step{Agent: "DocumentAnalysisAgent", Instruction: "Summarize this text", InputData: InputUserQuery}, steps[0])
	assert.Equal(t, Step{Agent: "ExtractionAgent", Instruction: "Extract dates", InputData: InputPreviousResult}, steps[1])
}

func TestPlan_RequestsStructuredOutput(t *testing.T) {
	var captured backend.Request

	mock := backend.NewMock()
	mock.GenerateFunc = func(_ context.Context, req backend.Request) (string, error) {
		captured = req
		return `{"steps": []}`, nil
	}

	o := New(mock)

	_, err := o.Plan(context.Background(), "anything")
	require.NoError(t, err)

	assert.True(t, captured.JSONMode)
	assert.Contains(t, captured.System, "RESPONSE FORMAT")
}

func TestPlannerSystemPrompt_ListsRegisteredAgents(t *testing.T) {
	o := New(backend.NewMock())
	o.Register(&stubAgent{name: "DocumentAnalysisAgent", description: "Analyzes documents."})
	o.Register(&stubAgent{name: "ValidationAgent", description: "Checks quality."})

	prompt := o.plannerSystemPrompt()

	assert.Contains(t, prompt, "- DocumentAnalysisAgent: Analyzes documents.")
	assert.Contains(t, prompt, "- ValidationAgent: Checks quality.")
}
