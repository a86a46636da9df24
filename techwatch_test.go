package techwatch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadrienbr/techwatch/backend"
)

func TestDefaultAgents(t *testing.T) {
	mock := backend.NewMock()

	registered := DefaultAgents(mock)

	require.Len(t, registered, 4)
	names := make([]string, 0, len(registered))
	for _, a := range registered {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"DocumentAnalysisAgent", "ExtractionAgent", "ReasoningAgent", "ValidationAgent"}, names)
}

func TestRun_EndToEnd(t *testing.T) {
	mock := backend.NewMock()
	mock.GenerateFunc = func(_ context.Context, req backend.Request) (string, error) {
		if strings.HasPrefix(req.Prompt, "User Query:") {
			return `{"steps": [{"agent": "DocumentAnalysisAgent", "instruction": "Summarize the topic", "input_data": "USER_QUERY"}]}`, nil
		}
		return "A short summary.", nil
	}

	tw := New(mock)
	for _, a := range DefaultAgents(mock) {
		tw.RegisterAgent(a)
	}

	result, err := tw.Run(context.Background(), "what changed in NLP this year")
	require.NoError(t, err)

	assert.Equal(t, "what changed in NLP this year", result["original_query"])
	assert.Equal(t, "DocumentAnalysisAgent", result["step_0_agent"])
	assert.Contains(t, result, "step_0_result")
}

func TestRun_PlanningFailure(t *testing.T) {
	mock := backend.NewMock()
	mock.GenerateFunc = func(_ context.Context, _ backend.Request) (string, error) {
		return "```not json```", nil
	}

	tw := New(mock)

	_, err := tw.Run(context.Background(), "anything")

	assert.Error(t, err)
}
