package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadrienbr/techwatch/agents"
	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/core"
)

// stubAgent is a minimal core.Agent for loop-behavior tests.
type stubAgent struct {
	name        string
	description string
	processFn   func(ctx context.Context, in core.Input) core.Result
}

func (s *stubAgent) Name() string        { return s.name }
func (s *stubAgent) Description() string { return s.description }

func (s *stubAgent) Process(ctx context.Context, in core.Input) core.Result {
	if s.processFn == nil {
		return core.Result{"done": true}
	}
	return s.processFn(ctx, in)
}

// plannerPrompt mirrors the prompt Plan sends so tests can can a response.
func plannerPrompt(query string) string {
	return fmt.Sprintf("User Query: %s\n\nCreate a simple plan.", query)
}

func TestRegister_LastWriteWins(t *testing.T) {
	o := New(backend.NewMock())

	first := &stubAgent{name: "ReasoningAgent", description: "v1"}
	second := &stubAgent{name: "ReasoningAgent", description: "v2"}

	o.Register(first)
	o.Register(second)

	got, ok := o.Resolve("ReasoningAgent")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Len(t, o.Agents(), 1)
}

func TestResolve_ExactSkipsFuzzyMatching(t *testing.T) {
	calls := 0

	o := New(backend.NewMock(), func(opts *Options) {
		opts.Similarity = func(a, b string) float64 {
			calls++
			return Ratio(a, b)
		}
	})
	o.Register(&stubAgent{name: "ValidationAgent"})

	got, ok := o.Resolve("ValidationAgent")

	require.True(t, ok)
	assert.Equal(t, "ValidationAgent", got.Name())
	assert.Zero(t, calls)
}

func TestResolve_FuzzyMatch(t *testing.T) {
	o := New(backend.NewMock())
	o.Register(&stubAgent{name: "DocumentAnalysisAgent"})
	o.Register(&stubAgent{name: "ReasoningAgent"})

	got, ok := o.Resolve("ReasonningAgent")

	require.True(t, ok)
	assert.Equal(t, "ReasoningAgent", got.Name())
}

func TestResolve_NoCloseCandidate(t *testing.T) {
	o := New(backend.NewMock())
	o.Register(&stubAgent{name: "DocumentAnalysisAgent"})
	o.Register(&stubAgent{name: "ExtractionAgent"})

	_, ok := o.Resolve("WeatherForecastAgent")

	assert.False(t, ok)
}

func TestResolve_Idempotent(t *testing.T) {
	o := New(backend.NewMock())
	o.Register(&stubAgent{name: "ExtractionAgent"})
	o.Register(&stubAgent{name: "ValidationAgent"})

	first, ok1 := o.Resolve("ExtractoinAgent")
	second, ok2 := o.Resolve("ExtractoinAgent")

	require.True(t, ok1)
	require.True(t, ok2)
	assert.Same(t, first, second)

	_, miss1 := o.Resolve("nothing-like-it")
	_, miss2 := o.Resolve("nothing-like-it")
	assert.False(t, miss1)
	assert.False(t, miss2)
}

func TestRun_EmptyPlan(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("hello"), `{"steps": []}`)

	o := New(mock)

	runCtx, err := o.Run(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, Context{"original_query": "hello"}, runCtx)
}

func TestRun_MissingStepsKeyYieldsEmptyPlan(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("hello"), `{"notes": "no steps here"}`)

	o := New(mock)

	runCtx, err := o.Run(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, Context{"original_query": "hello"}, runCtx)
}

func TestRun_PlanningFailure_MalformedJSON(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("hello"), "I am not JSON")

	o := New(mock)

	runCtx, err := o.Run(context.Background(), "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanningFailed)
	assert.Nil(t, runCtx)
}

func TestRun_PlanningFailure_Transport(t *testing.T) {
	mock := backend.NewMock()
	mock.FailWith(errors.New("connection refused"))

	o := New(mock)

	_, err := o.Run(context.Background(), "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanningFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRun_PlanningFailure_EmptyResponse(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("hello"), "  ")

	o := New(mock)

	_, err := o.Run(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrPlanningFailed)
}

func TestRun_SingleAnalysisStep(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(
		plannerPrompt("Explain transformers"),
		`{"steps": [{"agent": "DocumentAnalysisAgent", "instruction": "Summarize", "input_data": "USER_QUERY"}]}`,
	)

	o := New(mock)
	o.Register(agents.NewDocumentAnalysis(mock))
	o.Register(agents.NewExtraction(mock))

	runCtx, err := o.Run(context.Background(), "Explain transformers")
	require.NoError(t, err)

	require.NotContains(t, runCtx, "step_0_error")
	require.Contains(t, runCtx, "step_0_result")

	result, ok := runCtx["step_0_result"].(core.Result)
	require.True(t, ok)
	analysis, ok := result["analysis"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, analysis)

	assert.Equal(t, "DocumentAnalysisAgent", runCtx["step_0_agent"])
	assert.Equal(t, result, runCtx["DocumentAnalysisAgent"])
	assert.Equal(t, "Explain transformers", runCtx["original_query"])
}

func TestRun_MisspelledAgentResolvesAndExecutes(t *testing.T) {
	mock := backend.NewMock()
	mock.GenerateFunc = func(_ context.Context, req backend.Request) (string, error) {
		if strings.HasPrefix(req.Prompt, "User Query:") {
			return `{"steps": [{"agent": "ExtractoinAgent", "instruction": "Extract dates", "input_data": "USER_QUERY"}]}`, nil
		}
		return `{"dates": ["2026-01-01"]}`, nil
	}

	o := New(mock)
	o.Register(agents.NewDocumentAnalysis(mock))
	o.Register(agents.NewExtraction(mock))

	runCtx, err := o.Run(context.Background(), "When did it happen?")
	require.NoError(t, err)

	assert.Equal(t, "ExtractionAgent", runCtx["step_0_agent"])
	assert.NotContains(t, runCtx, "step_0_error")

	result, ok := runCtx["step_0_result"].(core.Result)
	require.True(t, ok)
	assert.Contains(t, result, "extracted_data")
}

func TestRun_ResolutionFailureIsIsolatedPerStep(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("q"), `{"steps": [
		{"agent": "FirstAgent", "instruction": "a", "input_data": "USER_QUERY"},
		{"agent": "NoSuchAgentAnywhere", "instruction": "b", "input_data": "PREVIOUS_RESULT"},
		{"agent": "ThirdAgent", "instruction": "c", "input_data": "USER_QUERY"}
	]}`)

	o := New(mock)
	o.Register(&stubAgent{name: "FirstAgent"})
	o.Register(&stubAgent{name: "ThirdAgent"})

	runCtx, err := o.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Contains(t, runCtx, "step_0_result")
	assert.Contains(t, runCtx, "step_1_error")
	assert.NotContains(t, runCtx, "step_1_result")
	assert.Contains(t, runCtx, "step_2_result")
}

func TestRun_PreviousResultPrefersExtractedData(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("q"), `{"steps": [
		{"agent": "ProducerAgent", "instruction": "produce", "input_data": "USER_QUERY"},
		{"agent": "ConsumerAgent", "instruction": "consume", "input_data": "PREVIOUS_RESULT"}
	]}`)

	producer := &stubAgent{
		name: "ProducerAgent",
		processFn: func(_ context.Context, _ core.Input) core.Result {
			return core.Result{"extracted_data": map[string]any{"dates": []string{"2026-01-01"}}}
		},
	}

	var captured core.Input
	consumer := &stubAgent{
		name: "ConsumerAgent",
		processFn: func(_ context.Context, in core.Input) core.Result {
			captured = in
			return core.Result{"done": true}
		},
	}

	o := New(mock)
	o.Register(producer)
	o.Register(consumer)

	_, err := o.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.JSONEq(t, `{"dates": ["2026-01-01"]}`, captured.Text)
	assert.Equal(t, captured.Text, captured.Content)
}

func TestRun_PreviousResultPrefersAnalysis(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("q"), `{"steps": [
		{"agent": "ProducerAgent", "instruction": "produce", "input_data": "USER_QUERY"},
		{"agent": "ConsumerAgent", "instruction": "consume", "input_data": "PREVIOUS_RESULT"}
	]}`)

	producer := &stubAgent{
		name: "ProducerAgent",
		processFn: func(_ context.Context, _ core.Input) core.Result {
			return core.Result{"analysis": "the summary"}
		},
	}

	var captured core.Input
	consumer := &stubAgent{
		name: "ConsumerAgent",
		processFn: func(_ context.Context, in core.Input) core.Result {
			captured = in
			return core.Result{"done": true}
		},
	}

	o := New(mock)
	o.Register(producer)
	o.Register(consumer)

	_, err := o.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, "the summary", captured.Text)
}

func TestRun_FirstStepDefaultsToUserQuery(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("the query"), `{"steps": [
		{"agent": "ConsumerAgent", "instruction": "consume", "input_data": "PREVIOUS_RESULT"}
	]}`)

	var captured core.Input
	o := New(mock)
	o.Register(&stubAgent{
		name: "ConsumerAgent",
		processFn: func(_ context.Context, in core.Input) core.Result {
			captured = in
			return core.Result{"done": true}
		},
	})

	_, err := o.Run(context.Background(), "the query")
	require.NoError(t, err)

	// No previous result exists yet, so the query itself flows through.
	assert.Equal(t, "the query", captured.Text)
}

func TestRun_ExtractionAgentGetsDefaultFields(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("q"), `{"steps": [
		{"agent": "MyExtractionAgent", "instruction": "pull", "input_data": "USER_QUERY"},
		{"agent": "PlainAgent", "instruction": "other", "input_data": "USER_QUERY"}
	]}`)

	var extractionIn, plainIn core.Input
	o := New(mock)
	o.Register(&stubAgent{
		name: "MyExtractionAgent",
		processFn: func(_ context.Context, in core.Input) core.Result {
			extractionIn = in
			return core.Result{"done": true}
		},
	})
	o.Register(&stubAgent{
		name: "PlainAgent",
		processFn: func(_ context.Context, in core.Input) core.Result {
			plainIn = in
			return core.Result{"done": true}
		},
	})

	_, err := o.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, []string{"summary", "entities"}, extractionIn.Fields)
	assert.Empty(t, plainIn.Fields)
}

func TestRun_PanicIsConfinedToStep(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("q"), `{"steps": [
		{"agent": "PanickyAgent", "instruction": "boom", "input_data": "USER_QUERY"},
		{"agent": "SteadyAgent", "instruction": "carry on", "input_data": "USER_QUERY"}
	]}`)

	o := New(mock)
	o.Register(&stubAgent{
		name: "PanickyAgent",
		processFn: func(_ context.Context, _ core.Input) core.Result {
			panic("unexpected")
		},
	})
	o.Register(&stubAgent{name: "SteadyAgent"})

	runCtx, err := o.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Contains(t, runCtx, "step_0_error")
	assert.Contains(t, runCtx["step_0_error"], "panicked")
	assert.Contains(t, runCtx, "step_1_result")
}

func TestRun_LatestResultPerAgentIsOverwritten(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("q"), `{"steps": [
		{"agent": "RepeatAgent", "instruction": "first", "input_data": "USER_QUERY"},
		{"agent": "RepeatAgent", "instruction": "second", "input_data": "PREVIOUS_RESULT"}
	]}`)

	call := 0
	o := New(mock)
	o.Register(&stubAgent{
		name: "RepeatAgent",
		processFn: func(_ context.Context, _ core.Input) core.Result {
			call++
			return core.Result{"call": call}
		},
	})

	runCtx, err := o.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, core.Result{"call": 1}, runCtx["step_0_result"])
	assert.Equal(t, core.Result{"call": 2}, runCtx["step_1_result"])
	assert.Equal(t, core.Result{"call": 2}, runCtx["RepeatAgent"])
}

func TestRun_AgentErrorResultIsStillARecordedResult(t *testing.T) {
	mock := backend.NewMock()
	mock.AddResponse(plannerPrompt("q"), `{"steps": [
		{"agent": "FailingAgent", "instruction": "try", "input_data": "USER_QUERY"}
	]}`)

	o := New(mock)
	o.Register(&stubAgent{
		name: "FailingAgent",
		processFn: func(_ context.Context, _ core.Input) core.Result {
			return core.Errorf("backend unavailable")
		},
	})

	runCtx, err := o.Run(context.Background(), "q")
	require.NoError(t, err)

	// A contained agent failure is a normal result carrying an error key,
	// not a step error.
	assert.NotContains(t, runCtx, "step_0_error")
	result := runCtx["step_0_result"].(core.Result)
	assert.Equal(t, "backend unavailable", result.Err())
}
