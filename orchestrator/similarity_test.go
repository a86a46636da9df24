package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio_Identical(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("ReasoningAgent", "ReasoningAgent"))
	assert.Equal(t, 1.0, Ratio("", ""))
}

func TestRatio_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("", "ReasoningAgent"))
	assert.Equal(t, 0.0, Ratio("ReasoningAgent", ""))
}

func TestRatio_CloseMisspellings(t *testing.T) {
	// The kind of near-miss a model plan produces.
	assert.Greater(t, Ratio("ReasonningAgent", "ReasoningAgent"), 0.6)
	assert.Greater(t, Ratio("ExtractoinAgent", "ExtractionAgent"), 0.6)
	assert.Greater(t, Ratio("DocAnalysisAgent", "DocumentAnalysisAgent"), 0.6)
}

func TestRatio_Unrelated(t *testing.T) {
	assert.Less(t, Ratio("WeatherAgent", "ValidationAgent"), 0.6)
	assert.Less(t, Ratio("xyz", "DocumentAnalysisAgent"), 0.6)
}

func TestRatio_Symmetric(t *testing.T) {
	a, b := "ExtractionAgent", "ValidationAgent"

	assert.InDelta(t, Ratio(a, b), Ratio(b, a), 1e-9)
}
