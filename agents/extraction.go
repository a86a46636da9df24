package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/core"
)

// maxExtractionChars bounds the source text embedded in the prompt.
const maxExtractionChars = 8000

// Extraction pulls structured data out of unstructured text.
//
// Reads: Text (the source), Fields (names to extract).
// Returns: "extracted_data" (object). A response the model failed to keep as
// valid JSON comes back with an empty object, the raw response and an
// "error" entry.
type Extraction struct {
	baseAgent
}

// NewExtraction constructs the structured-extraction agent.
func NewExtraction(b backend.Backend, optFns ...func(o *Options)) *Extraction {
	return &Extraction{
		baseAgent: newBaseAgent(
			"ExtractionAgent",
			"Extracts structured JSON data from text based on a given schema or instruction.",
			b,
			optFns...,
		),
	}
}

// Process implements core.Agent.
func (a *Extraction) Process(ctx context.Context, in core.Input) core.Result {
	a.warnMissing(in, "text", "fields")

	a.logger.Info("extracting fields", "agent", a.name, "fields", in.Fields)

	system := "You are a precise data extraction agent.\n" +
		fmt.Sprintf("Extract the following fields: %s.\n", strings.Join(in.Fields, ", ")) +
		"Return ONLY a valid JSON object."

	prompt := fmt.Sprintf("Source Text:\n%s", truncate(in.Text, maxExtractionChars))

	resp, err := a.backend.Generate(ctx, backend.Request{Prompt: prompt, System: system, JSONMode: true})
	if err != nil {
		a.logger.Error("extraction failed", "error", err)
		return core.Errorf("extraction failed: %v", err)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(resp), &data); err != nil {
		// The backend did not enforce JSON output perfectly; hand the raw
		// response back instead of dropping it.
		a.logger.Warn("failed to parse extraction response as JSON, returning raw response")
		return core.Result{
			"extracted_data": map[string]any{},
			"raw_response":   resp,
			"error":          "JSON decode error",
		}
	}

	return core.Result{"extracted_data": data}
}
