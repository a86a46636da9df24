package agents

import (
	"context"
	"fmt"

	"github.com/hadrienbr/techwatch/backend"
	"github.com/hadrienbr/techwatch/core"
)

// maxAnalysisChars bounds the document excerpt embedded in the prompt.
const maxAnalysisChars = 10000

// DocumentAnalysis summarizes or analyzes text documents.
//
// Reads: Text (the document), Instruction (optional specific task; defaults
// to summarization).
// Returns: "analysis" (string).
type DocumentAnalysis struct {
	baseAgent
}

// NewDocumentAnalysis constructs the document-analysis agent.
func NewDocumentAnalysis(b backend.Backend, optFns ...func(o *Options)) *DocumentAnalysis {
	return &DocumentAnalysis{
		baseAgent: newBaseAgent(
			"DocumentAnalysisAgent",
			"Analyzes text documents to provide summaries and extract key topics.",
			b,
			optFns...,
		),
	}
}

// Process implements core.Agent.
func (a *DocumentAnalysis) Process(ctx context.Context, in core.Input) core.Result {
	a.warnMissing(in, "text")

	excerpt := truncate(in.Text, maxAnalysisChars)

	var prompt string
	if in.Instruction == "" {
		prompt = fmt.Sprintf("Please provide a concise summary of the following document:\n\n%s", excerpt)
	} else {
		prompt = fmt.Sprintf("Analyze the following document based on this instruction: %s\n\nDocument:\n%s", in.Instruction, excerpt)
	}

	a.logger.Info("processing document analysis", "agent", a.name, "instruction", in.Instruction)

	resp, err := a.backend.Generate(ctx, backend.Request{Prompt: prompt})
	if err != nil {
		a.logger.Error("analysis failed", "error", err)
		return core.Errorf("analysis failed: %v", err)
	}

	return core.Result{"analysis": resp}
}
