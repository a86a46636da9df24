package backend

import (
	"context"
	"fmt"
)

// Request captures a single generation call.
type Request struct {
	// Prompt is the user prompt.
	Prompt string

	// System is the optional system prompt.
	System string

	// JSONMode requests structured (JSON) output from the provider where
	// supported.
	JSONMode bool
}

// Backend is the minimal interface required to drive generation.
//
// Generate returns the produced text, or a transport error when the provider
// is unreachable or responds with a non-success status. A successful call
// with no content yields an empty string, not an error; callers that care
// must treat "" as a soft failure.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)

	// Available is a best-effort liveness probe. It swallows all errors and
	// returns false rather than propagating them.
	Available(ctx context.Context) bool
}

// Mock is a lightweight in-memory Backend useful for tests.
type Mock struct {
	responses map[string]string
	err       error

	// GenerateFunc, when set, handles the request outright. Useful for tests
	// that need to branch on the request shape.
	GenerateFunc func(ctx context.Context, req Request) (string, error)

	// Down makes Available report false.
	Down bool
}

// NewMock constructs an empty Mock.
func NewMock() *Mock {
	return &Mock{responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *Mock) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailWith makes every Generate call fail with err.
func (m *Mock) FailWith(err error) { m.err = err }

// Generate implements Backend.
func (m *Mock) Generate(ctx context.Context, req Request) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	if m.err != nil {
		return "", m.err
	}

	if resp, ok := m.responses[req.Prompt]; ok {
		return resp, nil
	}

	return fmt.Sprintf("Mock response to: %s", req.Prompt), nil
}

// Available implements Backend.
func (m *Mock) Available(_ context.Context) bool { return !m.Down }
