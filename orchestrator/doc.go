// Package orchestrator implements the coordination engine: it owns the agent
// registry, derives an execution plan from a natural-language request via a
// model-generated JSON plan, resolves each planned step to a concrete agent
// (exact or fuzzy name match), synthesizes that agent's input payload from
// accumulated context, invokes it, and folds the result back into context for
// subsequent steps.
//
// Failure isolation policy: planning failure is fatal to a run (without a
// plan there is nothing to execute); every other failure — resolution miss,
// agent-internal error, even a panic escaping an agent — is confined to its
// step, recorded in the run context, and execution continues. The final
// context always carries enough per-step information to reconstruct what
// succeeded and what did not.
package orchestrator
