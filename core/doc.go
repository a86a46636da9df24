// Package core defines the foundational contract shared by every task-handler
// ("agent") in the system:
//
//   - Agent: the uniform process contract the orchestrator drives
//   - Input: the superset payload the orchestrator synthesizes per step
//   - Result: the generic output mapping, with error-by-key convention
//
// Agents never let an internal failure escape Process; failures come back as
// a Result carrying an "error" key so callers can branch without typed
// exceptions. Input validation is advisory: agents report missing fields and
// keep going with whatever is present, degrading output quality instead of
// aborting the pipeline.
package core
