// Package agents provides the concrete task-handlers driven by the
// orchestrator: document analysis, structured extraction, reasoning and
// validation. Variants differ only in which input fields they read, the
// instruction text they send to the backend, and whether they request
// structured (JSON) output; the orchestrator interacts with all of them
// through the identical core.Agent contract.
package agents
