// Package backend defines the provider-agnostic language-model contract the
// orchestrator and agents generate against.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Express structured-output (JSON) mode as a request flag so providers
//     map it to their native mechanism
//   - Facilitate lightweight mocking for tests (Mock)
//
// Providers (Ollama, OpenAI, Anthropic) implement the Backend interface from
// this package so higher layers remain decoupled from vendor SDKs.
package backend
