// Package events carries the lifecycle notifications of the reconciliation
// engine.
//
// Every engine operation emits a Started event followed by exactly one
// Succeeded (with its payload) or Failed (with a classified error and an
// operation kind). Consumers implement Emitter:
//
//   - Recorder keeps the most recent events in a ring buffer
//   - LogEmitter writes them to the structured log
//   - EventGenerator records terminal events about a named repository as
//     Kubernetes Events, with messages rendered from sprig templates
//
// Multi combines several emitters.
package events
