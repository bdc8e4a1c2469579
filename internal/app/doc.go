// Package app bootstraps apprepo.
//
// NewApplication initializes logging, loads the configuration, connects to
// the selected cluster and wires the reconciliation engine to its emitters:
// the state store the CLI renders, a recorder of recent events, the
// structured log, and (when enabled) Kubernetes Events on the repositories.
package app
