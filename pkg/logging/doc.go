// Package logging provides the structured logging used across apprepo.
//
// It is a thin layer over Go's log/slog package. Every entry is tagged with a
// subsystem so output from the engine, the cluster clients, and the CLI can be
// told apart:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Bootstrap", "Loaded configuration from %s", path)
//	logging.Debug("Reconciler", "Listing repositories in %s/%s", cluster, namespace)
//	logging.Error("helmrepo", err, "Failed to fetch index for %s", url)
//
// InitForCLI also installs the handler as the controller-runtime logger, so
// messages emitted by the Kubernetes client libraries use the same format and
// level filtering.
package logging
