package reconciler

import (
	"context"

	"apprepo/internal/api"
)

const (
	// DefaultResyncConcurrency bounds ResyncAllRepositories when no limit is configured.
	DefaultResyncConcurrency = 8
)

// Config holds the engine settings.
type Config struct {
	// GlobalNamespace holds the repositories shared with every namespace.
	GlobalNamespace string

	// ResyncConcurrency is the number of resyncs ResyncAllRepositories runs at once.
	ResyncConcurrency int
}

func (c Config) withDefaults() Config {
	if c.GlobalNamespace == "" {
		c.GlobalNamespace = api.DefaultGlobalNamespace
	}
	if c.ResyncConcurrency <= 0 {
		c.ResyncConcurrency = DefaultResyncConcurrency
	}
	return c
}

// ChartResolver lists the versions of a chart served by a repository.
// ref has the form "repo/chart".
type ChartResolver interface {
	FetchVersions(ctx context.Context, cluster, namespace, ref string) ([]string, error)
}

// ResyncOutcome is the result of one resync started by ResyncAllRepositories.
type ResyncOutcome struct {
	Key api.RepositoryKey

	// Err is the classified failure, nil on success.
	Err error
}
