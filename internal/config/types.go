package config

import "time"

// Config is the top-level configuration structure for apprepo.
type Config struct {
	// GlobalNamespace holds the repositories shared with every namespace.
	GlobalNamespace string `yaml:"globalNamespace,omitempty"`

	// DefaultCluster is used when a command does not name a cluster.
	DefaultCluster string `yaml:"defaultCluster,omitempty"`

	// ResyncConcurrency bounds the number of concurrent resyncs of `resync --all`.
	ResyncConcurrency int `yaml:"resyncConcurrency,omitempty"`

	HTTP     HTTPConfig      `yaml:"http,omitempty"`
	Events   EventsConfig    `yaml:"events,omitempty"`
	Clusters []ClusterConfig `yaml:"clusters,omitempty"`
}

// HTTPConfig tunes the requests made to chart repositories.
type HTTPConfig struct {
	Timeout  time.Duration `yaml:"timeout,omitempty"`  // Per-request timeout (default: 30s)
	RetryMax int           `yaml:"retryMax,omitempty"` // Retries after a failed request (default: 2)
}

// EventsConfig controls the events recorded on AppRepository resources.
type EventsConfig struct {
	// Record enables writing Kubernetes Events (events.log on filesystem clusters).
	Record bool `yaml:"record,omitempty"`

	// Templates overrides message templates by event reason.
	Templates map[string]string `yaml:"templates,omitempty"`
}

// ClusterConfig declares a cluster. A cluster is either a Kubernetes API
// reached through a kubeconfig, or a directory of YAML files.
type ClusterConfig struct {
	Name string `yaml:"name"`

	// Kubeconfig is the kubeconfig file; empty uses the default loading rules.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`

	// Context selects a kubeconfig context; empty uses the current context.
	Context string `yaml:"context,omitempty"`

	// FilesystemPath makes the cluster a directory of YAML files.
	FilesystemPath string `yaml:"filesystemPath,omitempty"`
}

// IsFilesystem reports whether the cluster is backed by a directory.
func (c ClusterConfig) IsFilesystem() bool {
	return c.FilesystemPath != ""
}

// Cluster returns the cluster named name.
func (c Config) Cluster(name string) (ClusterConfig, bool) {
	for _, cluster := range c.Clusters {
		if cluster.Name == name {
			return cluster, true
		}
	}
	return ClusterConfig{}, false
}
