package config

import "time"

const (
	DefaultGlobalNamespace   = "kubeapps"
	DefaultClusterName       = "default"
	DefaultResyncConcurrency = 8
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultHTTPRetryMax      = 2
)

// GetDefaultConfig returns the configuration used when no config.yaml exists:
// one cluster reached through the current kubeconfig context.
func GetDefaultConfig() Config {
	return Config{
		GlobalNamespace:   DefaultGlobalNamespace,
		DefaultCluster:    DefaultClusterName,
		ResyncConcurrency: DefaultResyncConcurrency,
		HTTP: HTTPConfig{
			Timeout:  DefaultHTTPTimeout,
			RetryMax: DefaultHTTPRetryMax,
		},
		Events: EventsConfig{
			Record: true,
		},
		Clusters: []ClusterConfig{
			{Name: DefaultClusterName},
		},
	}
}
