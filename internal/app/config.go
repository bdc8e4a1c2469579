package app

import (
	"io"

	"apprepo/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Silent discards all log output.
	Silent bool

	// LogOutput receives log lines; nil means os.Stderr.
	LogOutput io.Writer

	// Custom configuration path (optional)
	// When empty, ~/.config/apprepo is used.
	ConfigPath string

	// Cluster is the cluster to connect to; empty means the configured default.
	Cluster string

	// Settings is the loaded configuration file. It is filled in by
	// NewApplication when nil.
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(debug, silent bool, configPath, cluster string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
		Cluster:    cluster,
	}
}
