package app

import (
	"fmt"
	"io"
	"os"

	"apprepo/internal/config"
	"apprepo/pkg/logging"
)

// Application represents the main application structure that bootstraps
// apprepo. It owns the cluster connections, the reconciliation engine and the
// state store the CLI reads from.
//
// Example usage:
//
//	cfg := app.NewConfig(false, false, "", "prod")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	defer application.Close()
//	application.Services.Engine.ListRepositories(ctx, "prod", "team1", true)
type Application struct {
	config   *Config
	Services *Services
}

// NewApplication creates and initializes a new application instance with the provided configuration.
// This function performs the complete bootstrap sequence:
//
//  1. Configures logging based on debug settings
//  2. Loads the configuration file unless cfg.Settings is already set
//  3. Connects to the selected cluster and wires the engine
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelWarn
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	var logOutput io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.InitForCLI(appLogLevel, logOutput)

	if cfg.Settings == nil {
		configPath := cfg.ConfigPath
		if configPath == "" {
			configPath = config.GetDefaultConfigPathOrPanic()
		}

		settings, err := config.LoadConfig(configPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", configPath)
			return nil, fmt.Errorf("failed to load configuration from path %s: %w", configPath, err)
		}
		cfg.Settings = &settings
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		Services: services,
	}, nil
}

// Cluster returns the cluster the application is connected to.
func (a *Application) Cluster() string {
	return a.Services.Cluster
}

// Close waits for background fetches, logs the operation counters and
// releases cluster connections.
func (a *Application) Close() error {
	a.Services.Engine.Wait()
	a.Services.Engine.Metrics().LogSummary()
	return a.Services.Clusters.Close()
}
