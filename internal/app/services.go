package app

import (
	"fmt"

	"apprepo/internal/client"
	"apprepo/internal/config"
	"apprepo/internal/events"
	"apprepo/internal/helmrepo"
	"apprepo/internal/reconciler"
	"apprepo/internal/state"
	"apprepo/pkg/logging"
)

// Services holds all initialized components used by the application.
//
// Initialization order follows the dependencies:
//  1. HTTP validator and chart resolver
//  2. ClusterSet with the selected cluster's backend
//  3. Emitters: state store, recorder, log, and Kubernetes Events
//  4. Reconciliation engine
type Services struct {
	// Cluster is the name of the connected cluster.
	Cluster string

	// ClusterConfig is the configuration of the connected cluster.
	ClusterConfig config.ClusterConfig

	Clusters *client.ClusterSet
	Resolver *helmrepo.ChartResolver
	Engine   *reconciler.Engine

	// Store is the view reduced from the engine's events.
	Store *state.Store

	// Recorder keeps the most recent events for inspection.
	Recorder *events.Recorder
}

// InitializeServices connects to the cluster selected by cfg and wires the
// engine around it.
func InitializeServices(cfg *Config) (*Services, error) {
	settings := cfg.Settings
	if settings == nil {
		defaults := config.GetDefaultConfig()
		settings = &defaults
	}

	name := cfg.Cluster
	if name == "" {
		name = settings.DefaultCluster
	}
	clusterCfg, ok := settings.Cluster(name)
	if !ok {
		return nil, fmt.Errorf("cluster %q is not declared in the configuration", name)
	}

	httpOpts := helmrepo.HTTPOptions{
		Timeout:  settings.HTTP.Timeout,
		RetryMax: settings.HTTP.RetryMax,
	}
	clusters := client.NewClusterSet(name, helmrepo.NewValidator(httpOpts))

	backend, err := client.NewBackend(client.BackendConfig{
		Name:           clusterCfg.Name,
		Kubeconfig:     clusterCfg.Kubeconfig,
		Context:        clusterCfg.Context,
		FilesystemPath: clusterCfg.FilesystemPath,
		ProbeNamespace: settings.GlobalNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cluster %s: %w", name, err)
	}
	clusters.Add(name, backend)
	logging.Info("Bootstrap", "Connected to cluster %s", name)

	store := state.NewStore()
	recorder := events.NewRecorder(events.DefaultRecorderSize)
	emitters := []events.Emitter{store, recorder, events.LogEmitter{}}

	if settings.Events.Record {
		generator := events.NewEventGenerator(clusters)
		for reason, text := range settings.Events.Templates {
			if err := generator.Templates().SetTemplate(events.EventReason(reason), text); err != nil {
				_ = clusters.Close()
				return nil, err
			}
		}
		emitters = append(emitters, generator)
	}

	resolver := helmrepo.NewChartResolver(clusters, httpOpts)
	engine := reconciler.NewEngine(clusters, clusters, resolver, events.Multi(emitters...), reconciler.Config{
		GlobalNamespace:   settings.GlobalNamespace,
		ResyncConcurrency: settings.ResyncConcurrency,
	})

	return &Services{
		Cluster:       name,
		ClusterConfig: clusterCfg,
		Clusters:      clusters,
		Resolver:      resolver,
		Engine:        engine,
		Store:         store,
		Recorder:      recorder,
	}, nil
}
