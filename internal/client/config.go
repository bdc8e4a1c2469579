package client

import (
	"fmt"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	ctrl "sigs.k8s.io/controller-runtime"

	"apprepo/pkg/logging"
)

// BackendConfig describes how to reach one cluster.
type BackendConfig struct {
	// Name is the cluster name used in calls and logs.
	Name string

	// Kubeconfig is the kubeconfig path; empty uses the standard loading rules.
	Kubeconfig string

	// Context selects a kubeconfig context; empty uses the current context.
	Context string

	// FilesystemPath selects the filesystem backend when set.
	FilesystemPath string

	// ProbeNamespace is listed once to check that the CRD is installed.
	ProbeNamespace string
}

// NewBackend creates the backend described by cfg.
func NewBackend(cfg BackendConfig) (Backend, error) {
	if cfg.FilesystemPath != "" {
		logging.Debug("ClusterSet", "Using filesystem backend at %s for cluster %s", cfg.FilesystemPath, cfg.Name)
		return NewFilesystemClient(cfg.FilesystemPath)
	}

	restConfig, err := RESTConfig(cfg.Kubeconfig, cfg.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to load Kubernetes config for cluster %s: %w", cfg.Name, err)
	}
	logging.Debug("ClusterSet", "Using Kubernetes backend %s for cluster %s", restConfig.Host, cfg.Name)
	return NewKubernetesClient(restConfig, cfg.ProbeNamespace)
}

// RESTConfig loads a REST config for a kubeconfig path and context. With both
// empty it uses controller-runtime's detection (flags, KUBECONFIG, in-cluster).
func RESTConfig(kubeconfig, context string) (*rest.Config, error) {
	if kubeconfig == "" && context == "" {
		return ctrl.GetConfig()
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		rules.ExplicitPath = kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: context}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
}
