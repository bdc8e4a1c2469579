// Package config loads the apprepo configuration.
//
// Configuration is read from config.yaml in a single directory, by default
// ~/.config/apprepo (overridable with --config). Values in the file are
// applied on top of GetDefaultConfig, so a missing file or a partial file is
// valid. The loaded configuration is checked by Validate, which collects
// every problem into ValidationErrors instead of stopping at the first one.
//
// # Example
//
//	globalNamespace: kubeapps
//	defaultCluster: default
//	resyncConcurrency: 8
//	http:
//	  timeout: 30s
//	  retryMax: 2
//	events:
//	  record: true
//	  templates:
//	    AppRepositoryDeleted: "{{.Name}} removed"
//	clusters:
//	  - name: default
//	  - name: staging
//	    kubeconfig: ~/.kube/staging.yaml
//	    context: admin@staging
//	  - name: local
//	    filesystemPath: ./repos
//
// Relative filesystem paths are resolved against the configuration directory.
package config
