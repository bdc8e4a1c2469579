// Package client provides access to AppRepository resources and their secrets
// across several clusters.
//
// # Overview
//
// A ClusterSet maps cluster names to Backends and implements both
// RepositoryClient and SecretClient on top of them. Every call names its
// cluster explicitly; the empty name selects the default cluster.
//
// Two backends exist:
//
//   - Kubernetes: controller-runtime client built from a kubeconfig context
//   - Filesystem: YAML files under {base}/{namespace}/apprepositories and
//     {base}/{namespace}/secrets, for local development and tests
//
// # Repository secrets
//
// Creating or updating a repository with an authorization header or a custom
// CA stores them in a secret named apprepo-<name> owned by the repository.
// A registry credential reference (authRegCreds) points the header at the
// .dockerconfigjson key of an existing pull secret instead.
//
// # Errors
//
// Errors keep the Kubernetes API error chain, so apierrors.IsNotFound and
// api.Classify work on them regardless of the backend.
package client
