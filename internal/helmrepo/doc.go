// Package helmrepo talks to the package repositories an AppRepository points at.
//
// It provides two consumers:
//
//   - Validator probes a repository endpoint before it is saved. Helm repositories
//     are checked through their index.yaml, OCI registries through the tags/list
//     endpoint of every declared repository.
//   - ChartResolver resolves a "repo/chart" reference against a stored
//     AppRepository and returns the chart's versions, newest first.
//
// Both use a retrying HTTP client that honors the repository's authorization
// header, custom CA bundle, and TLS verification setting.
package helmrepo
