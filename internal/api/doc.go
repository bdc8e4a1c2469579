// Package api holds the types shared between the reconciliation engine, the
// cluster clients, and the CLI: request payloads, the validation result, the
// operation kinds used to tag failures, and the error taxonomy.
//
// # Error taxonomy
//
//   - TransportError: a network or API failure
//   - NotFoundError: an absent resource (cluster object, secret, or chart)
//   - ValidationFailure: a validation response whose code is not 200
//   - ParseError: malformed sync-job pod template text
//
// Classify maps any error onto this taxonomy; engine operations classify every
// failure before reporting it.
package api
