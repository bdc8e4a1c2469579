// Package reconciler implements the AppRepository reconciliation engine.
//
// # Overview
//
// Engine drives the lifecycle of AppRepository resources: listing (optionally
// merged with the shared global namespace), create, update, delete, resync,
// validation against the remote repository, and chart availability checks.
// It also correlates repositories with the secrets they own.
//
// Operations do not return errors. Each one reports its progress through an
// events.Emitter as a Started event followed by exactly one Succeeded event
// carrying the result, or one Failed event carrying a classified error and
// the kind of change that was attempted.
//
// # Concurrency
//
// Listing and updating start companion secret fetches in the background.
// They run on a context detached from the caller's cancellation; Wait blocks
// until they are done. ResyncAllRepositories fans out over an errgroup with a
// bounded number of concurrent resyncs and never stops early.
//
// # Usage
//
//	engine := reconciler.NewEngine(clusters, clusters, resolver, store, reconciler.Config{
//		GlobalNamespace:   "kubeapps",
//		ResyncConcurrency: 8,
//	})
//	engine.ListRepositories(ctx, "", "team1", true)
//	defer engine.Wait()
package reconciler
