package watch

import (
	"context"

	"apprepo/pkg/logging"
)

// Lister re-reads the repositories of a namespace. *reconciler.Engine
// satisfies it.
type Lister interface {
	ListRepositories(ctx context.Context, cluster, namespace string, includeGlobal bool)
}

// Relist consumes changes until ctx ends or the channel closes and lists the
// namespace of each change again. Secret changes re-list too, since listing
// also refreshes the related secrets.
//
// A change in globalNamespace affects every watched namespace when
// includeGlobal is set.
func Relist(ctx context.Context, changes <-chan Change, lister Lister, cluster, globalNamespace string, namespaces []string, includeGlobal bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			logging.Debug("Watch", "%s %s %s/%s changed, re-listing",
				change.Operation, change.Resource, change.Namespace, change.Name)

			targets := []string{change.Namespace}
			if includeGlobal && change.Namespace == globalNamespace {
				targets = namespaces
			}
			for _, ns := range targets {
				lister.ListRepositories(ctx, cluster, ns, includeGlobal)
			}
		}
	}
}
