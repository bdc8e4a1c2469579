package reconciler

import (
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// MergeByUID concatenates lists keeping the first repository seen for each
// identity. The identity is the UID, or namespace/name for repositories that
// have not been assigned one.
func MergeByUID(lists ...[]v1alpha1.AppRepository) []v1alpha1.AppRepository {
	total := 0
	for _, list := range lists {
		total += len(list)
	}

	seen := make(map[string]struct{}, total)
	merged := make([]v1alpha1.AppRepository, 0, total)
	for _, list := range lists {
		for _, repo := range list {
			id := identity(repo)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, repo)
		}
	}
	return merged
}

func identity(repo v1alpha1.AppRepository) string {
	if repo.UID != "" {
		return "uid:" + string(repo.UID)
	}
	return "key:" + repo.Namespace + "/" + repo.Name
}
