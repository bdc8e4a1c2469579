package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

func names(repos []v1alpha1.AppRepository) []string {
	out := make([]string, 0, len(repos))
	for _, repo := range repos {
		out = append(out, repo.Namespace+"/"+repo.Name)
	}
	return out
}

func TestMergeByUID(t *testing.T) {
	a := []v1alpha1.AppRepository{
		*newRepo("team1", "one", "1", "https://a/one"),
		*newRepo("team1", "two", "2", "https://a/two"),
	}
	b := []v1alpha1.AppRepository{
		*newRepo("kubeapps", "two", "2", "https://b/two"),
		*newRepo("kubeapps", "three", "3", "https://b/three"),
	}

	merged := MergeByUID(a, b)

	require.Len(t, merged, 3)
	assert.Equal(t, []string{"team1/one", "team1/two", "kubeapps/three"}, names(merged))
	assert.Equal(t, "https://a/two", merged[1].Spec.URL)
	assert.LessOrEqual(t, len(merged), len(a)+len(b))

	// Inputs are not modified.
	assert.Len(t, a, 2)
	assert.Equal(t, "https://b/two", b[0].Spec.URL)
}

func TestMergeByUID_DuplicatesWithinOneList(t *testing.T) {
	a := []v1alpha1.AppRepository{
		*newRepo("team1", "one", "1", "first"),
		*newRepo("team1", "one-again", "1", "second"),
	}

	merged := MergeByUID(a, nil)

	require.Len(t, merged, 1)
	assert.Equal(t, "first", merged[0].Spec.URL)
}

func TestMergeByUID_EmptyUIDFallsBackToKey(t *testing.T) {
	a := []v1alpha1.AppRepository{
		*newRepo("team1", "one", "", "a"),
		*newRepo("team1", "two", "", "b"),
	}
	b := []v1alpha1.AppRepository{
		*newRepo("team1", "one", "", "c"),
	}

	merged := MergeByUID(a, b)

	assert.Equal(t, []string{"team1/one", "team1/two"}, names(merged))
	assert.Equal(t, "a", merged[0].Spec.URL)
}

func TestMergeByUID_Empty(t *testing.T) {
	assert.Empty(t, MergeByUID(nil, nil))
	assert.NotNil(t, MergeByUID())
}
