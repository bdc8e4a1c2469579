package v1alpha1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

func TestAddToScheme(t *testing.T) {
	scheme := runtime.NewScheme()
	require.NoError(t, AddToScheme(scheme))

	gvks, _, err := scheme.ObjectKinds(&AppRepository{})
	require.NoError(t, err)
	require.Len(t, gvks, 1)
	assert.Equal(t, "kubeapps.com", gvks[0].Group)
	assert.Equal(t, Kind, gvks[0].Kind)
}

func TestAppRepository_SecretNames(t *testing.T) {
	repo := &AppRepository{}
	assert.Empty(t, repo.HeaderSecretName())
	assert.Empty(t, repo.CustomCASecretName())

	repo.Spec.Auth.Header = &AppRepositoryAuthHeader{
		SecretKeyRef: corev1.SecretKeySelector{
			LocalObjectReference: corev1.LocalObjectReference{Name: "apprepo-bitnami"},
			Key:                  "authorizationHeader",
		},
	}
	repo.Spec.Auth.CustomCA = &AppRepositoryCustomCA{
		SecretKeyRef: corev1.SecretKeySelector{
			LocalObjectReference: corev1.LocalObjectReference{Name: "ca-bundle"},
			Key:                  "ca.crt",
		},
	}

	assert.Equal(t, "apprepo-bitnami", repo.HeaderSecretName())
	assert.Equal(t, "ca-bundle", repo.CustomCASecretName())
}

func TestAppRepository_DeepCopyIsIndependent(t *testing.T) {
	orig := &AppRepository{
		ObjectMeta: metav1.ObjectMeta{Name: "bitnami", Namespace: "kubeapps", UID: "uid-1"},
		Spec: AppRepositorySpec{
			Type:            RepositoryTypeOCI,
			URL:             "https://registry.example.com",
			OCIRepositories: []string{"charts/nginx"},
			FilterRule:      &FilterRuleSpec{JQ: ".name == $var1", Variables: map[string]string{"$var1": "nginx"}},
		},
	}

	copied := orig.DeepCopy()
	copied.Spec.OCIRepositories[0] = "charts/redis"
	copied.Spec.FilterRule.Variables["$var1"] = "redis"

	assert.Equal(t, "charts/nginx", orig.Spec.OCIRepositories[0])
	assert.Equal(t, "nginx", orig.Spec.FilterRule.Variables["$var1"])
	assert.True(t, orig.IsOCI())
}
