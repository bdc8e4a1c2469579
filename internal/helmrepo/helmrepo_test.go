package helmrepo

import (
	"context"
	"encoding/pem"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"apprepo/internal/api"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

var testOpts = HTTPOptions{
	Timeout:      5 * time.Second,
	RetryMax:     0,
	RetryWaitMin: time.Millisecond,
	RetryWaitMax: 2 * time.Millisecond,
}

const testIndex = `apiVersion: v1
entries:
  nginx:
  - name: nginx
    version: 1.2.0
  - name: nginx
    version: 1.10.0
  - name: nginx
    version: 0.9.1
  redis:
  - name: redis
    version: 17.0.0
generated: "2024-01-01T00:00:00Z"
`

func TestValidator_Helm(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/charts/index.yaml":
			_, _ = w.Write([]byte(testIndex))
		case "/taken/index.yaml":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte("exists"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	v := NewValidator(testOpts)

	t.Run("index served", func(t *testing.T) {
		result, err := v.Validate(context.Background(), Endpoint{URL: srv.URL + "/charts/", AuthHeader: "Bearer token"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Code)
		assert.True(t, result.Succeeded())
		assert.Equal(t, "Bearer token", gotAuth.Load())
	})

	t.Run("non-200 carries body", func(t *testing.T) {
		result, err := v.Validate(context.Background(), Endpoint{URL: srv.URL + "/taken", Type: v1alpha1.RepositoryTypeHelm})
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, result.Code)
		assert.Equal(t, "exists", result.Message)
	})

	t.Run("empty body uses status text", func(t *testing.T) {
		result, err := v.Validate(context.Background(), Endpoint{URL: srv.URL + "/missing"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, result.Code)
		assert.NotEmpty(t, result.Message)
	})

	t.Run("basic auth", func(t *testing.T) {
		_, err := v.Validate(context.Background(), Endpoint{URL: srv.URL + "/charts", Username: "u", Password: "p"})
		require.NoError(t, err)
		assert.Equal(t, "Basic dTpw", gotAuth.Load())
	})
}

func TestValidator_ServerErrorAfterRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	opts := testOpts
	opts.RetryMax = 1
	result, err := NewValidator(opts).Validate(context.Background(), Endpoint{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, result.Code)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestValidator_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result, err := NewValidator(testOpts).Validate(context.Background(), Endpoint{URL: url})
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestValidator_OCI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/charts/nginx/tags/list", "/v2/charts/redis/tags/list":
			_, _ = fmt.Fprint(w, `{"name":"charts/nginx","tags":["1.0.0"]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	v := NewValidator(testOpts)
	ctx := context.Background()

	result, err := v.Validate(ctx, Endpoint{URL: srv.URL + "/charts", Type: v1alpha1.RepositoryTypeOCI, OCIRepositories: []string{"nginx", "redis"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Code)

	result, err = v.Validate(ctx, Endpoint{URL: srv.URL + "/charts", Type: v1alpha1.RepositoryTypeOCI, OCIRepositories: []string{"nginx", "absent"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, result.Code)

	result, err = v.Validate(ctx, Endpoint{URL: srv.URL + "/charts", Type: v1alpha1.RepositoryTypeOCI})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, result.Code)
}

func TestValidator_RejectsBadInput(t *testing.T) {
	v := NewValidator(testOpts)

	result, err := v.Validate(context.Background(), Endpoint{URL: " "})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, result.Code)

	result, err = v.Validate(context.Background(), Endpoint{URL: "https://example.com", Type: "git"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, result.Code)
	assert.Contains(t, result.Message, "git")
}

func TestValidator_CustomCA(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testIndex))
	}))
	defer srv.Close()

	caPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}))
	v := NewValidator(testOpts)
	ctx := context.Background()

	_, err := v.Validate(ctx, Endpoint{URL: srv.URL})
	assert.Error(t, err, "untrusted certificate should fail")

	result, err := v.Validate(ctx, Endpoint{URL: srv.URL, CustomCA: caPEM})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Code)

	result, err = v.Validate(ctx, Endpoint{URL: srv.URL, SkipTLS: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Code)

	_, err = v.Validate(ctx, Endpoint{URL: srv.URL, CustomCA: "not a pem"})
	assert.ErrorContains(t, err, "custom CA")
}

func TestOCITagsURL(t *testing.T) {
	tests := []struct {
		base, repo, want string
	}{
		{"oci://ghcr.io/stefanprodan/charts", "podinfo", "https://ghcr.io/v2/stefanprodan/charts/podinfo/tags/list"},
		{"https://registry.example.com", "/nginx/", "https://registry.example.com/v2/nginx/tags/list"},
		{"http://localhost:5000/charts/", "redis", "http://localhost:5000/v2/charts/redis/tags/list"},
	}
	for _, tt := range tests {
		got, err := ociTagsURL(tt.base, tt.repo)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ociTagsURL("just-a-name", "x")
	assert.Error(t, err)
}

func TestSortVersions(t *testing.T) {
	got := SortVersions([]string{"1.2.0", "latest", "1.10.0", "v2.0.0-rc.1", "0.9.1", "stable"})
	assert.Equal(t, []string{"v2.0.0-rc.1", "1.10.0", "1.2.0", "0.9.1", "latest", "stable"}, got)
}

func TestDockerConfig(t *testing.T) {
	data, err := BuildDockerConfigJSON("https://index.docker.io/v1/", "alice", "s3cret", "a@example.com")
	require.NoError(t, err)

	user, pass, err := RegistryCredentials(data, "index.docker.io")
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "s3cret", pass)

	_, _, err = RegistryCredentials(data, "ghcr.io")
	assert.ErrorContains(t, err, "ghcr.io")

	authOnly := []byte(`{"auths":{"ghcr.io":{"auth":"Ym9iOnB3"}}}`)
	user, pass, err = RegistryCredentials(authOnly, "oci://ghcr.io/org/charts")
	require.NoError(t, err)
	assert.Equal(t, "bob", user)
	assert.Equal(t, "pw", pass)

	_, err = BuildDockerConfigJSON("", "a", "b", "")
	assert.Error(t, err)
}

type fakeSource struct {
	repos   map[string]*v1alpha1.AppRepository
	secrets map[string]*corev1.Secret
}

func (f *fakeSource) GetAppRepository(_ context.Context, _, namespace, name string) (*v1alpha1.AppRepository, error) {
	if repo, ok := f.repos[namespace+"/"+name]; ok {
		return repo, nil
	}
	return nil, api.NewNotFoundError("apprepository", name)
}

func (f *fakeSource) GetSecret(_ context.Context, _, namespace, name string) (*corev1.Secret, error) {
	if secret, ok := f.secrets[namespace+"/"+name]; ok {
		return secret, nil
	}
	return nil, api.NewNotFoundError("secret", name)
}

func newRepo(name, url, repoType string) *v1alpha1.AppRepository {
	return &v1alpha1.AppRepository{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default"},
		Spec:       v1alpha1.AppRepositorySpec{URL: url, Type: repoType},
	}
}

func TestChartResolver_Index(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		if r.URL.Path != "/index.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(testIndex))
	}))
	defer srv.Close()

	repo := newRepo("bitnami", srv.URL, v1alpha1.RepositoryTypeHelm)
	repo.Spec.Auth.Header = &v1alpha1.AppRepositoryAuthHeader{
		SecretKeyRef: corev1.SecretKeySelector{LocalObjectReference: corev1.LocalObjectReference{Name: "apprepo-bitnami"}, Key: "authorizationHeader"},
	}
	source := &fakeSource{
		repos: map[string]*v1alpha1.AppRepository{"default/bitnami": repo},
		secrets: map[string]*corev1.Secret{
			"default/apprepo-bitnami": {Data: map[string][]byte{"authorizationHeader": []byte("Bearer abc")}},
		},
	}
	resolver := NewChartResolver(source, testOpts)
	ctx := context.Background()

	versions, err := resolver.FetchVersions(ctx, "default", "default", "bitnami/nginx")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.10.0", "1.2.0", "0.9.1"}, versions)
	assert.Equal(t, "Bearer abc", gotAuth.Load())

	_, err = resolver.FetchVersions(ctx, "default", "default", "bitnami/nope")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))

	_, err = resolver.FetchVersions(ctx, "default", "default", "other/nginx")
	assert.True(t, api.IsNotFound(err))

	_, err = resolver.FetchVersions(ctx, "default", "default", "no-slash")
	assert.ErrorContains(t, err, "repo/chart")
}

func TestChartResolver_OCI(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		if r.URL.Path == "/v2/charts/podinfo/tags/list" {
			_, _ = fmt.Fprint(w, `{"name":"charts/podinfo","tags":["6.0.0","6.5.1","5.2.0"]}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dockerCfg, err := BuildDockerConfigJSON(srv.URL, "u", "p", "")
	require.NoError(t, err)

	repo := newRepo("podinfo", srv.URL+"/charts", v1alpha1.RepositoryTypeOCI)
	repo.Spec.OCIRepositories = []string{"podinfo", "ghost"}
	repo.Spec.Auth.Header = &v1alpha1.AppRepositoryAuthHeader{
		SecretKeyRef: corev1.SecretKeySelector{LocalObjectReference: corev1.LocalObjectReference{Name: "regcreds"}, Key: corev1.DockerConfigJsonKey},
	}
	source := &fakeSource{
		repos:   map[string]*v1alpha1.AppRepository{"default/podinfo": repo},
		secrets: map[string]*corev1.Secret{"default/regcreds": {Data: map[string][]byte{corev1.DockerConfigJsonKey: dockerCfg}}},
	}
	resolver := NewChartResolver(source, testOpts)
	ctx := context.Background()

	versions, err := resolver.FetchVersions(ctx, "default", "default", "podinfo/podinfo")
	require.NoError(t, err)
	assert.Equal(t, []string{"6.5.1", "6.0.0", "5.2.0"}, versions)
	assert.Equal(t, "Basic dTpw", gotAuth.Load())

	_, err = resolver.FetchVersions(ctx, "default", "default", "podinfo/ghost")
	assert.True(t, api.IsNotFound(err))

	_, err = resolver.FetchVersions(ctx, "default", "default", "podinfo/undeclared")
	assert.True(t, api.IsNotFound(err))
}

func TestEndpointFor_MissingSecretKey(t *testing.T) {
	repo := newRepo("r", "https://example.com", v1alpha1.RepositoryTypeHelm)
	repo.Spec.Auth.CustomCA = &v1alpha1.AppRepositoryCustomCA{
		SecretKeyRef: corev1.SecretKeySelector{LocalObjectReference: corev1.LocalObjectReference{Name: "ca"}, Key: "ca.crt"},
	}
	source := &fakeSource{secrets: map[string]*corev1.Secret{"default/ca": {Data: map[string][]byte{}}}}

	_, err := EndpointFor(context.Background(), source, "default", repo)
	assert.ErrorContains(t, err, "ca.crt")
}

func TestValidator_ClosesIdleConnections(t *testing.T) {
	var closed atomic.Int32
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testIndex))
	}))
	srv.Config.ConnState = func(_ net.Conn, state http.ConnState) {
		if state == http.StateClosed {
			closed.Add(1)
		}
	}
	srv.Start()
	defer srv.Close()

	v := NewValidator(testOpts)
	for i := 0; i < 3; i++ {
		result, err := v.Validate(context.Background(), Endpoint{URL: srv.URL})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, result.Code)
	}

	assert.Eventually(t, func() bool { return closed.Load() == 3 }, 2*time.Second, 10*time.Millisecond,
		"every probe should release its keep-alive connection")
}
