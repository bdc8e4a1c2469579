package reconciler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"

	"apprepo/internal/api"
	"apprepo/internal/client"
	"apprepo/internal/events"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

func newFilesystemEngine(t *testing.T) (*Engine, *events.Recorder) {
	t.Helper()

	backend, err := client.NewFilesystemClient(t.TempDir())
	require.NoError(t, err)

	clusters := client.NewClusterSet("local", nil)
	clusters.Add("local", backend)
	t.Cleanup(func() { _ = clusters.Close() })

	recorder := events.NewRecorder(200)
	return NewEngine(clusters, clusters, nil, recorder, Config{GlobalNamespace: "kubeapps"}), recorder
}

func TestEngine_FilesystemLifecycle(t *testing.T) {
	engine, recorder := newFilesystemEngine(t)
	ctx := context.Background()

	require.True(t, engine.CreateRepository(ctx, "", api.RepositoryForm{
		Name:       "bitnami",
		Namespace:  "team1",
		URL:        "https://charts.bitnami.com/bitnami",
		AuthHeader: "Bearer token",
	}))
	require.True(t, engine.CreateRepository(ctx, "local", api.RepositoryForm{
		Name:      "shared",
		Namespace: "kubeapps",
		URL:       "https://charts.example.com",
	}))

	engine.ListRepositories(ctx, "", "team1", true)
	engine.Wait()

	listed := terminal(recorder, events.ActionListRepositories)
	require.Len(t, listed, 1)
	require.Equal(t, events.PhaseSucceeded, listed[0].Phase)
	assert.Equal(t, []string{"team1/bitnami", "kubeapps/shared"}, names(listed[0].Payload.([]v1alpha1.AppRepository)))

	related := terminal(recorder, events.ActionFetchRelatedSecrets)
	require.Len(t, related, 1)
	secrets := related[0].Payload.([]corev1.Secret)
	require.Len(t, secrets, 1)
	assert.Equal(t, client.RepositorySecretName("bitnami"), secrets[0].Name)

	engine.ResyncRepository(ctx, "", "team1", "bitnami")
	engine.FetchRepository(ctx, "", "team1", "bitnami")
	fetched := terminal(recorder, events.ActionFetchRepository)
	require.Len(t, fetched, 1)
	assert.EqualValues(t, 1, fetched[0].Payload.(*v1alpha1.AppRepository).Spec.ResyncRequests)

	require.True(t, engine.DeleteRepository(ctx, "", "team1", "bitnami"))
	engine.FetchRelatedSecrets(ctx, "", "team1")
	related = terminal(recorder, events.ActionFetchRelatedSecrets)
	require.Len(t, related, 2)
	assert.Empty(t, related[1].Payload.([]corev1.Secret))
}

func TestEngine_FilesystemUnknownCluster(t *testing.T) {
	engine, recorder := newFilesystemEngine(t)

	engine.ListRepositories(context.Background(), "prod", "team1", false)

	listed := terminal(recorder, events.ActionListRepositories)
	require.Len(t, listed, 1)
	assert.Equal(t, events.PhaseFailed, listed[0].Phase)
	assert.True(t, api.IsNotFound(listed[0].Err))
}

func TestEngine_FilesystemCreateLeavesNothingOnSecretConflict(t *testing.T) {
	engine, recorder := newFilesystemEngine(t)
	ctx := context.Background()

	require.True(t, engine.CreatePullSecret(ctx, "", api.PullSecretRequest{
		Name: "apprepo-foo", Namespace: "team1", Username: "alice", Password: "s3cret", Server: "ghcr.io",
	}))

	form := api.RepositoryForm{Name: "foo", Namespace: "team1", URL: "https://charts.example.com", AuthHeader: "Bearer x"}
	require.False(t, engine.CreateRepository(ctx, "", form))
	created := terminal(recorder, events.ActionCreateRepository)
	require.Len(t, created, 1)
	assert.Equal(t, api.OperationCreate, created[0].Kind)
	assert.True(t, api.IsConflict(created[0].Err))

	engine.FetchRepository(ctx, "", "team1", "foo")
	fetched := terminal(recorder, events.ActionFetchRepository)
	require.Len(t, fetched, 1)
	assert.Equal(t, events.PhaseFailed, fetched[0].Phase)
	assert.True(t, api.IsNotFound(fetched[0].Err))

	// A retry is not blocked by a leftover repository.
	form.AuthHeader = ""
	assert.True(t, engine.CreateRepository(ctx, "", form))
}
