package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apprepo/internal/api"
	"apprepo/internal/config"
)

func filesystemSettings(t *testing.T) *config.Config {
	t.Helper()
	settings := config.GetDefaultConfig()
	settings.DefaultCluster = "local"
	settings.Clusters = []config.ClusterConfig{{Name: "local", FilesystemPath: t.TempDir()}}
	return &settings
}

func TestNewApplication_FilesystemCluster(t *testing.T) {
	settings := filesystemSettings(t)
	settings.Events.Templates = map[string]string{"AppRepositoryCreated": "new repo {{.Name}}"}

	var logs bytes.Buffer
	cfg := NewConfig(true, false, "", "")
	cfg.Settings = settings
	cfg.LogOutput = &logs

	application, err := NewApplication(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, application.Close()) }()

	assert.Equal(t, "local", application.Cluster())

	engine := application.Services.Engine
	require.True(t, engine.CreateRepository(context.Background(), "", api.RepositoryForm{
		Name: "bitnami", Namespace: "team1", URL: "https://charts.bitnami.com/bitnami",
	}))

	snap := application.Services.Store.Snapshot()
	require.Len(t, snap.Repositories, 1)
	assert.Positive(t, application.Services.Recorder.Len())

	eventsLog, err := os.ReadFile(filepath.Join(settings.Clusters[0].FilesystemPath, "team1", "events.log"))
	require.NoError(t, err)
	assert.Contains(t, string(eventsLog), "new repo bitnami")
	assert.True(t, strings.Contains(logs.String(), "Connected to cluster local"))
}

func TestApplicationClose_LogsMetricsSummary(t *testing.T) {
	var logs bytes.Buffer
	cfg := NewConfig(true, false, "", "")
	cfg.Settings = filesystemSettings(t)
	cfg.LogOutput = &logs

	application, err := NewApplication(cfg)
	require.NoError(t, err)

	engine := application.Services.Engine
	assert.False(t, engine.DeleteRepository(context.Background(), "", "team1", "ghost"))
	require.NoError(t, application.Close())

	assert.Contains(t, logs.String(), "1 operations, 0 succeeded, 1 failed")
	assert.Contains(t, logs.String(), "DeleteRepository: 1 of 1 failed")
}

func TestNewApplication_LoadsConfigPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("clusters:\n  - name: local\n    filesystemPath: repos\n"), 0644))

	application, err := NewApplication(NewConfig(false, true, dir, ""))
	require.NoError(t, err)
	defer application.Close()

	assert.Equal(t, "local", application.Cluster())
	assert.Equal(t, filepath.Join(dir, "repos"), application.Services.ClusterConfig.FilesystemPath)
}

func TestNewApplication_Errors(t *testing.T) {
	cfg := NewConfig(false, true, "", "prod")
	cfg.Settings = filesystemSettings(t)
	_, err := NewApplication(cfg)
	assert.ErrorContains(t, err, `cluster "prod" is not declared`)

	cfg = NewConfig(false, true, "", "")
	cfg.Settings = filesystemSettings(t)
	cfg.Settings.Events.Templates = map[string]string{"AppRepositoryCreated": "{{.Name"}
	_, err = NewApplication(cfg)
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("clusters: [\n"), 0644))
	_, err = NewApplication(NewConfig(false, true, dir, ""))
	assert.ErrorContains(t, err, "failed to load configuration")
}
