package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestDetector_ParseFilePath(t *testing.T) {
	detector := NewDetector("/tmp/repos", []string{"team1"}, 100*time.Millisecond)

	tests := []struct {
		name          string
		path          string
		wantNamespace string
		wantResource  string
		wantName      string
	}{
		{
			name:          "repository",
			path:          "/tmp/repos/team1/apprepositories/bitnami.yaml",
			wantNamespace: "team1",
			wantResource:  ResourceRepositories,
			wantName:      "bitnami",
		},
		{
			name:          "secret with yml extension",
			path:          "/tmp/repos/kubeapps/secrets/apprepo-bitnami.yml",
			wantNamespace: "kubeapps",
			wantResource:  ResourceSecrets,
			wantName:      "apprepo-bitnami",
		},
		{
			name: "unknown resource directory",
			path: "/tmp/repos/team1/configmaps/x.yaml",
		},
		{
			name: "events log depth",
			path: "/tmp/repos/team1/events.log",
		},
		{
			name: "outside base path",
			path: "/other/team1/apprepositories/x.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns, resource, name := detector.parseFilePath(tt.path)
			if ns != tt.wantNamespace || resource != tt.wantResource || name != tt.wantName {
				t.Errorf("parseFilePath(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.path, ns, resource, name, tt.wantNamespace, tt.wantResource, tt.wantName)
			}
		})
	}
}

func TestMergeOperations(t *testing.T) {
	tests := []struct {
		old, next, want Operation
	}{
		{OperationCreate, OperationUpdate, OperationCreate},
		{OperationCreate, OperationDelete, OperationDelete},
		{OperationUpdate, OperationDelete, OperationDelete},
		{OperationUpdate, OperationUpdate, OperationUpdate},
		{OperationDelete, OperationCreate, OperationCreate},
	}
	for _, tt := range tests {
		if got := mergeOperations(tt.old, tt.next); got != tt.want {
			t.Errorf("mergeOperations(%s, %s) = %s, want %s", tt.old, tt.next, got, tt.want)
		}
	}
}

func TestIsYAMLFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.yaml":     true,
		"a.YML":      true,
		"events.log": false,
		"a.yaml.swp": false,
	} {
		if got := isYAMLFile(path); got != want {
			t.Errorf("isYAMLFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestDetector_StartCreatesDirectoriesAndStops(t *testing.T) {
	tempDir := t.TempDir()
	detector := NewDetector(tempDir, []string{"team1"}, 50*time.Millisecond)

	if err := detector.Start(context.Background(), make(chan Change, 1)); err != nil {
		t.Fatalf("failed to start detector: %v", err)
	}
	for _, resource := range []string{ResourceRepositories, ResourceSecrets} {
		if _, err := os.Stat(filepath.Join(tempDir, "team1", resource)); err != nil {
			t.Errorf("expected %s directory: %v", resource, err)
		}
	}

	if err := detector.Stop(); err != nil {
		t.Fatalf("failed to stop detector: %v", err)
	}
	if err := detector.Stop(); err != nil {
		t.Fatalf("second stop should be a no-op: %v", err)
	}
}

func TestDetector_DebouncesFileChanges(t *testing.T) {
	tempDir := t.TempDir()
	detector := NewDetector(tempDir, []string{"team1"}, 200*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan Change, 10)
	if err := detector.Start(ctx, changes); err != nil {
		t.Fatalf("failed to start detector: %v", err)
	}
	defer detector.Stop()

	file := filepath.Join(tempDir, "team1", ResourceRepositories, "bitnami.yaml")
	if err := os.WriteFile(file, []byte("v1"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	for i := 0; i < 3; i++ {
		time.Sleep(10 * time.Millisecond)
		if err := os.WriteFile(file, []byte("v2"), 0644); err != nil {
			t.Fatalf("failed to update file: %v", err)
		}
	}

	select {
	case change := <-changes:
		if change.Namespace != "team1" || change.Name != "bitnami" || change.Resource != ResourceRepositories {
			t.Errorf("unexpected change %+v", change)
		}
		if change.Operation != OperationCreate {
			t.Errorf("expected create, got %s", change.Operation)
		}
	case <-ctx.Done():
		t.Fatal("timeout waiting for change")
	}

	select {
	case change := <-changes:
		t.Errorf("expected a single debounced change, got another: %+v", change)
	case <-time.After(400 * time.Millisecond):
	}
}

type recordingLister struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingLister) ListRepositories(ctx context.Context, cluster, namespace string, includeGlobal bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cluster+":"+namespace)
}

func TestRelist(t *testing.T) {
	changes := make(chan Change, 3)
	changes <- Change{Namespace: "team1", Resource: ResourceRepositories, Name: "a"}
	changes <- Change{Namespace: "kubeapps", Resource: ResourceSecrets, Name: "b"}
	close(changes)

	lister := &recordingLister{}
	Relist(context.Background(), changes, lister, "local", "kubeapps", []string{"team1", "team2"}, true)

	want := []string{"local:team1", "local:team1", "local:team2"}
	if len(lister.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", lister.calls, want)
	}
	for i := range want {
		if lister.calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, lister.calls[i], want[i])
		}
	}
}

func TestRelist_WithoutGlobal(t *testing.T) {
	changes := make(chan Change, 1)
	changes <- Change{Namespace: "kubeapps", Resource: ResourceRepositories, Name: "b"}
	close(changes)

	lister := &recordingLister{}
	Relist(context.Background(), changes, lister, "local", "kubeapps", []string{"team1"}, false)

	if len(lister.calls) != 1 || lister.calls[0] != "local:kubeapps" {
		t.Errorf("calls = %v, want [local:kubeapps]", lister.calls)
	}
}

func TestRelist_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		Relist(ctx, make(chan Change), &recordingLister{}, "local", "kubeapps", nil, false)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Relist did not return after cancel")
	}
}
