// Package watch turns file changes under a filesystem-backed cluster into
// debounced change notifications and re-lists the affected namespaces.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"apprepo/pkg/logging"
)

// Resource directories watched inside each namespace directory.
const (
	ResourceRepositories = "apprepositories"
	ResourceSecrets      = "secrets"
)

// DefaultDebounceInterval is used when NewDetector gets a zero interval.
const DefaultDebounceInterval = 500 * time.Millisecond

// Operation is the kind of change observed for a file.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Change describes a debounced change to one stored object.
type Change struct {
	Namespace string
	Resource  string
	Name      string
	Operation Operation
	FilePath  string
	Timestamp time.Time
}

// Detector watches {basePath}/{namespace}/{apprepositories,secrets}.
type Detector struct {
	mu sync.Mutex

	basePath         string
	namespaces       []string
	debounceInterval time.Duration

	watcher *fsnotify.Watcher
	pending map[string]*debounceEntry
	stopCh  chan struct{}
	running bool
}

type debounceEntry struct {
	change Change
	timer  *time.Timer
}

// NewDetector creates a detector for the given namespaces of a filesystem
// cluster rooted at basePath.
func NewDetector(basePath string, namespaces []string, debounceInterval time.Duration) *Detector {
	if debounceInterval == 0 {
		debounceInterval = DefaultDebounceInterval
	}
	return &Detector{
		basePath:         basePath,
		namespaces:       namespaces,
		debounceInterval: debounceInterval,
		pending:          make(map[string]*debounceEntry),
		stopCh:           make(chan struct{}),
	}
}

// Start begins watching. Changes are sent without blocking; a full channel
// drops the change with a warning.
func (d *Detector) Start(ctx context.Context, changes chan<- Change) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.watcher = watcher
	d.running = true
	d.stopCh = make(chan struct{})
	d.mu.Unlock()

	for _, ns := range d.namespaces {
		for _, resource := range []string{ResourceRepositories, ResourceSecrets} {
			dir := filepath.Join(d.basePath, ns, resource)
			if err := os.MkdirAll(dir, 0755); err != nil {
				d.Stop()
				return err
			}
			if err := watcher.Add(dir); err != nil {
				d.Stop()
				return err
			}
			logging.Debug("Watch", "Watching directory: %s", dir)
		}
	}

	go d.processEvents(ctx, watcher, changes)

	logging.Info("Watch", "Started watching %s for namespaces %v", d.basePath, d.namespaces)
	return nil
}

func (d *Detector) processEvents(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- Change) {
	d.mu.Lock()
	stopCh := d.stopCh
	d.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			d.cleanupPending()
			return

		case <-stopCh:
			d.cleanupPending()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			d.handleFsEvent(event, changes)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watch", err, "Filesystem watcher error")
		}
	}
}

func (d *Detector) handleFsEvent(event fsnotify.Event, changes chan<- Change) {
	if !isYAMLFile(event.Name) {
		return
	}

	ns, resource, name := d.parseFilePath(event.Name)
	if resource == "" {
		return
	}

	var operation Operation
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		operation = OperationCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		operation = OperationUpdate
	case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
		operation = OperationDelete
	default:
		return
	}

	d.debounce(Change{
		Namespace: ns,
		Resource:  resource,
		Name:      name,
		Operation: operation,
		FilePath:  event.Name,
		Timestamp: time.Now(),
	}, changes)
}

func (d *Detector) debounce(change Change, changes chan<- Change) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := change.Namespace + "/" + change.Resource + "/" + change.Name

	if entry, ok := d.pending[key]; ok {
		entry.timer.Stop()
		change.Operation = mergeOperations(entry.change.Operation, change.Operation)
	}

	timer := time.AfterFunc(d.debounceInterval, func() {
		d.mu.Lock()
		entry, ok := d.pending[key]
		if ok {
			delete(d.pending, key)
		}
		d.mu.Unlock()

		if !ok {
			return
		}
		select {
		case changes <- entry.change:
			logging.Debug("Watch", "Emitted change: %s %s %s/%s",
				entry.change.Operation, entry.change.Resource, entry.change.Namespace, entry.change.Name)
		default:
			logging.Warn("Watch", "Change channel full, dropping change for %s/%s",
				entry.change.Namespace, entry.change.Name)
		}
	})

	d.pending[key] = &debounceEntry{change: change, timer: timer}
}

// mergeOperations folds two successive operations on the same file.
func mergeOperations(old, next Operation) Operation {
	if old == OperationCreate && next != OperationDelete {
		return OperationCreate
	}
	return next
}

// parseFilePath splits {basePath}/{namespace}/{resource}/{name}.yaml.
func (d *Detector) parseFilePath(path string) (namespace, resource, name string) {
	rel, err := filepath.Rel(d.basePath, path)
	if err != nil {
		return "", "", ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 3 || parts[0] == ".." {
		return "", "", ""
	}
	if parts[1] != ResourceRepositories && parts[1] != ResourceSecrets {
		return "", "", ""
	}

	name = strings.TrimSuffix(parts[2], filepath.Ext(parts[2]))
	return parts[0], parts[1], name
}

func (d *Detector) cleanupPending() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, entry := range d.pending {
		entry.timer.Stop()
	}
	d.pending = make(map[string]*debounceEntry)
}

// Stop ends the watch. It is safe to call more than once.
func (d *Detector) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	d.running = false
	close(d.stopCh)

	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			logging.Error("Watch", err, "Error closing filesystem watcher")
		}
		d.watcher = nil
	}

	logging.Info("Watch", "Stopped watching %s", d.basePath)
	return nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
