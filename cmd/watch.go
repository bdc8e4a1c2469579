package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/internal/watch"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var (
		includeGlobal bool
		showEvents    bool
		debounce      time.Duration
		duration      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-list AppRepositories whenever files of a filesystem cluster change",
		Long: `Watch the directories of a filesystem-backed cluster and list the
namespace again after every change to its AppRepositories or secrets.
Runs until interrupted, or for --for when given.`,
		Args: cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			clusterCfg := s.app.Services.ClusterConfig
			if !clusterCfg.IsFilesystem() {
				return fmt.Errorf("watch requires a filesystem cluster, %q is a Kubernetes cluster", clusterCfg.Name)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			global := s.engine().GlobalNamespace()
			namespaces := []string{s.namespace}
			if includeGlobal && s.namespace != global {
				namespaces = append(namespaces, global)
			}

			lister := &printingLister{session: s, showEvents: showEvents, errOut: cmd.ErrOrStderr()}
			lister.ListRepositories(ctx, s.cluster(), s.namespace, includeGlobal)

			detector := watch.NewDetector(clusterCfg.FilesystemPath, namespaces, debounce)
			changes := make(chan watch.Change, 64)
			if err := detector.Start(ctx, changes); err != nil {
				return fmt.Errorf("failed to watch %s: %w", clusterCfg.FilesystemPath, err)
			}
			defer detector.Stop()

			watch.Relist(ctx, changes, lister, s.cluster(), global, []string{s.namespace}, includeGlobal)
			return nil
		}),
	}

	flags := cmd.Flags()
	flags.BoolVar(&includeGlobal, "include-global", true, "include and watch the repositories of the global namespace")
	flags.BoolVar(&showEvents, "events", false, "print lifecycle events instead of the repository table")
	flags.DurationVar(&debounce, "debounce", watch.DefaultDebounceInterval, "quiet period before a change triggers a re-list")
	flags.DurationVar(&duration, "for", 0, "stop watching after this long (0 watches until interrupted)")
	return cmd
}

// printingLister lists through the engine and prints the resulting view.
type printingLister struct {
	session    *session
	showEvents bool
	errOut     io.Writer
}

func (l *printingLister) ListRepositories(ctx context.Context, cluster, namespace string, includeGlobal bool) {
	s := l.session
	s.engine().ListRepositories(ctx, cluster, namespace, includeGlobal)

	var err error
	if l.showEvents {
		recorder := s.app.Services.Recorder
		recorded := recorder.Events()
		recorder.Reset()
		err = s.formatter.FormatEvents(recorded)
	} else {
		snapshot := s.app.Services.Store.Snapshot()
		if failure, ok := snapshot.Errors[api.OperationFetch]; ok && failure.Action == events.ActionListRepositories {
			failures := int64(1)
			if m, ok := s.engine().Metrics().GetActionMetrics(events.ActionListRepositories); ok {
				failures = m.Failures
			}
			fmt.Fprintf(l.errOut, "listing %s failed (%d failures while watching): %v\n", namespace, failures, failure.Err)
			return
		}
		err = s.formatter.FormatRepositories(snapshot.Repositories)
	}
	if err != nil {
		fmt.Fprintf(l.errOut, "failed to print: %v\n", err)
	}
}
