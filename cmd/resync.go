package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/internal/reconciler"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

func newResyncCmd(opts *globalOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "resync [NAME...]",
		Short: "Ask AppRepositories to sync again",
		Long: `Bump the resync counter of the named AppRepositories so that their sync
jobs run again. With --all every repository of the namespace is resynced;
one failure does not stop the others.`,
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("either repository names or --all must be given")
			}

			var keys []api.RepositoryKey
			if all {
				s.engine().ListRepositories(cmd.Context(), s.cluster(), s.namespace, false)
				e, err := s.outcome(events.ActionListRepositories)
				if err != nil {
					return err
				}
				repos, _ := e.Payload.([]v1alpha1.AppRepository)
				for _, repo := range repos {
					keys = append(keys, api.RepositoryKey{Namespace: repo.Namespace, Name: repo.Name})
				}
			} else {
				for _, name := range args {
					keys = append(keys, api.RepositoryKey{Namespace: s.namespace, Name: name})
				}
			}

			var sp *spinner.Spinner
			if !s.quiet && !s.structured() && len(keys) > 0 {
				sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				sp.Suffix = fmt.Sprintf(" Resyncing %d AppRepositories...", len(keys))
				sp.Start()
			}

			var outcomes []reconciler.ResyncOutcome
			if !all && len(keys) == 1 {
				s.engine().ResyncRepository(cmd.Context(), s.cluster(), keys[0].Namespace, keys[0].Name)
				_, err := s.outcome(events.ActionResyncRepository)
				outcomes = []reconciler.ResyncOutcome{{Key: keys[0], Err: err}}
			} else {
				outcomes = s.engine().ResyncAllRepositories(cmd.Context(), s.cluster(), keys)
			}

			if sp != nil {
				sp.Stop()
			}

			if err := s.formatter.FormatResyncOutcomes(outcomes); err != nil {
				return err
			}
			return resyncError(outcomes)
		}),
	}

	cmd.Flags().BoolVar(&all, "all", false, "resync every AppRepository of the namespace")
	return cmd
}

// resyncError summarizes failed outcomes. A single failure keeps its type so
// the exit code reflects it.
func resyncError(outcomes []reconciler.ResyncOutcome) error {
	var failed []error
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed = append(failed, outcome.Err)
		}
	}
	switch len(failed) {
	case 0:
		return nil
	case 1:
		return failed[0]
	default:
		return fmt.Errorf("%d of %d resyncs failed", len(failed), len(outcomes))
	}
}
