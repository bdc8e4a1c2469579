package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"apprepo/internal/events"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var includeGlobal bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List AppRepositories of a namespace",
		Long: `List the AppRepositories of a namespace. Repositories of the global
namespace are included unless --include-global=false is given; a namespace's
own repository wins over a global one with the same identity.`,
		Args: cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			s.engine().ListRepositories(cmd.Context(), s.cluster(), s.namespace, includeGlobal)
			e, err := s.outcome(events.ActionListRepositories)
			if err != nil {
				return err
			}
			repos, _ := e.Payload.([]v1alpha1.AppRepository)
			return s.formatter.FormatRepositories(repos)
		}),
	}

	cmd.Flags().BoolVar(&includeGlobal, "include-global", true, "include the repositories of the global namespace")
	return cmd
}

func newGetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show a single AppRepository",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			s.engine().FetchRepository(cmd.Context(), s.cluster(), s.namespace, args[0])
			e, err := s.outcome(events.ActionFetchRepository)
			if err != nil {
				return err
			}
			return s.formatter.FormatRepository(e.Payload.(*v1alpha1.AppRepository))
		}),
	}
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an AppRepository",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			if !s.engine().DeleteRepository(cmd.Context(), s.cluster(), s.namespace, args[0]) {
				_, err := s.outcome(events.ActionDeleteRepository)
				return err
			}
			if !s.structured() {
				fmt.Fprintf(cmd.OutOrStdout(), "AppRepository %q deleted from namespace %s\n", args[0], s.namespace)
			}
			return nil
		}),
	}
}
