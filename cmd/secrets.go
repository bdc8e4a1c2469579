package cmd

import (
	"github.com/spf13/cobra"
	corev1 "k8s.io/api/core/v1"

	"apprepo/internal/api"
	"apprepo/internal/events"
)

func newSecretsCmd(opts *globalOptions) *cobra.Command {
	var pull bool

	cmd := &cobra.Command{
		Use:   "secrets [NAME]",
		Short: "List the secrets of AppRepositories",
		Long: `List the secrets of the namespace that are owned by an AppRepository.
With --pull the docker registry secrets are listed instead. With a NAME a
single secret is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			ctx := cmd.Context()

			if len(args) == 1 {
				s.engine().FetchRepositorySecret(ctx, s.cluster(), s.namespace, args[0])
				e, err := s.outcome(events.ActionFetchRepositorySecret)
				if err != nil {
					return err
				}
				return s.formatter.FormatSecrets([]corev1.Secret{*e.Payload.(*corev1.Secret)})
			}

			action := events.ActionFetchRelatedSecrets
			if pull {
				action = events.ActionFetchImagePullSecrets
				s.engine().FetchImagePullSecrets(ctx, s.cluster(), s.namespace)
			} else {
				s.engine().FetchRelatedSecrets(ctx, s.cluster(), s.namespace)
			}

			e, err := s.outcome(action)
			if err != nil {
				return err
			}
			secrets, _ := e.Payload.([]corev1.Secret)
			return s.formatter.FormatSecrets(secrets)
		}),
	}

	cmd.Flags().BoolVar(&pull, "pull", false, "list docker registry secrets usable as image pull secrets")
	return cmd
}

func newCreatePullSecretCmd(opts *globalOptions) *cobra.Command {
	req := api.PullSecretRequest{}

	cmd := &cobra.Command{
		Use:   "create-pull-secret NAME --server SERVER --username USER --password PASSWORD",
		Short: "Create a docker registry secret for image pulls",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			req := req
			req.Name = args[0]
			req.Namespace = s.namespace

			s.engine().CreatePullSecret(cmd.Context(), s.cluster(), req)
			e, err := s.outcome(events.ActionCreatePullSecret)
			if err != nil {
				return err
			}
			return s.formatter.FormatSecrets([]corev1.Secret{*e.Payload.(*corev1.Secret)})
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Server, "server", "", "registry server")
	flags.StringVar(&req.Username, "username", "", "registry user")
	flags.StringVar(&req.Password, "password", "", "registry password")
	flags.StringVar(&req.Email, "email", "", "registry email")
	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
