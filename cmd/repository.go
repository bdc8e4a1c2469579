package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// repositoryFlags are the form fields shared by create, update and validate.
type repositoryFlags struct {
	url             string
	repoType        string
	authHeader      string
	regCreds        string
	customCAFile    string
	ociRepositories []string
	skipTLS         bool

	// create and update only
	podTemplateFile string
	registrySecrets []string
	filterJQ        string
	description     string
}

func (f *repositoryFlags) bindProbe(flags *pflag.FlagSet) {
	flags.StringVar(&f.url, "url", "", "repository URL")
	flags.StringVar(&f.repoType, "type", v1alpha1.RepositoryTypeHelm, "repository type: helm or oci")
	flags.StringVar(&f.authHeader, "auth-header", "", "Authorization header sent to the repository")
	flags.StringVar(&f.regCreds, "docker-registry-creds", "", "dockerconfigjson credentials used instead of --auth-header")
	flags.StringVar(&f.customCAFile, "custom-ca-file", "", "PEM file with the CA certificate of the repository")
	flags.StringSliceVar(&f.ociRepositories, "oci-repository", nil, "OCI repository to include (repeatable)")
	flags.BoolVar(&f.skipTLS, "skip-tls-verify", false, "skip TLS certificate verification")
}

func (f *repositoryFlags) bindForm(flags *pflag.FlagSet) {
	f.bindProbe(flags)
	flags.StringVar(&f.podTemplateFile, "sync-job-pod-template-file", "", "YAML file with the pod template of the sync job")
	flags.StringSliceVar(&f.registrySecrets, "registry-secret", nil, "docker registry secret used by packages of the repository (repeatable)")
	flags.StringVar(&f.filterJQ, "filter-jq", "", "jq expression filtering the packages of the repository")
	flags.StringVar(&f.description, "description", "", "repository description")
}

func (f *repositoryFlags) customCA() (string, error) {
	if f.customCAFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(f.customCAFile)
	if err != nil {
		return "", fmt.Errorf("failed to read CA certificate: %w", err)
	}
	return string(data), nil
}

func (f *repositoryFlags) form(name, namespace string) (api.RepositoryForm, error) {
	ca, err := f.customCA()
	if err != nil {
		return api.RepositoryForm{}, err
	}

	var podTemplate string
	if f.podTemplateFile != "" {
		data, err := os.ReadFile(f.podTemplateFile)
		if err != nil {
			return api.RepositoryForm{}, fmt.Errorf("failed to read pod template: %w", err)
		}
		podTemplate = string(data)
	}

	form := api.RepositoryForm{
		Name:            name,
		Namespace:       namespace,
		URL:             f.url,
		Type:            f.repoType,
		AuthHeader:      f.authHeader,
		AuthRegCreds:    f.regCreds,
		CustomCA:        ca,
		PodTemplate:     podTemplate,
		RegistrySecrets: f.registrySecrets,
		OCIRepositories: f.ociRepositories,
		SkipTLS:         f.skipTLS,
		Description:     f.description,
	}
	if f.filterJQ != "" {
		form.Filter = &v1alpha1.FilterRuleSpec{JQ: f.filterJQ}
	}
	return form, nil
}

func (f *repositoryFlags) validationRequest() (api.ValidationRequest, error) {
	ca, err := f.customCA()
	if err != nil {
		return api.ValidationRequest{}, err
	}
	return api.ValidationRequest{
		URL:             f.url,
		Type:            f.repoType,
		AuthHeader:      f.authHeader,
		AuthRegCreds:    f.regCreds,
		CustomCA:        ca,
		OCIRepositories: f.ociRepositories,
		SkipTLS:         f.skipTLS,
	}, nil
}

func newCreateCmd(opts *globalOptions) *cobra.Command {
	flags := &repositoryFlags{}
	cmd := &cobra.Command{
		Use:   "create NAME --url URL",
		Short: "Create an AppRepository",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			form, err := flags.form(args[0], s.namespace)
			if err != nil {
				return err
			}
			s.engine().CreateRepository(cmd.Context(), s.cluster(), form)
			return s.printRepositoryOutcome(events.ActionCreateRepository)
		}),
	}
	flags.bindForm(cmd.Flags())
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	flags := &repositoryFlags{}
	cmd := &cobra.Command{
		Use:   "update NAME --url URL",
		Short: "Replace the spec of an AppRepository",
		Long: `Replace the spec of an existing AppRepository with the given flags.
Flags that are not given are cleared. The secrets referenced by the
updated repository are read back afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			form, err := flags.form(args[0], s.namespace)
			if err != nil {
				return err
			}
			s.engine().UpdateRepository(cmd.Context(), s.cluster(), form)
			return s.printRepositoryOutcome(events.ActionUpdateRepository)
		}),
	}
	flags.bindForm(cmd.Flags())
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func (s *session) printRepositoryOutcome(action string) error {
	e, err := s.outcome(action)
	if err != nil {
		return err
	}
	return s.formatter.FormatRepository(e.Payload.(*v1alpha1.AppRepository))
}

func newValidateCmd(opts *globalOptions) *cobra.Command {
	flags := &repositoryFlags{}
	cmd := &cobra.Command{
		Use:   "validate --url URL",
		Short: "Check that a repository can be reached with the given credentials",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			req, err := flags.validationRequest()
			if err != nil {
				return err
			}
			s.engine().ValidateRepository(cmd.Context(), s.cluster(), s.namespace, req)

			e, err := s.outcome(events.ActionValidateRepository)
			if err != nil {
				if result := s.app.Services.Store.Snapshot().Validation; result != nil && api.IsValidationFailure(err) {
					if fmtErr := s.formatter.FormatValidation(result); fmtErr != nil {
						return fmtErr
					}
				}
				return err
			}
			return s.formatter.FormatValidation(e.Payload.(*api.ValidationResult))
		}),
	}
	flags.bindProbe(cmd.Flags())
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newCheckChartCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check-chart REPOSITORY CHART",
		Short: "Check that a chart is served by an AppRepository",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(opts, func(cmd *cobra.Command, s *session, args []string) error {
			s.engine().CheckChartAvailability(cmd.Context(), s.cluster(), s.namespace, args[0], args[1])
			e, err := s.outcome(events.ActionCheckChartAvailability)
			if err != nil {
				return err
			}
			if s.structured() {
				return s.formatter.FormatRepository(e.Payload.(*v1alpha1.AppRepository))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chart %q is available in AppRepository %s/%s\n", args[1], s.namespace, args[0])
			return nil
		}),
	}
}
