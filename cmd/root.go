package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"apprepo/internal/api"
	"apprepo/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments, transport failure).
	ExitCodeError = 1
	// ExitCodeNotFound indicates that the repository, secret or chart does not exist.
	ExitCodeNotFound = 2
	// ExitCodeValidationFailed indicates that a repository failed validation.
	ExitCodeValidationFailed = 3
	// ExitCodeInvalidInput indicates a malformed pod template or configuration file.
	ExitCodeInvalidInput = 4
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	cluster    string
	namespace  string
	output     string
	noHeaders  bool
	debug      bool
	quiet      bool
}

// rootCmd represents the base command for the apprepo application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "apprepo",
		Short: "Manage Kubeapps AppRepositories across clusters",
		Long: `apprepo lists, creates, updates, validates and resyncs Kubeapps
AppRepositories and the secrets that belong to them, in Kubernetes clusters
or in directories of YAML files.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "configuration directory (default is $HOME/.config/apprepo)")
	flags.StringVar(&opts.cluster, "cluster", "", "cluster to operate on (default from configuration)")
	flags.StringVarP(&opts.namespace, "namespace", "n", "", "namespace (default is the global namespace)")
	flags.StringVarP(&opts.output, "output", "o", "table", "output format: table, plain, json or yaml")
	flags.BoolVar(&opts.noHeaders, "no-headers", false, "omit headers in table and plain output")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress output and logs")

	root.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newResyncCmd(opts),
		newValidateCmd(opts),
		newCheckChartCmd(opts),
		newSecretsCmd(opts),
		newCreatePullSecretCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return root
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles subcommands and flags.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "apprepo version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case api.IsNotFound(err):
		return ExitCodeNotFound
	case api.IsValidationFailure(err):
		return ExitCodeValidationFailed
	case api.IsParseError(err):
		return ExitCodeInvalidInput
	}

	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitCodeInvalidInput
	}
	var validationErrs config.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ExitCodeInvalidInput
	}
	return ExitCodeError
}
