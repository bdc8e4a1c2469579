// Package formatting renders repositories, secrets and engine results for
// the CLI as tables, kubectl-style plain columns, JSON or YAML.
package formatting

import (
	"fmt"
	"io"
	"os"

	corev1 "k8s.io/api/core/v1"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/internal/reconciler"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatPlain OutputFormat = "plain" // kubectl-style columns
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Formats lists the accepted values of --output.
var Formats = []OutputFormat{FormatTable, FormatPlain, FormatJSON, FormatYAML}

// ParseFormat validates an --output value.
func ParseFormat(s string) (OutputFormat, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q (expected one of %v)", s, Formats)
}

// Options configures the formatter behavior
type Options struct {
	Format    OutputFormat
	NoHeaders bool      // Omit the header row of tabular output
	Output    io.Writer // Defaults to os.Stdout
}

func (o Options) writer() io.Writer {
	if o.Output == nil {
		return os.Stdout
	}
	return o.Output
}

// Formatter renders command results.
type Formatter interface {
	FormatRepositories(repos []v1alpha1.AppRepository) error
	FormatRepository(repo *v1alpha1.AppRepository) error
	FormatSecrets(secrets []corev1.Secret) error
	FormatValidation(result *api.ValidationResult) error
	FormatResyncOutcomes(outcomes []reconciler.ResyncOutcome) error
	FormatEvents(evts []events.Event) error

	// Configuration
	SetOptions(options Options)
	GetOptions() Options
}

// NewFormatter creates the formatter for options.Format.
func NewFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON, FormatYAML:
		return NewStructuredFormatter(options)
	case FormatPlain:
		return NewPlainFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}
