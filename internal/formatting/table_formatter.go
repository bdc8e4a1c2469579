package formatting

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	corev1 "k8s.io/api/core/v1"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/internal/reconciler"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

func (f *TableFormatter) FormatRepositories(repos []v1alpha1.AppRepository) error {
	return f.render(repositoriesView(repos), len(repos))
}

func (f *TableFormatter) FormatRepository(repo *v1alpha1.AppRepository) error {
	return f.render(repositoryView(repo), -1)
}

func (f *TableFormatter) FormatSecrets(secrets []corev1.Secret) error {
	return f.render(secretsView(secrets), len(secrets))
}

func (f *TableFormatter) FormatValidation(result *api.ValidationResult) error {
	return f.render(validationView(result), -1)
}

func (f *TableFormatter) FormatResyncOutcomes(outcomes []reconciler.ResyncOutcome) error {
	return f.render(resyncView(outcomes), len(outcomes))
}

func (f *TableFormatter) FormatEvents(evts []events.Event) error {
	return f.render(eventsView(evts), len(evts))
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.writer())
	t.SetStyle(table.StyleRounded)
	return t
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(icon, message string) string {
	return fmt.Sprintf("%s %s\n", text.FgYellow.Sprint(icon), text.FgYellow.Sprint(message))
}

// render prints view; total is the item count shown in the footer, or -1 for none.
func (f *TableFormatter) render(view tabular, total int) error {
	out := f.options.writer()
	if total == 0 {
		_, err := fmt.Fprint(out, f.formatEmptyMessage("📋", view.empty))
		return err
	}

	t := f.createTable()
	if !f.options.NoHeaders {
		header := make(table.Row, len(view.headers))
		for i, h := range view.headers {
			header[i] = text.FgHiCyan.Sprint(h)
		}
		t.AppendHeader(header)
	}
	for _, row := range view.rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		t.AppendRow(r)
	}
	t.Render()

	if total > 0 {
		_, err := fmt.Fprintf(out, "%s %s\n", text.FgHiBlue.Sprint("Total:"), text.FgHiWhite.Sprint(total))
		return err
	}
	return nil
}
