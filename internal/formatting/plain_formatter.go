package formatting

import (
	"fmt"
	"io"
	"strings"

	corev1 "k8s.io/api/core/v1"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/internal/reconciler"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// PlainFormatter prints kubectl-style columns without box drawing, for
// piping into grep, awk and cut.
type PlainFormatter struct {
	options Options
}

// NewPlainFormatter creates a new plain formatter
func NewPlainFormatter(options Options) Formatter {
	return &PlainFormatter{options: options}
}

func (f *PlainFormatter) FormatRepositories(repos []v1alpha1.AppRepository) error {
	return f.render(repositoriesView(repos))
}

func (f *PlainFormatter) FormatRepository(repo *v1alpha1.AppRepository) error {
	return f.render(repositoryView(repo))
}

func (f *PlainFormatter) FormatSecrets(secrets []corev1.Secret) error {
	return f.render(secretsView(secrets))
}

func (f *PlainFormatter) FormatValidation(result *api.ValidationResult) error {
	return f.render(validationView(result))
}

func (f *PlainFormatter) FormatResyncOutcomes(outcomes []reconciler.ResyncOutcome) error {
	return f.render(resyncView(outcomes))
}

func (f *PlainFormatter) FormatEvents(evts []events.Event) error {
	return f.render(eventsView(evts))
}

func (f *PlainFormatter) SetOptions(options Options) {
	f.options = options
}

func (f *PlainFormatter) GetOptions() Options {
	return f.options
}

func (f *PlainFormatter) render(view tabular) error {
	w := NewPlainTableWriter(f.options.writer())
	w.SetHeaders(view.headers)
	w.SetNoHeaders(f.options.NoHeaders)
	for _, row := range view.rows {
		w.AppendRow(row)
	}
	w.Render()
	return nil
}

// PlainTableWriter provides kubectl-style plain table output without box-drawing characters.
type PlainTableWriter struct {
	// headers contains the column header names
	headers []string
	// rows contains the table data rows
	rows [][]string
	// columnWidths tracks the maximum width of each column
	columnWidths []int
	// minPadding is the minimum space between columns
	minPadding int
	// showHeaders controls whether to display the header row
	showHeaders bool
	output      io.Writer
}

// NewPlainTableWriter creates a new plain table writer with kubectl-style formatting.
// By default, headers are shown. Use SetNoHeaders(true) to suppress them.
func NewPlainTableWriter(output io.Writer) *PlainTableWriter {
	return &PlainTableWriter{
		minPadding:  3,
		showHeaders: true,
		output:      output,
	}
}

// SetHeaders sets the column headers for the table.
// Headers are displayed in uppercase.
func (w *PlainTableWriter) SetHeaders(headers []string) {
	w.headers = make([]string, len(headers))
	w.columnWidths = make([]int, len(headers))
	for i, h := range headers {
		upper := strings.ToUpper(h)
		w.headers[i] = upper
		w.columnWidths[i] = len(upper)
	}
}

// SetNoHeaders controls whether to suppress the header row.
func (w *PlainTableWriter) SetNoHeaders(noHeaders bool) {
	w.showHeaders = !noHeaders
}

// AppendRow adds a row to the table, padding or cutting it to the header width.
func (w *PlainTableWriter) AppendRow(row []string) {
	normalized := make([]string, len(w.headers))
	for i := range w.headers {
		if i < len(row) {
			normalized[i] = row[i]
			if len(row[i]) > w.columnWidths[i] {
				w.columnWidths[i] = len(row[i])
			}
		}
	}
	w.rows = append(w.rows, normalized)
}

// Render outputs the table in kubectl-style format.
func (w *PlainTableWriter) Render() {
	if len(w.headers) == 0 {
		return
	}
	if len(w.rows) == 0 && !w.showHeaders {
		return
	}

	if w.showHeaders {
		w.printRow(w.headers)
	}
	for _, row := range w.rows {
		w.printRow(row)
	}
}

func (w *PlainTableWriter) printRow(row []string) {
	var sb strings.Builder
	for i, cell := range row {
		if i == len(row)-1 {
			sb.WriteString(cell)
		} else {
			sb.WriteString(fmt.Sprintf("%-*s", w.columnWidths[i]+w.minPadding, cell))
		}
	}
	fmt.Fprintln(w.output, strings.TrimRight(sb.String(), " "))
}
