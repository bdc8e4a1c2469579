package events

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var defaultTemplates = map[EventReason]string{
	ReasonAppRepositoryCreated:         `AppRepository {{.Name}} created in namespace {{.Namespace}}{{with .URL}} from {{.}}{{end}}`,
	ReasonAppRepositoryUpdated:         `AppRepository {{.Name}} updated in namespace {{.Namespace}}{{with .URL}}, now serving {{.}}{{end}}`,
	ReasonAppRepositoryDeleted:         `AppRepository {{.Name}} deleted from namespace {{.Namespace}}`,
	ReasonAppRepositoryResyncRequested: `Resync requested for AppRepository {{.Name}}`,
	ReasonAppRepositoryChartAvailable:  `Chart {{.Chart | quote}} is available in AppRepository {{.Name}}`,
	ReasonAppRepositoryFailed:          `{{.Action}} failed for AppRepository {{.Name}} ({{.Operation | default "unknown"}}){{with .Error}}: {{trunc 300 .}}{{end}}`,
}

// MessageTemplateEngine renders event messages from text/template sources with
// the sprig function library.
type MessageTemplateEngine struct {
	mu        sync.RWMutex
	templates map[EventReason]*template.Template
}

// NewMessageTemplateEngine creates an engine loaded with the default templates.
func NewMessageTemplateEngine() *MessageTemplateEngine {
	e := &MessageTemplateEngine{templates: make(map[EventReason]*template.Template)}
	for reason, text := range defaultTemplates {
		if err := e.SetTemplate(reason, text); err != nil {
			panic(fmt.Sprintf("invalid default template for %s: %v", reason, err))
		}
	}
	return e
}

// SetTemplate parses text and uses it for reason.
func (e *MessageTemplateEngine) SetTemplate(reason EventReason, text string) error {
	tmpl, err := template.New(string(reason)).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template for %s: %w", reason, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[reason] = tmpl
	return nil
}

// Render generates a message for the given event reason and data.
func (e *MessageTemplateEngine) Render(reason EventReason, data EventData) string {
	e.mu.RLock()
	tmpl, ok := e.templates[reason]
	e.mu.RUnlock()
	if !ok {
		return fmt.Sprintf("Event: %s for %s/%s", reason, data.Namespace, data.Name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Event: %s for %s/%s", reason, data.Namespace, data.Name)
	}
	return buf.String()
}
