package formatting

import (
	"encoding/json"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/internal/reconciler"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// StructuredFormatter emits JSON or YAML. Kubernetes objects keep their API
// field names in both formats.
type StructuredFormatter struct {
	options Options
}

// NewStructuredFormatter creates a JSON or YAML formatter.
func NewStructuredFormatter(options Options) Formatter {
	return &StructuredFormatter{options: options}
}

type resyncOutcomeView struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Error     string `json:"error,omitempty"`
}

type eventView struct {
	Time      time.Time `json:"time"`
	Action    string    `json:"action"`
	Phase     string    `json:"phase"`
	Kind      string    `json:"kind,omitempty"`
	Cluster   string    `json:"cluster,omitempty"`
	Namespace string    `json:"namespace,omitempty"`
	Name      string    `json:"name,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func (f *StructuredFormatter) FormatRepositories(repos []v1alpha1.AppRepository) error {
	if repos == nil {
		repos = []v1alpha1.AppRepository{}
	}
	return f.write(repos)
}

func (f *StructuredFormatter) FormatRepository(repo *v1alpha1.AppRepository) error {
	return f.write(repo)
}

// FormatSecrets omits secret data; only the key names are shown.
func (f *StructuredFormatter) FormatSecrets(secrets []corev1.Secret) error {
	out := make([]corev1.Secret, 0, len(secrets))
	for i := range secrets {
		redacted := secrets[i].DeepCopy()
		for key := range redacted.Data {
			redacted.Data[key] = nil
		}
		redacted.StringData = nil
		out = append(out, *redacted)
	}
	return f.write(out)
}

func (f *StructuredFormatter) FormatValidation(result *api.ValidationResult) error {
	return f.write(result)
}

func (f *StructuredFormatter) FormatResyncOutcomes(outcomes []reconciler.ResyncOutcome) error {
	views := make([]resyncOutcomeView, 0, len(outcomes))
	for _, outcome := range outcomes {
		view := resyncOutcomeView{Namespace: outcome.Key.Namespace, Name: outcome.Key.Name}
		if outcome.Err != nil {
			view.Error = outcome.Err.Error()
		}
		views = append(views, view)
	}
	return f.write(views)
}

func (f *StructuredFormatter) FormatEvents(evts []events.Event) error {
	views := make([]eventView, 0, len(evts))
	for _, e := range evts {
		view := eventView{
			Time:      e.Time,
			Action:    e.Action,
			Phase:     string(e.Phase),
			Kind:      string(e.Kind),
			Cluster:   e.Cluster,
			Namespace: e.Namespace,
			Name:      e.Name,
			Subject:   e.Subject,
		}
		if e.Err != nil {
			view.Error = e.Err.Error()
		}
		views = append(views, view)
	}
	return f.write(views)
}

func (f *StructuredFormatter) SetOptions(options Options) {
	f.options = options
}

func (f *StructuredFormatter) GetOptions() Options {
	return f.options
}

func (f *StructuredFormatter) write(v interface{}) error {
	out := f.options.writer()
	if f.options.Format == FormatYAML {
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = out.Write(data)
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
