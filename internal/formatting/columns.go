package formatting

import (
	"sort"
	"strconv"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/duration"

	"apprepo/internal/api"
	"apprepo/internal/events"
	"apprepo/internal/reconciler"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
	pkgstrings "apprepo/pkg/strings"
)

// tabular is the column view shared by the table and plain formatters.
type tabular struct {
	headers []string
	rows    [][]string
	empty   string
}

var now = time.Now

func repositoriesView(repos []v1alpha1.AppRepository) tabular {
	view := tabular{
		headers: []string{"Namespace", "Name", "Type", "URL", "Auth", "Resyncs", "Age", "Description"},
		empty:   "No AppRepositories found",
	}
	for i := range repos {
		repo := &repos[i]
		view.rows = append(view.rows, []string{
			repo.Namespace,
			repo.Name,
			orDash(repo.Spec.Type),
			repo.Spec.URL,
			authSummary(repo),
			strconv.FormatUint(uint64(repo.Spec.ResyncRequests), 10),
			age(repo.CreationTimestamp.Time),
			orDash(pkgstrings.Truncate(repo.Spec.Description, pkgstrings.DefaultDescriptionMaxLen)),
		})
	}
	return view
}

func repositoryView(repo *v1alpha1.AppRepository) tabular {
	view := tabular{headers: []string{"Field", "Value"}}
	add := func(field, value string) {
		view.rows = append(view.rows, []string{field, value})
	}

	add("Name", repo.Name)
	add("Namespace", repo.Namespace)
	add("UID", orDash(string(repo.UID)))
	add("Type", orDash(repo.Spec.Type))
	add("URL", repo.Spec.URL)
	add("Auth", authSummary(repo))
	if len(repo.Spec.OCIRepositories) > 0 {
		add("OCI Repositories", strings.Join(repo.Spec.OCIRepositories, ", "))
	}
	if len(repo.Spec.DockerRegistrySecrets) > 0 {
		add("Registry Secrets", strings.Join(repo.Spec.DockerRegistrySecrets, ", "))
	}
	add("Skip TLS", strconv.FormatBool(repo.Spec.TLSInsecureSkipVerify))
	if repo.Spec.FilterRule != nil && repo.Spec.FilterRule.JQ != "" {
		add("Filter", repo.Spec.FilterRule.JQ)
	}
	add("Resync Requests", strconv.FormatUint(uint64(repo.Spec.ResyncRequests), 10))
	if containers := repo.Spec.SyncJobPodTemplate.Spec.Containers; len(containers) > 0 {
		var images []string
		for _, c := range containers {
			images = append(images, c.Image)
		}
		add("Sync Images", strings.Join(images, ", "))
	}
	add("Age", age(repo.CreationTimestamp.Time))
	if repo.Spec.Description != "" {
		add("Description", repo.Spec.Description)
	}
	return view
}

func secretsView(secrets []corev1.Secret) tabular {
	view := tabular{
		headers: []string{"Namespace", "Name", "Type", "Owner", "Keys", "Age"},
		empty:   "No secrets found",
	}
	for i := range secrets {
		secret := &secrets[i]
		keys := make([]string, 0, len(secret.Data))
		for key := range secret.Data {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		view.rows = append(view.rows, []string{
			secret.Namespace,
			secret.Name,
			orDash(string(secret.Type)),
			owner(secret),
			orDash(strings.Join(keys, ",")),
			age(secret.CreationTimestamp.Time),
		})
	}
	return view
}

func validationView(result *api.ValidationResult) tabular {
	status := "failed"
	if result.Succeeded() {
		status = "ok"
	}
	return tabular{
		headers: []string{"Status", "Code", "Message"},
		rows:    [][]string{{status, strconv.Itoa(result.Code), orDash(result.Message)}},
	}
}

func resyncView(outcomes []reconciler.ResyncOutcome) tabular {
	view := tabular{
		headers: []string{"Namespace", "Name", "Result"},
		empty:   "Nothing to resync",
	}
	for _, outcome := range outcomes {
		result := "requested"
		if outcome.Err != nil {
			result = "failed: " + pkgstrings.Truncate(outcome.Err.Error(), 120)
		}
		view.rows = append(view.rows, []string{outcome.Key.Namespace, outcome.Key.Name, result})
	}
	return view
}

func eventsView(evts []events.Event) tabular {
	view := tabular{
		headers: []string{"Time", "Action", "Phase", "Target", "Detail"},
		empty:   "No events recorded",
	}
	for _, e := range evts {
		target := e.Namespace
		if e.Name != "" {
			target += "/" + e.Name
		}
		detail := e.Subject
		if e.Err != nil {
			detail = string(e.Kind) + ": " + pkgstrings.Truncate(e.Err.Error(), 120)
		}
		view.rows = append(view.rows, []string{
			e.Time.Format(time.TimeOnly),
			e.Action,
			string(e.Phase),
			orDash(target),
			orDash(detail),
		})
	}
	return view
}

func authSummary(repo *v1alpha1.AppRepository) string {
	var parts []string
	if header := repo.Spec.Auth.Header; header != nil {
		if header.SecretKeyRef.Key == corev1.DockerConfigJsonKey {
			parts = append(parts, "regcreds:"+header.SecretKeyRef.Name)
		} else {
			parts = append(parts, "header")
		}
	}
	if repo.Spec.Auth.CustomCA != nil {
		parts = append(parts, "ca")
	}
	if repo.Spec.TLSInsecureSkipVerify {
		parts = append(parts, "insecure")
	}
	return orDash(strings.Join(parts, ","))
}

func owner(secret *corev1.Secret) string {
	for _, ref := range secret.OwnerReferences {
		if ref.Kind == v1alpha1.Kind {
			return ref.Kind + "/" + ref.Name
		}
	}
	return "-"
}

func age(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return duration.HumanDuration(now().Sub(t))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
