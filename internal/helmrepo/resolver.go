package helmrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-retryablehttp"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"

	"apprepo/internal/api"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
	"apprepo/pkg/logging"
)

// RepositorySource looks up repositories and the secrets they reference.
type RepositorySource interface {
	GetAppRepository(ctx context.Context, cluster, namespace, name string) (*v1alpha1.AppRepository, error)
	GetSecret(ctx context.Context, cluster, namespace, name string) (*corev1.Secret, error)
}

// ChartResolver lists the versions of charts served by stored repositories.
type ChartResolver struct {
	source RepositorySource
	opts   HTTPOptions
}

// NewChartResolver creates a ChartResolver backed by source.
func NewChartResolver(source RepositorySource, opts HTTPOptions) *ChartResolver {
	return &ChartResolver{source: source, opts: opts.withDefaults()}
}

// indexFile is the subset of a Helm index.yaml needed to list versions.
type indexFile struct {
	APIVersion string                    `json:"apiVersion"`
	Entries    map[string][]chartVersion `json:"entries"`
}

type chartVersion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type tagList struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// FetchVersions resolves ref ("repo/chart") in namespace and returns the chart's
// versions sorted newest first. A chart that the repository does not serve
// yields a NotFoundError.
func (r *ChartResolver) FetchVersions(ctx context.Context, cluster, namespace, ref string) ([]string, error) {
	repoName, chartName, ok := strings.Cut(ref, "/")
	if !ok || repoName == "" || chartName == "" {
		return nil, fmt.Errorf("invalid chart reference %q, expected repo/chart", ref)
	}

	repo, err := r.source.GetAppRepository(ctx, cluster, namespace, repoName)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository %s/%s: %w", namespace, repoName, err)
	}

	ep, err := EndpointFor(ctx, r.source, cluster, repo)
	if err != nil {
		return nil, err
	}
	client, err := newHTTPClient(r.opts, ep)
	if err != nil {
		return nil, err
	}
	defer client.HTTPClient.CloseIdleConnections()

	var versions []string
	if repo.IsOCI() {
		versions, err = r.ociVersions(ctx, client, ep, repo, chartName)
	} else {
		versions, err = r.indexVersions(ctx, client, ep, chartName)
	}
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, api.NewNotFoundError("chart", chartName)
	}

	logging.Debug("helmrepo", "Resolved %d versions of %s in %s/%s", len(versions), chartName, namespace, repoName)
	return SortVersions(versions), nil
}

func (r *ChartResolver) indexVersions(ctx context.Context, client *retryablehttp.Client, ep Endpoint, chartName string) ([]string, error) {
	target := trimURL(ep.URL) + "/index.yaml"
	code, body, err := get(ctx, client, ep, target)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", target, code)
	}

	var index indexFile
	if err := yaml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", target, err)
	}

	entries, ok := index.Entries[chartName]
	if !ok {
		return nil, api.NewNotFoundError("chart", chartName)
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		versions = append(versions, entry.Version)
	}
	return versions, nil
}

func (r *ChartResolver) ociVersions(ctx context.Context, client *retryablehttp.Client, ep Endpoint, repo *v1alpha1.AppRepository, chartName string) ([]string, error) {
	if len(repo.Spec.OCIRepositories) > 0 && !slices.Contains(repo.Spec.OCIRepositories, chartName) {
		return nil, api.NewNotFoundError("chart", chartName)
	}

	target, err := ociTagsURL(ep.URL, chartName)
	if err != nil {
		return nil, err
	}
	code, body, err := get(ctx, client, ep, target)
	if err != nil {
		return nil, err
	}
	switch code {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, api.NewNotFoundError("chart", chartName)
	default:
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %d", target, code)
	}

	var tags tagList
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, fmt.Errorf("failed to parse tag list %s: %w", target, err)
	}
	return tags.Tags, nil
}

// SortVersions orders semantic versions newest first. Strings that are not
// semantic versions keep their relative order after the valid ones.
func SortVersions(raw []string) []string {
	valid := make([]*semver.Version, 0, len(raw))
	var invalid []string
	for _, s := range raw {
		v, err := semver.NewVersion(s)
		if err != nil {
			invalid = append(invalid, s)
			continue
		}
		valid = append(valid, v)
	}

	slices.SortStableFunc(valid, func(a, b *semver.Version) int {
		return b.Compare(a)
	})

	out := make([]string, 0, len(raw))
	for _, v := range valid {
		out = append(out, v.Original())
	}
	return append(out, invalid...)
}

// EndpointFor builds the endpoint of a stored repository, loading the
// authorization header and custom CA from the secrets it references.
// A header secret holding a docker config is turned into basic auth for the
// repository host.
func EndpointFor(ctx context.Context, source RepositorySource, cluster string, repo *v1alpha1.AppRepository) (Endpoint, error) {
	ep := Endpoint{
		URL:             repo.Spec.URL,
		Type:            repo.Spec.Type,
		OCIRepositories: repo.Spec.OCIRepositories,
		SkipTLS:         repo.Spec.TLSInsecureSkipVerify,
	}

	if ref := repo.Spec.Auth.Header; ref != nil && ref.SecretKeyRef.Name != "" {
		value, err := secretValue(ctx, source, cluster, repo.Namespace, ref.SecretKeyRef)
		if err != nil {
			return ep, err
		}
		if ref.SecretKeyRef.Key == corev1.DockerConfigJsonKey {
			user, pass, err := RegistryCredentials(value, repo.Spec.URL)
			if err != nil {
				return ep, err
			}
			ep.Username, ep.Password = user, pass
		} else {
			ep.AuthHeader = string(value)
		}
	}

	if ref := repo.Spec.Auth.CustomCA; ref != nil && ref.SecretKeyRef.Name != "" {
		value, err := secretValue(ctx, source, cluster, repo.Namespace, ref.SecretKeyRef)
		if err != nil {
			return ep, err
		}
		ep.CustomCA = string(value)
	}

	return ep, nil
}

func secretValue(ctx context.Context, source RepositorySource, cluster, namespace string, sel corev1.SecretKeySelector) ([]byte, error) {
	secret, err := source.GetSecret(ctx, cluster, namespace, sel.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get secret %s/%s: %w", namespace, sel.Name, err)
	}
	value, ok := secret.Data[sel.Key]
	if !ok {
		return nil, fmt.Errorf("secret %s/%s has no key %q", namespace, sel.Name, sel.Key)
	}
	return value, nil
}
