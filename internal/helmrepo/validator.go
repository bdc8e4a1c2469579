package helmrepo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"apprepo/internal/api"
	"apprepo/pkg/apis/kubeapps/v1alpha1"
	"apprepo/pkg/logging"
	pkgstrings "apprepo/pkg/strings"
)

// Validator probes repository endpoints.
type Validator struct {
	opts HTTPOptions
}

// NewValidator creates a Validator using the given HTTP options.
func NewValidator(opts HTTPOptions) *Validator {
	return &Validator{opts: opts.withDefaults()}
}

// Validate checks that the endpoint serves a repository.
//
// The returned result carries the HTTP status of the probe; only 200 passes.
// Requests that never produce a response are returned as errors.
func (v *Validator) Validate(ctx context.Context, ep Endpoint) (*api.ValidationResult, error) {
	if strings.TrimSpace(ep.URL) == "" {
		return &api.ValidationResult{Code: http.StatusBadRequest, Message: "repository URL is required"}, nil
	}

	client, err := newHTTPClient(v.opts, ep)
	if err != nil {
		return nil, err
	}
	defer client.HTTPClient.CloseIdleConnections()

	switch ep.Type {
	case "", v1alpha1.RepositoryTypeHelm:
		return probe(ctx, client, ep, trimURL(ep.URL)+"/index.yaml")
	case v1alpha1.RepositoryTypeOCI:
		if len(ep.OCIRepositories) == 0 {
			return &api.ValidationResult{
				Code:    http.StatusBadRequest,
				Message: "at least one OCI repository is required",
			}, nil
		}
		for _, repo := range ep.OCIRepositories {
			target, err := ociTagsURL(ep.URL, repo)
			if err != nil {
				return nil, err
			}
			result, err := probe(ctx, client, ep, target)
			if err != nil {
				return nil, err
			}
			if !result.Succeeded() {
				return result, nil
			}
		}
		return &api.ValidationResult{Code: http.StatusOK, Message: "OK"}, nil
	default:
		return &api.ValidationResult{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("unsupported repository type %q", ep.Type),
		}, nil
	}
}

func probe(ctx context.Context, client *retryablehttp.Client, ep Endpoint, target string) (*api.ValidationResult, error) {
	code, body, err := get(ctx, client, ep, target)
	if err != nil {
		return nil, err
	}
	logging.Debug("helmrepo", "Probe %s returned %d", target, code)

	if code == http.StatusOK {
		return &api.ValidationResult{Code: code, Message: "OK"}, nil
	}

	msg := pkgstrings.Truncate(string(body), pkgstrings.DefaultDiagnosticMaxLen)
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &api.ValidationResult{Code: code, Message: msg}, nil
}

// ociTagsURL builds the registry v2 tags/list URL for one repository of an OCI
// registry. The oci:// scheme is served over https.
func ociTagsURL(base, repo string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse registry URL %s: %w", base, err)
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "oci" {
		scheme = "https"
	}
	if u.Host == "" {
		return "", fmt.Errorf("registry URL %s has no host", base)
	}

	name := strings.Trim(repo, "/")
	if prefix := strings.Trim(u.Path, "/"); prefix != "" {
		name = prefix + "/" + name
	}
	return fmt.Sprintf("%s://%s/v2/%s/tags/list", scheme, u.Host, name), nil
}
