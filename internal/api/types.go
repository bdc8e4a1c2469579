package api

import (
	corev1 "k8s.io/api/core/v1"

	"apprepo/pkg/apis/kubeapps/v1alpha1"
)

// OperationKind tags a failed operation with the kind of change it attempted.
type OperationKind string

const (
	OperationCreate   OperationKind = "create"
	OperationUpdate   OperationKind = "update"
	OperationFetch    OperationKind = "fetch"
	OperationDelete   OperationKind = "delete"
	OperationValidate OperationKind = "validate"
)

// DefaultGlobalNamespace is the namespace whose repositories are visible everywhere
// unless configured otherwise.
const DefaultGlobalNamespace = "kubeapps"

// RepositoryKey identifies a repository within a cluster.
type RepositoryKey struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

func (k RepositoryKey) String() string {
	return k.Namespace + "/" + k.Name
}

// RepositoryForm is the user-facing description of a repository to create or update.
// The sync-job pod template is still raw YAML text at this point.
type RepositoryForm struct {
	Name            string
	Namespace       string
	URL             string
	Type            string
	AuthHeader      string
	AuthRegCreds    string
	CustomCA        string
	PodTemplate     string
	RegistrySecrets []string
	OCIRepositories []string
	SkipTLS         bool
	Filter          *v1alpha1.FilterRuleSpec
	Description     string
}

// Request converts the form into a client request carrying the decoded pod template.
func (f RepositoryForm) Request(podTemplate corev1.PodTemplateSpec) RepositoryRequest {
	return RepositoryRequest{
		Name:            f.Name,
		Namespace:       f.Namespace,
		URL:             f.URL,
		Type:            f.Type,
		AuthHeader:      f.AuthHeader,
		AuthRegCreds:    f.AuthRegCreds,
		CustomCA:        f.CustomCA,
		PodTemplate:     podTemplate,
		RegistrySecrets: f.RegistrySecrets,
		OCIRepositories: f.OCIRepositories,
		SkipTLS:         f.SkipTLS,
		Filter:          f.Filter,
		Description:     f.Description,
	}
}

// Validation returns the subset of the form that is probed by repository validation.
func (f RepositoryForm) Validation() ValidationRequest {
	return ValidationRequest{
		URL:             f.URL,
		Type:            f.Type,
		AuthHeader:      f.AuthHeader,
		AuthRegCreds:    f.AuthRegCreds,
		CustomCA:        f.CustomCA,
		OCIRepositories: f.OCIRepositories,
		SkipTLS:         f.SkipTLS,
	}
}

// RepositoryRequest is the payload of the Resource Client create and update calls.
type RepositoryRequest struct {
	Name            string
	Namespace       string
	URL             string
	Type            string
	AuthHeader      string
	AuthRegCreds    string
	CustomCA        string
	PodTemplate     corev1.PodTemplateSpec
	RegistrySecrets []string
	OCIRepositories []string
	SkipTLS         bool
	Filter          *v1alpha1.FilterRuleSpec
	Description     string
}

// ValidationRequest describes a repository endpoint to probe before it is saved.
type ValidationRequest struct {
	URL             string
	Type            string
	AuthHeader      string
	AuthRegCreds    string
	CustomCA        string
	OCIRepositories []string
	SkipTLS         bool
}

// ValidationResult is the response of a repository validation. Only Code 200 passes.
type ValidationResult struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Succeeded reports whether the validation passed.
func (r ValidationResult) Succeeded() bool {
	return r.Code == 200
}

// PullSecretRequest describes a docker registry credential to store as a pull secret.
type PullSecretRequest struct {
	Name      string
	Namespace string
	Username  string
	Password  string
	Email     string
	Server    string
}
