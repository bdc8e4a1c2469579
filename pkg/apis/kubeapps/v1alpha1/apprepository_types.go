package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// Kind is the kind name of the AppRepository resource. Secrets owned by a
	// repository carry an owner reference with this kind.
	Kind = "AppRepository"

	// ResourceName is the plural resource name used in API paths and errors.
	ResourceName = "apprepositories"

	// RepositoryTypeHelm is a repository served as a Helm chart index (index.yaml).
	RepositoryTypeHelm = "helm"

	// RepositoryTypeOCI is a repository served by an OCI registry.
	RepositoryTypeOCI = "oci"
)

// AppRepositorySpec defines the desired state of AppRepository
type AppRepositorySpec struct {
	// Type of the repository.
	// +kubebuilder:validation:Enum=helm;oci
	// +kubebuilder:default=helm
	Type string `json:"type,omitempty"`

	// URL of the repository. For Helm repositories this is the directory that
	// contains index.yaml; for OCI repositories it is the registry base URL.
	// +kubebuilder:validation:Required
	URL string `json:"url"`

	// Auth references the secrets used to authenticate against the repository.
	Auth AppRepositoryAuth `json:"auth,omitempty"`

	// DockerRegistrySecrets lists image pull secrets that are made available to
	// the charts served by this repository.
	DockerRegistrySecrets []string `json:"dockerRegistrySecrets,omitempty"`

	// SyncJobPodTemplate customises the pod that synchronises the repository.
	SyncJobPodTemplate corev1.PodTemplateSpec `json:"syncJobPodTemplate,omitempty"`

	// ResyncRequests is incremented to request a new synchronisation.
	ResyncRequests uint `json:"resyncRequests,omitempty"`

	// OCIRepositories lists the repositories inside an OCI registry that hold charts.
	OCIRepositories []string `json:"ociRepositories,omitempty"`

	// TLSInsecureSkipVerify disables verification of the repository's TLS certificate.
	TLSInsecureSkipVerify bool `json:"tlsInsecureSkipVerify,omitempty"`

	// FilterRule restricts which packages of the repository are imported.
	FilterRule *FilterRuleSpec `json:"filterRule,omitempty"`

	// Description is a human readable description of the repository.
	// +kubebuilder:validation:MaxLength=500
	Description string `json:"description,omitempty"`
}

// AppRepositoryAuth holds the secret references used for authentication.
type AppRepositoryAuth struct {
	// Header references a secret whose value is sent as the Authorization header.
	Header *AppRepositoryAuthHeader `json:"header,omitempty"`

	// CustomCA references a secret that holds a PEM encoded CA bundle.
	CustomCA *AppRepositoryCustomCA `json:"customCA,omitempty"`
}

// AppRepositoryAuthHeader references the secret key holding the Authorization header.
type AppRepositoryAuthHeader struct {
	SecretKeyRef corev1.SecretKeySelector `json:"secretKeyRef"`
}

// AppRepositoryCustomCA references the secret key holding a custom CA bundle.
type AppRepositoryCustomCA struct {
	SecretKeyRef corev1.SecretKeySelector `json:"secretKeyRef"`
}

// FilterRuleSpec defines a jq expression evaluated against each package, plus the
// variables made available to it.
type FilterRuleSpec struct {
	JQ        string            `json:"jq,omitempty"`
	Variables map[string]string `json:"variables,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:shortName=apprepos
// +kubebuilder:printcolumn:name="Type",type="string",JSONPath=".spec.type"
// +kubebuilder:printcolumn:name="URL",type="string",JSONPath=".spec.url"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// AppRepository is the Schema for the apprepositories API
type AppRepository struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec AppRepositorySpec `json:"spec,omitempty"`
}

// +kubebuilder:object:root=true

// AppRepositoryList contains a list of AppRepository
type AppRepositoryList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AppRepository `json:"items"`
}

// HeaderSecretName returns the name of the secret referenced for the
// Authorization header, or "" when none is declared.
func (r *AppRepository) HeaderSecretName() string {
	if r.Spec.Auth.Header == nil {
		return ""
	}
	return r.Spec.Auth.Header.SecretKeyRef.Name
}

// CustomCASecretName returns the name of the secret referenced for the custom CA,
// or "" when none is declared.
func (r *AppRepository) CustomCASecretName() string {
	if r.Spec.Auth.CustomCA == nil {
		return ""
	}
	return r.Spec.Auth.CustomCA.SecretKeyRef.Name
}

// IsOCI reports whether the repository is served by an OCI registry.
func (r *AppRepository) IsOCI() bool {
	return r.Spec.Type == RepositoryTypeOCI
}

func init() {
	SchemeBuilder.Register(&AppRepository{}, &AppRepositoryList{})
}
