// Package v1alpha1 contains API Schema definitions for the kubeapps v1alpha1 API group.
//
// This package defines the AppRepository custom resource. An AppRepository declares a
// source of installable packages (a Helm chart index or an OCI registry) together with the
// credentials and sync-job settings needed to read it.
//
// # API Group: kubeapps.com/v1alpha1
//
// ## AppRepository
//
// Repositories created in the global namespace are visible to every other namespace.
// Credentials are never stored inline; the spec references Secrets in the same namespace.
//
// Example:
//
//	apiVersion: kubeapps.com/v1alpha1
//	kind: AppRepository
//	metadata:
//	  name: bitnami
//	  namespace: kubeapps
//	spec:
//	  type: helm
//	  url: https://charts.bitnami.com/bitnami
//	  auth:
//	    header:
//	      secretKeyRef:
//	        name: apprepo-bitnami
//	        key: authorizationHeader
//
// +kubebuilder:object:generate=true
// +groupName=kubeapps.com
package v1alpha1
