package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestNotFoundError_Message(t *testing.T) {
	assert.Equal(t, "secret foo not found", NewNotFoundError("secret", "foo").Error())

	err := NewChartNotFoundError("nginx", "bitnami")
	assert.Equal(t, "Chart nginx not found in the repository bitnami.", err.Error())
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", err)))
}

func TestValidationFailure_Error(t *testing.T) {
	err := &ValidationFailure{Result: ValidationResult{Code: 409, Message: "forbidden"}}
	assert.Equal(t, `{"code":409,"message":"forbidden"}`, err.Error())
	assert.True(t, IsValidationFailure(err))
	assert.False(t, IsTransport(err))
}

func TestParseError_Error(t *testing.T) {
	assert.Equal(t, "failed to parse pod template (line 3): bad indent",
		(&ParseError{Line: 3, Msg: "bad indent"}).Error())
	assert.Equal(t, "failed to parse pod template: bad",
		(&ParseError{Msg: "bad"}).Error())
}

func TestConflictError_Error(t *testing.T) {
	err := &ConflictError{ResourceType: "secret", ResourceName: "apprepo-a"}
	assert.Equal(t, "secret apprepo-a already exists", err.Error())
	assert.True(t, IsConflict(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsTransport(err))
}

func TestClassify(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Classify(nil))
	})

	t.Run("taxonomy errors unchanged", func(t *testing.T) {
		for _, err := range []error{
			NewNotFoundError("secret", "a"),
			&TransportError{Op: "list", Err: errors.New("boom")},
			&ValidationFailure{Result: ValidationResult{Code: 500}},
			&ParseError{Msg: "x"},
			&ConflictError{ResourceType: "secret", ResourceName: "apprepo-a"},
		} {
			assert.Same(t, err, Classify(err))
		}
	})

	t.Run("kubernetes not found", func(t *testing.T) {
		k8sErr := apierrors.NewNotFound(schema.GroupResource{Group: "kubeapps.com", Resource: "apprepositories"}, "bitnami")
		classified := Classify(k8sErr)
		require.True(t, IsNotFound(classified))

		var nf *NotFoundError
		require.True(t, errors.As(classified, &nf))
		assert.Equal(t, "bitnami", nf.ResourceName)
		assert.Equal(t, "apprepositories", nf.ResourceType)
		assert.True(t, apierrors.IsNotFound(nf))
	})

	t.Run("anything else is transport", func(t *testing.T) {
		cause := errors.New("connection refused")
		classified := Classify(cause)
		assert.True(t, IsTransport(classified))
		assert.ErrorIs(t, classified, cause)
		assert.Equal(t, "connection refused", classified.Error())
	})
}

func TestRepositoryForm_Conversions(t *testing.T) {
	form := RepositoryForm{
		Name:            "bitnami",
		Namespace:       "default",
		URL:             "https://charts.bitnami.com/bitnami",
		Type:            "helm",
		AuthHeader:      "Bearer x",
		CustomCA:        "ca",
		OCIRepositories: []string{"nginx"},
		SkipTLS:         true,
	}

	req := form.Validation()
	assert.Equal(t, form.URL, req.URL)
	assert.Equal(t, form.AuthHeader, req.AuthHeader)
	assert.True(t, req.SkipTLS)

	assert.Equal(t, "default/bitnami", RepositoryKey{Name: "bitnami", Namespace: "default"}.String())
	assert.True(t, ValidationResult{Code: 200}.Succeeded())
	assert.False(t, ValidationResult{Code: 201}.Succeeded())
}
