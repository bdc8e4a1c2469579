package api

import (
	"encoding/json"
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// NotFoundError represents a resource not found error with contextual information.
//
// It is produced both when a cluster reports a missing object and when the engine
// synthesizes a domain-specific "not found" message (for example a chart that is
// absent from a repository index).
type NotFoundError struct {
	// ResourceType categorizes the type of resource that was not found
	// (e.g., "apprepository", "secret", "chart")
	ResourceType string

	// ResourceName is the specific identifier of the resource that was not found
	ResourceName string

	// Message provides a custom error message if the default format is insufficient
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
//
// Example:
//
//	repo, err := repos.GetAppRepository(ctx, cluster, ns, name)
//	if api.IsNotFound(err) {
//	    // the repository was deleted in the meantime
//	}
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// NewNotFoundErrorWithMessage creates a new NotFoundError with a custom message.
func NewNotFoundErrorWithMessage(resourceType, resourceName, message string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
		Message:      message,
	}
}

// NewChartNotFoundError creates the error reported when a chart cannot be resolved
// in a repository.
func NewChartNotFoundError(chartName, repoName string) *NotFoundError {
	return NewNotFoundErrorWithMessage("chart", chartName,
		fmt.Sprintf("Chart %s not found in the repository %s.", chartName, repoName))
}

// TransportError wraps a network or API failure raised while talking to a cluster
// or a repository endpoint.
type TransportError struct {
	// Op describes the call that failed (e.g., "list apprepositories").
	Op string

	Err error
}

func (e *TransportError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is or wraps a TransportError.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// ValidationFailure reports a validation response whose code is not 200.
// It carries the full result so callers can show the diagnostic payload.
type ValidationFailure struct {
	Result ValidationResult
}

// Error returns the serialized validation result.
func (e *ValidationFailure) Error() string {
	data, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Sprintf("validation failed with code %d: %s", e.Result.Code, e.Result.Message)
	}
	return string(data)
}

// IsValidationFailure reports whether err is or wraps a ValidationFailure.
func IsValidationFailure(err error) bool {
	var validationErr *ValidationFailure
	return errors.As(err, &validationErr)
}

// ParseError reports malformed pod-template text.
type ParseError struct {
	// Line is the 1-based line of the error, or 0 when unknown.
	Line int

	Msg string

	Err error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse pod template (line %d): %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("failed to parse pod template: %s", e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// ConflictError reports an existing object that an operation refuses to take
// over, such as a secret with the name of a repository secret that no
// AppRepository owns.
type ConflictError struct {
	ResourceType string
	ResourceName string
	Message      string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s already exists", e.ResourceType, e.ResourceName)
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var conflictErr *ConflictError
	return errors.As(err, &conflictErr)
}

// Classify maps an arbitrary error onto the error taxonomy.
//
// Errors already in the taxonomy are returned unchanged. Kubernetes NotFound
// responses become NotFoundError; anything else is a TransportError.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case IsNotFound(err), IsTransport(err), IsValidationFailure(err), IsParseError(err), IsConflict(err):
		return err
	case apierrors.IsNotFound(err):
		nf := &NotFoundError{Err: err, Message: err.Error()}
		var status apierrors.APIStatus
		if errors.As(err, &status) {
			if details := status.Status().Details; details != nil {
				nf.ResourceType = details.Kind
				nf.ResourceName = details.Name
			}
		}
		return nf
	default:
		return &TransportError{Err: err}
	}
}
