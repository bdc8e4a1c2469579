package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks a loaded configuration and returns every problem found.
func Validate(c Config) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(c.GlobalNamespace) == "" {
		errs.Add("globalNamespace", "is required")
	}
	if c.ResyncConcurrency <= 0 {
		errs.Add("resyncConcurrency", "must be positive", c.ResyncConcurrency)
	}
	if c.HTTP.Timeout <= 0 {
		errs.Add("http.timeout", "must be positive", c.HTTP.Timeout)
	}
	if c.HTTP.RetryMax < 0 {
		errs.Add("http.retryMax", "must not be negative", c.HTTP.RetryMax)
	}

	if len(c.Clusters) == 0 {
		errs.Add("clusters", "must have at least one item")
	}

	seen := make(map[string]bool, len(c.Clusters))
	for i, cluster := range c.Clusters {
		field := fmt.Sprintf("clusters[%d]", i)
		if err := ValidateEntityName(cluster.Name, "cluster"); err != nil {
			errs.Add(field+".name", err.(ValidationError).Message, cluster.Name)
			continue
		}
		if seen[cluster.Name] {
			errs.Add(field+".name", "is declared more than once", cluster.Name)
		}
		seen[cluster.Name] = true

		if cluster.IsFilesystem() && (cluster.Kubeconfig != "" || cluster.Context != "") {
			errs.Add(field, "cannot set both filesystemPath and kubeconfig/context", cluster.Name)
		}
	}

	if c.DefaultCluster == "" {
		errs.Add("defaultCluster", "is required")
	} else if len(c.Clusters) > 0 && !seen[c.DefaultCluster] {
		errs.Add("defaultCluster", "must name a declared cluster", c.DefaultCluster)
	}

	return errs
}

// ValidateEntityName validates that an entity name follows proper conventions
func ValidateEntityName(name, entityType string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{
			Field:   "name",
			Value:   name,
			Message: fmt.Sprintf("is required for %s", entityType),
		}
	}

	if len(name) > 100 {
		return ValidationError{
			Field:   "name",
			Value:   name,
			Message: "must not exceed 100 characters",
		}
	}

	if strings.Contains(name, " ") {
		return ValidationError{
			Field:   "name",
			Value:   name,
			Message: "cannot contain spaces",
		}
	}

	return nil
}

// FormatValidationError creates a consistent validation error message
func FormatValidationError(entityType, entityName string, err error) error {
	if err == nil {
		return nil
	}

	if entityName != "" {
		return fmt.Errorf("validation failed for %s '%s': %w", entityType, entityName, err)
	}
	return fmt.Errorf("validation failed for %s: %w", entityType, err)
}
