package cryptcol

import (
	"errors"
	"fmt"
)

// Standard sentinel errors.
var (
	// ErrMissingKey is returned when an entity declares encrypted fields
	// but no encryption key could be resolved for a write.
	ErrMissingKey = errors.New("cryptcol: no encryption key specified")

	// ErrConfiguration is returned when no cipher engine can be resolved
	// for a connection.
	ErrConfiguration = errors.New("cryptcol: invalid encryption configuration")

	// ErrNotFound is returned when a query that expects a row finds none.
	ErrNotFound = errors.New("cryptcol: record not found")
)

// MissingKeyError is raised before any I/O when a write on an entity with
// encrypted fields has no key available.
type MissingKeyError struct {
	Entity string // Entity type being written
	Op     string // Operation (insert or update)
}

// Error returns the error string.
func (e *MissingKeyError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("cryptcol: no encryption key specified for %s %s", e.Op, e.Entity)
	}
	return fmt.Sprintf("cryptcol: no encryption key specified for %s", e.Entity)
}

// Is reports whether the target error matches MissingKeyError.
// This allows errors.Is(err, ErrMissingKey) to return true.
func (e *MissingKeyError) Is(err error) bool {
	return err == ErrMissingKey
}

// NewMissingKeyError returns a new MissingKeyError.
func NewMissingKeyError(entity, op string) *MissingKeyError {
	return &MissingKeyError{Entity: entity, Op: op}
}

// IsMissingKey returns true if the error is a MissingKeyError.
func IsMissingKey(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingKeyError
	return errors.As(err, &e) || errors.Is(err, ErrMissingKey)
}

// ConfigurationError describes why a cipher engine could not be resolved
// for a named connection.
type ConfigurationError struct {
	Connection string
	Driver     string
	Cipher     string
	Reason     string
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("cryptcol: connection %q: %s", e.Connection, e.Reason)
}

// Is reports whether the target error matches ConfigurationError.
func (e *ConfigurationError) Is(err error) bool {
	return err == ErrConfiguration
}

// NewConfigurationError returns a new ConfigurationError.
func NewConfigurationError(connection, driver, cipher, reason string) *ConfigurationError {
	return &ConfigurationError{Connection: connection, Driver: driver, Cipher: cipher, Reason: reason}
}

// IsConfigurationError returns true if the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigurationError
	return errors.As(err, &e) || errors.Is(err, ErrConfiguration)
}

// ValidationError represents an invalid argument passed to a query builder,
// such as an unknown comparison operator or sort direction.
type ValidationError struct {
	Name string // Argument name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("cryptcol: invalid %s: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError for the given argument.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
