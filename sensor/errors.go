package sensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// An UnavailableError means a sensor's underlying data source cannot
// currently be read (hardware absent, permission denied, transient OS
// failure). The sensor stays registered; only its reading fails.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return e.Reason
}

// NewUnavailableError returns an UnavailableError with the given reason.
func NewUnavailableError(reason string) error {
	return &UnavailableError{Reason: reason}
}

// NewUnavailableErrorf is NewUnavailableError with formatting.
func NewUnavailableErrorf(format string, args ...interface{}) error {
	return &UnavailableError{Reason: fmt.Sprintf(format, args...)}
}

// IsUnavailableError reports whether err is or wraps an *UnavailableError.
func IsUnavailableError(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}

// A DuplicateNameError means a second sensor was registered under a name
// already taken. The first registration wins; the conflicting one is
// rejected so two sensors can never shadow each other unnoticed.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("sensor %q already registered", e.Name)
}

// NewDuplicateNameError returns a DuplicateNameError for the given name.
func NewDuplicateNameError(name string) error {
	return &DuplicateNameError{Name: name}
}

// IsDuplicateNameError reports whether err is or wraps a *DuplicateNameError.
func IsDuplicateNameError(err error) bool {
	var target *DuplicateNameError
	return errors.As(err, &target)
}

// A NotFoundError means a caller asked for a sensor name that is not in
// the registry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sensor %q not found", e.Name)
}

// NewNotFoundError returns a NotFoundError for the given name.
func NewNotFoundError(name string) error {
	return &NotFoundError{Name: name}
}

// IsNotFoundError reports whether err is or wraps a *NotFoundError.
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
