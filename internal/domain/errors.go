// SPDX-License-Identifier: Apache-2.0

package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Only ErrConfiguration aborts a benchmark run; every other kind
// degrades to a missing data point.
var ErrConfiguration = errors.New("configuration error")
var ErrProvisioning = errors.New("provisioning error")
var ErrInsertion = errors.New("insertion error")
var ErrMeasurement = errors.New("measurement error")
var ErrReporting = errors.New("reporting error")

// Error attaches a kind and the failing operation to an underlying error.
// errors.Is matches both the kind and the wrapped cause.
type Error struct {
	Kind    error
	Op      string
	Variant string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Op
	if e.Variant != "" {
		msg += " [" + e.Variant + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewError(kind error, op, variant string, err error) error {
	return &Error{Kind: kind, Op: op, Variant: variant, Err: err}
}

// Configurationf builds a configuration error from a format string.
func Configurationf(format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Op: "validate", Err: fmt.Errorf(format, args...)}
}
