// Package fault provides the error kinds the business layer reports to callers.
// The app layer decides how each kind is presented.
package fault

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind classifies a business failure.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
)

var kindNames = []string{"internal", "not_found", "conflict", "validation"}

func (k Kind) String() string {
	if k < KindInternal || k > KindValidation {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// FieldError describes a single rejected attribute.
type FieldError struct {
	FieldName string `json:"fieldName"`
	Message   string `json:"message"`
}

// Error is a classified business failure along with where it was raised.
type Error struct {
	Kind     Kind
	Message  string
	Fields   []FieldError
	Err      error
	FuncName string
	FileName string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, fields []FieldError, err error) *Error {
	//skip newError and the exported constructor
	pc, filename, line, _ := runtime.Caller(2)
	funcName := runtime.FuncForPC(pc).Name()

	return &Error{
		Kind:     kind,
		Message:  message,
		Fields:   fields,
		Err:      err,
		FuncName: funcName,
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// NotFound reports a missing entity.
func NotFound(format string, v ...any) error {
	return newError(KindNotFound, fmt.Sprintf(format, v...), nil, nil)
}

// Conflict reports a uniqueness violation.
func Conflict(format string, v ...any) error {
	return newError(KindConflict, fmt.Sprintf(format, v...), nil, nil)
}

// Validation reports rejected input along with the offending fields.
func Validation(message string, fields []FieldError) error {
	return newError(KindValidation, message, fields, nil)
}

// Internal wraps an unexpected failure.
func Internal(err error) error {
	return newError(KindInternal, "internal failure", nil, err)
}

// KindOf returns the kind of err, defaulting to KindInternal for anything that
// is not a *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}
