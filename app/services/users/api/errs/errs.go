// Package errs turns business faults into the error envelope sent back to
// clients and validates inbound payloads.
package errs

import (
	"errors"
	"net/http"
	"time"

	"github.com/hamidoujand/user-service/business/fault"
)

// Reason phrases used in the "error" field of the envelope.
const (
	ReasonNotFound   = "Not Found"
	ReasonConflict   = "Conflict"
	ReasonValidation = "Validation Exception"
	ReasonInternal   = "Internal Server Error"
)

// AppError is the envelope written for every non-success response.
type AppError struct {
	Timestamp time.Time          `json:"timestamp"`
	Status    int                `json:"status"`
	Err       string             `json:"error"`
	Message   string             `json:"message"`
	Path      string             `json:"path"`
	Errors    []fault.FieldError `json:"errors,omitempty"`
}

func (err *AppError) Error() string {
	return err.Message
}

// Translate is the single place mapping fault kinds to http. Anything that is
// not a *fault.Error is reported as internal, and internal details never
// reach the client.
func Translate(err error, path string) *AppError {
	appErr := AppError{
		Timestamp: time.Now().UTC(),
		Path:      path,
	}

	var fe *fault.Error
	if !errors.As(err, &fe) {
		appErr.Status = http.StatusInternalServerError
		appErr.Err = ReasonInternal
		appErr.Message = ReasonInternal
		return &appErr
	}

	switch fe.Kind {
	case fault.KindNotFound:
		appErr.Status = http.StatusNotFound
		appErr.Err = ReasonNotFound
		appErr.Message = fe.Message

	case fault.KindConflict:
		appErr.Status = http.StatusConflict
		appErr.Err = ReasonConflict
		appErr.Message = fe.Message

	case fault.KindValidation:
		appErr.Status = http.StatusBadRequest
		appErr.Err = ReasonValidation
		appErr.Message = fe.Message
		appErr.Errors = fe.Fields

	default:
		appErr.Status = http.StatusInternalServerError
		appErr.Err = ReasonInternal
		appErr.Message = ReasonInternal
	}

	return &appErr
}
