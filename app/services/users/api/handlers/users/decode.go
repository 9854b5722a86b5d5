package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hamidoujand/user-service/business/fault"
)

// MalformedMessage is reported when a body cannot be decoded.
const MalformedMessage = "Malformed request body"

const maxBodyBytes = 1 << 20

// decode reads the json body of r into v. Any failure is a validation fault,
// a type mismatch also names the offending field.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return fault.Validation(MalformedMessage, []fault.FieldError{
				{FieldName: typeErr.Field, Message: "must be of type " + typeErr.Type.String()},
			})
		}
		return fault.Validation(MalformedMessage, nil)
	}
	return nil
}
