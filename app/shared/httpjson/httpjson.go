// Package httpjson writes JSON responses and decodes validated request bodies.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Write encodes v with status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes an ErrorBody.
func Error(w http.ResponseWriter, status int, code, msg string) {
	Write(w, status, ErrorBody{Error: msg, Code: code})
}

// Decode reads a JSON body into dst and runs struct validation on it.
// Validation failures come back as *ValidationError.
func Decode(r *http.Request, v *validator.Validate, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &ValidationError{Msg: fmt.Sprintf("malformed body: %v", err)}
	}
	if v == nil {
		return nil
	}
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				details[strings.ToLower(fe.Field())] = fe.Tag()
			}
			return &ValidationError{Msg: "validation failed", Details: details}
		}
		return &ValidationError{Msg: err.Error()}
	}
	return nil
}

// ValidationError is returned by Decode for bad input.
type ValidationError struct {
	Msg     string
	Details map[string]string
}

func (e *ValidationError) Error() string { return e.Msg }

// WriteValidation writes a 400 for a ValidationError.
func WriteValidation(w http.ResponseWriter, err error) {
	body := ErrorBody{Error: err.Error(), Code: "invalid_request"}
	var verr *ValidationError
	if errors.As(err, &verr) {
		body.Details = verr.Details
	}
	Write(w, http.StatusBadRequest, body)
}
