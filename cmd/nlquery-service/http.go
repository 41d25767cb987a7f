package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/communityconnect/nlquery/internal/errors"
)

func newRequestValidator() *validator.Validate {
	return validator.New()
}

// decodeQueryRequest parses and validates the request body, returning
// a single human-readable error combining every failed field so the
// caller doesn't have to round-trip multiple times to find every
// problem.
func decodeQueryRequest(r *http.Request, validate *validator.Validate) (queryRequest, error) {
	var req queryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return queryRequest{}, fmt.Errorf("invalid request body: %w", err)
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok {
			return queryRequest{}, fmt.Errorf("validation failed: %s", describeValidationErrors(fieldErrs))
		}
		return queryRequest{}, err
	}

	return req, nil
}

func asValidationErrors(err error, out *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*out = fieldErrs
	return true
}

func describeValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s failed on %q", e.Field(), e.Tag()))
	}
	return strings.Join(parts, "; ")
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.GetStatusCode(err), errorResponse{Error: apperrors.SafeErrorMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
