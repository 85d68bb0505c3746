package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/bio-generator/internal/bios"
	"github.com/jonathan/bio-generator/internal/schemas"
)

// ErrBodyTooLarge indicates the request body exceeded maxBodyBytes
type ErrBodyTooLarge struct {
	Limit int64
}

func (e *ErrBodyTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.Limit)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *bios.ValidationError
		schemaErr     *schemas.ValidationError
		schemaLoadErr *schemas.SchemaLoadError
		fieldErrs     validator.ValidationErrors
		tooLarge      *ErrBodyTooLarge
		parseErr      *bios.ParseError
		apiErr        *bios.APICallError
	)

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &validationErr), errors.As(err, &schemaErr), errors.As(err, &fieldErrs), errors.As(err, &schemaLoadErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &parseErr), errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validationError converts validator field errors into a *bios.ValidationError
// naming the first offending field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &bios.ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "vibe":
		return &bios.ValidationError{Field: field, Message: fmt.Sprintf("unknown vibe %q", fe.Value())}
	case "max":
		return &bios.ValidationError{Field: field, Message: "must be at most " + fe.Param() + " characters"}
	default:
		return &bios.ValidationError{Field: field, Message: "failed " + fe.Tag() + " check"}
	}
}

// publicMessage is the error text returned to clients. Upstream failures are
// not echoed verbatim.
func publicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return err.Error()
	case http.StatusGatewayTimeout:
		return "the bio generator took too long to respond"
	case http.StatusBadGateway:
		var parseErr *bios.ParseError
		if errors.As(err, &parseErr) {
			return "the bio generator returned an unreadable response"
		}
		return "the bio generator is unavailable"
	default:
		return "internal server error"
	}
}
