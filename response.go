package identity

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// Response is the uniform envelope every endpoint returns, success or
// failure.
type Response struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	Data      any           `json:"data,omitempty"`
	Error     *ErrorDetails `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// ErrorDetails carries the machine-readable error code plus optional detail.
type ErrorDetails struct {
	Code        string              `json:"code"`
	Details     string              `json:"details,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
}

// Error code strings exposed on the wire.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeBusinessError       = "BUSINESS_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
)

// SuccessResponse writes a success envelope with the given payload.
func SuccessResponse(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// WriteError maps any error to its HTTP status and envelope code and writes
// the failure envelope. Unknown errors become a 500 with a generic message
// so internals never leak to clients.
func WriteError(c *fiber.Ctx, err error) error {
	status, code, message, fieldErrors := classifyError(err)

	details := &ErrorDetails{
		Code:        code,
		FieldErrors: fieldErrors,
	}

	if code == CodeInternalServerError {
		message = "an unexpected error occurred"
	}

	return c.Status(status).JSON(Response{
		Success:   false,
		Message:   message,
		Error:     details,
		Timestamp: time.Now().UTC(),
	})
}

func classifyError(err error) (int, string, string, map[string][]string) {
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		return fiber.StatusBadRequest, CodeValidationError, "validation failed", FormatValidationErrorToMap(vErrs)
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return fiber.StatusInternalServerError, CodeInternalServerError, err.Error(), nil
	}

	switch richErr.Category {
	case errors.CategoryNotFound:
		return fiber.StatusNotFound, CodeNotFound, richErr.Message, nil
	case errors.CategoryConflict:
		return fiber.StatusBadRequest, CodeBusinessError, richErr.Message, nil
	case errors.CategoryAuth:
		// A failed login is a business outcome; a rejected request is an
		// authorization failure.
		if richErr.TextCode == ErrInvalidCredentials.TextCode {
			return fiber.StatusBadRequest, CodeBusinessError, richErr.Message, nil
		}
		return fiber.StatusForbidden, CodeUnauthorized, richErr.Message, nil
	case errors.CategoryAuthz:
		return fiber.StatusForbidden, CodeUnauthorized, richErr.Message, nil
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest, CodeValidationError, richErr.Message, nil
	default:
		return fiber.StatusInternalServerError, CodeInternalServerError, richErr.Message, nil
	}
}

func errInvalidBody(err error) error {
	return errors.Wrap(err, errors.CategoryBadInput, "invalid request body").
		WithTextCode("INVALID_BODY")
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> messages map for the envelope.
func FormatValidationErrorToMap(errs validation.Errors) map[string][]string {
	out := make(map[string][]string, len(errs))
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		out[field] = append(out[field], fieldErr.Error())
	}
	return out
}
