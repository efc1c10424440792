package http

import (
	"errors"
	"net/http"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/validate"
	"github.com/labstack/echo/v4"
)

// RESTStandardError response error
type RESTStandardError struct {
	Type    string `json:"type,omitempty"`
	Code    int    `json:"code"`
	Title   string `json:"title"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func NewRESTStandardError(code int, detail string) *RESTStandardError {
	return &RESTStandardError{
		Code:   code,
		Title:  http.StatusText(code),
		Detail: detail,
	}
}

func (re RESTStandardError) Error() string {
	return re.Detail
}

func (re RESTStandardError) SetTraceID(traceID string) RESTStandardError {
	re.TraceID = traceID
	return re
}

// RESTValidationError standard validation error
type RESTValidationError struct {
	RESTStandardError
	InvalidParams []*validate.FieldError `json:"invalid_params"`
}

func NewRESTValidationError(code int, detail string, internal []*validate.FieldError) *RESTValidationError {
	return &RESTValidationError{
		RESTStandardError: RESTStandardError{
			Code:   code,
			Title:  http.StatusText(code),
			Detail: detail,
		},
		InvalidParams: internal,
	}
}

func (rve RESTValidationError) Error() string {
	return rve.Detail
}

func (rve RESTValidationError) SetTraceID(traceID string) RESTValidationError {
	rve.RESTStandardError.TraceID = traceID
	return rve
}

// engineErrorStatus map a stable engine code onto an HTTP status. Eligibility
// failures are forbidden, attempt lifecycle failures are conflicts, payload
// failures are unprocessable, lookups are not found.
func engineErrorStatus(code string) int {
	switch code {
	case "PERIOD_NOT_ACTIVE", "NOT_ASSIGNED_TO_SUBJECT", "LESSON_NOT_ACTIVE_FOR_COMPANY",
		"PROGRESS_NOT_ENOUGH", "LESSON_LOCKED":
		return http.StatusForbidden
	case "ATTEMPT_LIMIT", "ALREADY_PASSED", "ATTEMPT_NOT_CLOSED", "ATTEMPT_IN_PROGRESS",
		"DUPLICATE_SUBMISSION":
		return http.StatusConflict
	case "INVALID_ANSWER_SET", "NOT_ENOUGH_QUESTIONS":
		return http.StatusUnprocessableEntity
	case "LESSON_NOT_FOUND", "ATTEMPT_NOT_FOUND":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeEngineError render coded engine errors with the code in the envelope's
// type field; anything else bubbles up to the error middleware
func writeEngineError(c echo.Context, err error) error {
	var engineErr *domain.EngineError
	if !errors.As(err, &engineErr) {
		return err
	}
	status := engineErrorStatus(engineErr.Code)
	body := NewRESTStandardError(status, engineErr.Reason)
	body.Type = engineErr.Code
	return c.JSON(status, body)
}
