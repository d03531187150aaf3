package share

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

// Envelope is the uniform response shape for every operation, success or
// failure. StatusCode mirrors the HTTP status so non HTTP consumers see
// the same outcome classification.
type Envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode"`
}

// SuccessEnvelope wraps payload data in a success envelope.
func SuccessEnvelope(statusCode int, data any) Envelope {
	return Envelope{
		Success:    true,
		Data:       data,
		StatusCode: statusCode,
	}
}

// ErrorEnvelope converts an error into a failure envelope. Rich errors
// drive the status code; anything else is treated as an internal failure
// so unexpected store or hasher errors never leak details.
func ErrorEnvelope(err error) Envelope {
	if err == nil {
		return SuccessEnvelope(http.StatusOK, nil)
	}

	env := Envelope{
		Success:    false,
		Error:      "Internal Server Error",
		StatusCode: http.StatusInternalServerError,
	}

	var rich *errors.Error
	if !errors.As(err, &rich) {
		return env
	}

	env.Error = rich.Message
	env.StatusCode = statusFromRichError(rich)

	if rich.Category == errors.CategoryValidation {
		if fields := rich.ValidationMap(); len(fields) > 0 {
			env.Data = map[string]any{"fields": fields}
		}
	}

	return env
}

func statusFromRichError(e *errors.Error) int {
	if e.Code != 0 {
		return e.Code
	}

	switch e.Category {
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
