package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"drawify/internal/pkg/logx"
)

// CustomError carries a business code, a user-facing message and the HTTP
// status used when it is returned from an HTTP handler.
type CustomError struct {
	Code    int
	Message string
	Status  int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("error code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds the CustomError registered for code. Printf-style
// details are applied to the message template when it has verbs; for
// ErrUnknown a leading error detail is logged instead. Unregistered codes
// fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	tmpl, ok := errorMap[code]
	if !ok {
		logx.Error(errors.New("unregistered error code"), "unknown error code requested", "requested_code", code)
		tmpl = errorMap[ErrUnknown]
	}

	out := tmpl
	if out.Status == 0 {
		out.Status = http.StatusOK
	}

	switch {
	case len(details) == 0:
	case out.Code == ErrUnknown:
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "unknown error with underlying cause")
		}
	case strings.Contains(out.Message, "%"):
		out.Message = fmt.Sprintf(out.Message, details...)
	default:
		logx.Warn("error details ignored, message has no format verbs", "code", code)
	}

	return &out
}

// Message extracts the user-facing text of err. Errors that are not a
// CustomError map to the generic ErrUnknown text.
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return errorMap[ErrUnknown].Message
}
