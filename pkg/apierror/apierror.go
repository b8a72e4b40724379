package apierror

import "fmt"

// Kind classifies an error so callers can branch on the failure class
// instead of matching message text.
type Kind string

const (
	// KindValidation covers client-side rejections that never reach the network.
	KindValidation Kind = "validation"
	// KindTransport covers network failures where no HTTP response arrived.
	KindTransport Kind = "transport"
	// KindHTTP covers non-2xx responses from the backend.
	KindHTTP Kind = "http"
	// KindDecode covers malformed payloads, including session token decode failures.
	KindDecode Kind = "decode"
)

type Error struct {
	Kind       Kind   `json:"kind"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(kind Kind, code string, message string, details string, status int) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Details: details, HTTPStatus: status}
}

func Validation(code string, message string, details string) *Error {
	return New(KindValidation, code, message, details, 422)
}

func Transport(message string, details string) *Error {
	return New(KindTransport, "BACKEND_UNREACHABLE", message, details, 502)
}

func HTTP(message string, status int) *Error {
	return New(KindHTTP, "BACKEND_ERROR", message, "", status)
}

func Decode(code string, message string, details string) *Error {
	return New(KindDecode, code, message, details, 401)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
