package chat

import (
	"fmt"
	"net/http"
)

// Code is the machine-readable error code returned to clients.
type Code string

const (
	CodeValidation    Code = "VALIDATION"
	CodeEmpty         Code = "EMPTY"
	CodeTooMany       Code = "TOO_MANY"
	CodeTooLong       Code = "TOO_LONG"
	CodeURLBlocked    Code = "URL_BLOCKED"
	CodeBlockedUA     Code = "BLOCKED_UA"
	CodeRateLimit     Code = "RATE_LIMIT"
	CodeTimeout       Code = "TIMEOUT"
	CodeQuotaExceeded Code = "QUOTA_EXCEEDED"
	CodeAuth          Code = "AUTH"
	CodeModelNotFound Code = "MODEL_NOT_FOUND"
	CodeInternal      Code = "INTERNAL"

	// Routing codes, returned for unknown paths and methods.
	CodeNotFound         Code = "NOT_FOUND"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"

	// CodeOK is only used for outcome accounting; it never appears in an error body.
	CodeOK Code = "OK"
)

// Failure is a classified pipeline error. Status and Code are stable; Message is
// localized and safe to show. The wrapped cause is for server-side logging only.
type Failure struct {
	Status  int
	Code    Code
	Message string
	Stage   Stage

	cause error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s (%d) at %s", f.Code, f.Status, f.Stage)
}

func (f *Failure) Unwrap() error { return f.cause }

// validationCode maps a validator reason onto the client-facing code.
func validationCode(reason Reason) Code {
	switch reason {
	case ReasonEmpty, ReasonEmptyItem:
		return CodeEmpty
	case ReasonTooMany:
		return CodeTooMany
	case ReasonTooLong, ReasonTotalTooLarge:
		return CodeTooLong
	case ReasonURLNotAllowed:
		return CodeURLBlocked
	default:
		return CodeValidation
	}
}

// StatusFor returns the HTTP status paired with code.
func StatusFor(code Code) int { return statusFor(code) }

// statusFor returns the HTTP status paired with code.
func statusFor(code Code) int {
	switch code {
	case CodeValidation, CodeEmpty, CodeTooMany, CodeTooLong, CodeURLBlocked, CodeBlockedUA:
		return http.StatusBadRequest
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeQuotaExceeded:
		return http.StatusServiceUnavailable
	case CodeModelNotFound:
		return http.StatusBadGateway
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeOK:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
