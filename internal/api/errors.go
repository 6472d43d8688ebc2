package api

import (
	"errors"
	"log/slog"
	"net/http"
)

// Error codes are part of the public contract; clients switch on them.
const (
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNoUserID           = "NO_USER_ID"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeAPIKeyMissing      = "API_KEY_MISSING"
	CodeAPIUnauthorized    = "API_UNAUTHORIZED"
	CodeAPIRateLimit       = "API_RATE_LIMIT"
	CodeAPIError           = "API_ERROR"
	CodeInvalidAPIResponse = "INVALID_API_RESPONSE"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeNotFound           = "NOT_FOUND"
)

// AppError is an error with a status, a stable code and optional extra body fields.
type AppError struct {
	Status  int
	Code    string
	Message string
	Extra   map[string]any
}

func (e *AppError) Error() string {
	return e.Message
}

// With returns a copy of e carrying an extra body field.
func (e *AppError) With(key string, value any) *AppError {
	cp := *e
	cp.Extra = make(map[string]any, len(e.Extra)+1)
	for k, v := range e.Extra {
		cp.Extra[k] = v
	}
	cp.Extra[key] = value
	return &cp
}

var (
	ErrNotFound         = &AppError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "Not found"}
	ErrMethodNotAllowed = &AppError{Status: http.StatusMethodNotAllowed, Code: CodeMethodNotAllowed, Message: "Method not allowed"}
	ErrNoUserID         = &AppError{Status: http.StatusUnauthorized, Code: CodeNoUserID, Message: "User ID fehlt. Bitte über Memberspot anmelden."}
	ErrInvalidToken     = &AppError{Status: http.StatusUnauthorized, Code: CodeInvalidToken, Message: "Ungültiger User Token. Bitte neu anmelden."}
	ErrAPIKeyMissing    = &AppError{Status: http.StatusInternalServerError, Code: CodeAPIKeyMissing, Message: "API Key nicht konfiguriert. Kontaktiere den Support."}
	ErrAPIUnauthorized  = &AppError{Status: http.StatusInternalServerError, Code: CodeAPIUnauthorized, Message: "API-Konfigurationsfehler. Kontaktiere den Support."}
	ErrAPIRateLimit     = &AppError{Status: http.StatusInternalServerError, Code: CodeAPIRateLimit, Message: "Claude API Limit erreicht. Versuche es später erneut."}
	ErrInvalidAPIResp   = &AppError{Status: http.StatusInternalServerError, Code: CodeInvalidAPIResponse, Message: "Unerwartete API-Antwort von Claude"}
)

func NewInvalidRequestError(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: msg}
}

func NewRateLimitError(msg string) *AppError {
	return &AppError{Status: http.StatusTooManyRequests, Code: CodeRateLimitExceeded, Message: msg}
}

func NewAPIError(msg string) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Code: CodeAPIError, Message: msg}
}

func NewInternalError(msg string) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Code: CodeInternalError, Message: msg}
}

// HandleError renders err as {error, code, ...}. Errors that are not an AppError
// become 500 INTERNAL_ERROR.
func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error", "error", err)
		appErr = NewInternalError("Server-Fehler: " + err.Error())
	}

	body := make(map[string]any, len(appErr.Extra)+2)
	for k, v := range appErr.Extra {
		body[k] = v
	}
	body["error"] = appErr.Message
	body["code"] = appErr.Code
	writeJSON(w, appErr.Status, body)
}
