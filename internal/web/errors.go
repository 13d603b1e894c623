package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler failure goes through respondError, which:
//   - picks the HTTP status from the error chain (statusFor)
//   - maps the error to a user message and code via core.MapError
//   - logs the technical error with the request ID for correlation
//   - renders JSON for API routes and an alert fragment for pages

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/dataset"
	"github.com/JonMunkholm/gridcheck/internal/logging"
	"github.com/JonMunkholm/gridcheck/internal/session"
	"github.com/JonMunkholm/gridcheck/internal/web/templates"
)

var (
	// errInvalidRequest wraps body decoding failures.
	errInvalidRequest = errors.New("invalid request body")

	// errUnknownRuleSet is returned when a request names an unregistered rule set.
	errUnknownRuleSet = errors.New("unknown rule set")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes a user-facing error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
	} else {
		renderErrorPartial(w, r, userMsg, status)
	}
}

// statusFor maps an error chain to an HTTP status code.
func statusFor(err error) int {
	var cfgErr *core.ConfigError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, errUnknownRuleSet):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManySessions), errors.Is(err, session.ErrTooManyLoads):
		return http.StatusServiceUnavailable
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &cfgErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnknownRecord),
		errors.Is(err, core.ErrUnknownColumn),
		errors.Is(err, dataset.ErrMalformed),
		errors.Is(err, dataset.ErrNoHeader),
		errors.Is(err, dataset.ErrDuplicateHeader),
		errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial renders the error alert fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// clientIP strips the port from a RemoteAddr.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
