package handler

// RESPONSE HELPERS:
// Every handler answers through these functions so the API has one JSON
// shape for errors and one place where domain errors become status codes.
//
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, logger, err)
//
// Error bodies always look like:
//   {"error": "not_found", "message": "file not found with id abc123"}

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sakif/sageexcel/internal/apperror"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// MessageResponse is the body of operations that only confirm success.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response. Headers must be set before WriteHeader;
// anything set afterwards is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are gone already, all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// wantsMsgpack reports whether the client asked for msgpack in Accept.
func wantsMsgpack(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, contentTypeMsgpack) || strings.Contains(accept, "application/x-msgpack")
}

// writeNegotiated encodes data as msgpack when the client accepts it and as
// JSON otherwise. Chart payloads are large arrays of floats, where msgpack
// is noticeably smaller.
func writeNegotiated(w http.ResponseWriter, r *http.Request, status int, data any) {
	if !wantsMsgpack(r) {
		writeJSON(w, status, data)
		return
	}

	body, err := msgpack.Marshal(data)
	if err != nil {
		slog.Error("failed to encode msgpack response", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// errorKinds is checked top to bottom, so the specific sentinels come before
// the generic ones they wrap.
var errorKinds = []struct {
	target error
	status int
	code   string
}{
	{apperror.ErrMissingField, http.StatusBadRequest, "missing_field"},
	{apperror.ErrNoFile, http.StatusBadRequest, "no_file"},
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{apperror.ErrInvalidCredential, http.StatusUnauthorized, "invalid_credential"},
	{apperror.ErrMissingToken, http.StatusUnauthorized, "missing_token"},
	{apperror.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{apperror.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
	{apperror.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
}

// writeError maps a domain error to its HTTP status and sends it.
//
// The service layer never sees status codes; this table is the only place
// they are decided. Anything that is not an *AppError is a server fault:
// it is logged with its full chain and the client gets a generic message,
// since raw errors can carry SQL or file paths.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, k := range errorKinds {
			if errors.Is(err, k.target) {
				writeJSON(w, k.status, ErrorResponse{Error: k.code, Message: appErr.Message})
				return
			}
		}
	}

	logger.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON body into dst and runs struct validation on it.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("", "Invalid JSON body")
	}
	return validateStruct(dst)
}
