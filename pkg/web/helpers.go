// Package web holds the HTTP plumbing shared by the service handlers:
// JSON responses, request decoding, caller identity and middleware.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// MessageResponse is the body of every acknowledgement and error response.
type MessageResponse struct {
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondMessage writes {"message": message} with the given status.
func RespondMessage(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, MessageResponse{Message: message})
}

// RespondError is RespondMessage for error statuses.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondMessage(w, logger, status, message)
}

// DecodeJSON decodes the request body into dst, reading at most maxBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("malformed json: %w", err)
	}
	return nil
}

// GetUserID retrieves the caller id placed in the context by the auth middleware.
// Responds with 401 and returns false when the id is missing.
func GetUserID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	userID, ok := UserID(r.Context())
	if !ok {
		RespondError(w, logger, http.StatusUnauthorized, "Unauthorized: missing caller identity")
		return "", false
	}
	return userID, true
}
