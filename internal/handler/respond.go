package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/danangwn/vote-app-backend/pkg/errors"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondError maps an AppError to its HTTP status, or 500 for anything else.
// The body is always {"message": ...}, matching what the frontend expects.
func respondError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		respondMessage(w, appErr.StatusCode, appErr.Message)
		return
	}
	respondMessage(w, http.StatusInternalServerError, "Server error")
}
