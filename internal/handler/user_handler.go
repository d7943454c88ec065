package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/internal/middleware"
	"github.com/danangwn/vote-app-backend/internal/service"
	"github.com/danangwn/vote-app-backend/pkg/logger"
)

type UserHandler struct {
	userService *service.UserService
	logger      *logger.Logger
}

func NewUserHandler(userService *service.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := domain.ListUsersQuery{
		Page:  parsePositiveInt(r.URL.Query().Get("page"), 1),
		Limit: parsePositiveInt(r.URL.Query().Get("limit"), 20),
		Q:     r.URL.Query().Get("q"),
	}

	response, err := h.userService.List(r.Context(), claims, query)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userService.Get(r.Context(), claims, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Update handles PUT /api/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), claims, chi.URLParam(r, "id"), &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Delete handles DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	deleted, err := h.userService.Delete(r.Context(), claims, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User deleted",
		"userDeleted": map[string]string{
			"id":    deleted.ID,
			"email": deleted.Email,
		},
	})
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
