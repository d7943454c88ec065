package handler

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/danangwn/vote-app-backend/internal/domain"
	"github.com/danangwn/vote-app-backend/internal/middleware"
	"github.com/danangwn/vote-app-backend/internal/service"
	"github.com/danangwn/vote-app-backend/pkg/logger"
)

type VotingHandler struct {
	votingService *service.VotingService
	logger        *logger.Logger
}

func NewVotingHandler(votingService *service.VotingService, logger *logger.Logger) *VotingHandler {
	return &VotingHandler{
		votingService: votingService,
		logger:        logger,
	}
}

// ListMainOptions handles GET /api/votes/options/main
func (h *VotingHandler) ListMainOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.votingService.ListMainOptions(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list main options")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.MainOptionsResponse{Items: options})
}

// SubmitVote handles POST /api/votes/submit
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req domain.SubmitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.votingService.SubmitVote(ctx, claims.UserID, &req)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", claims.UserID).Error("Vote submission failed")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetResults handles GET /api/votes/results
func (h *VotingHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.votingService.GetResults(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get results")
		respondError(w, err)
		return
	}

	// Results change constantly while voting is open; a short-lived ETag
	// still saves bandwidth for polling clients.
	etag := generateETag(results)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=10")

	respondJSON(w, http.StatusOK, results)
}

func generateETag(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf(`"%x"`, hash)
}
