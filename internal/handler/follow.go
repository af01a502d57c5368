package handler

import (
	"errors"
	"log"
	"net/http"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
	"lumigram/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService FollowService
}

func NewFollowHandler(followService FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Status handles GET /api/follows?userId=
func (h *FollowHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	status, err := h.followService.Status(r.Context(), middleware.UserIDFromContext(r.Context()), userID)
	if err != nil {
		h.writeError(w, err, "Follow status")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// Follow handles POST /api/follows {"userId": "..."}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID := middleware.UserIDFromContext(r.Context())
	if followerID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	followeeID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.followService.Follow(r.Context(), followerID, followeeID); err != nil {
		h.writeError(w, err, "Follow")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "Successfully followed user",
	})
}

// Unfollow handles DELETE /api/follows?userId=
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID := middleware.UserIDFromContext(r.Context())
	if followerID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	followeeID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followeeID); err != nil {
		h.writeError(w, err, "Unfollow")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Successfully unfollowed user",
	})
}

func (h *FollowHandler) writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, model.ErrCannotFollowSelf):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrAlreadyFollowing):
		httputil.WriteConflict(w, err.Error())
	case errors.Is(err, model.ErrUserNotFound), errors.Is(err, model.ErrNotFollowing):
		httputil.WriteNotFound(w, err.Error())
	default:
		log.Printf("[ERROR] %s handler: %v", op, err)
		httputil.WriteInternalError(w, "Failed to update follow")
	}
}
