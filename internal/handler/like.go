package handler

import (
	"errors"
	"log"
	"net/http"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
	"lumigram/internal/transport/http/middleware"
)

type LikeHandler struct {
	likeService LikeService
}

func NewLikeHandler(likeService LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// Status handles GET /api/likes?postId=
func (h *LikeHandler) Status(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	status, err := h.likeService.Status(r.Context(), postID, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, err, "Like status", postID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// Like handles POST /api/likes {"postId": 1}
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	if err := h.likeService.Add(r.Context(), postID, userID); err != nil {
		h.writeError(w, err, "Like", postID)
		return
	}
	h.writeStatus(w, r, http.StatusCreated, postID, userID)
}

// Unlike handles DELETE /api/likes?postId=
func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	if err := h.likeService.Remove(r.Context(), postID, userID); err != nil {
		h.writeError(w, err, "Unlike", postID)
		return
	}
	h.writeStatus(w, r, http.StatusOK, postID, userID)
}

// writeStatus answers a successful change with the fresh like state so the
// client can reconcile its counter.
func (h *LikeHandler) writeStatus(w http.ResponseWriter, r *http.Request, code int, postID int64, userID string) {
	status, err := h.likeService.Status(r.Context(), postID, userID)
	if err != nil {
		log.Printf("[LikeHandler] Status after change failed: post=%d err=%v", postID, err)
		httputil.WriteNoContent(w)
		return
	}
	httputil.WriteJSON(w, code, status)
}

func (h *LikeHandler) writeError(w http.ResponseWriter, err error, op string, postID int64) {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrAlreadyLiked):
		httputil.WriteConflict(w, "Post already liked")
	case errors.Is(err, model.ErrNotLiked):
		httputil.WriteNotFound(w, "Post not liked")
	default:
		log.Printf("[ERROR] %s handler: post=%d err=%v", op, postID, err)
		httputil.WriteInternalError(w, "Failed to update like")
	}
}
