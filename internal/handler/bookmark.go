package handler

import (
	"errors"
	"log"
	"net/http"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
	"lumigram/internal/transport/http/middleware"
)

type BookmarkHandler struct {
	bookmarkService BookmarkService
}

func NewBookmarkHandler(bookmarkService BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// Get handles GET /api/bookmarks. With ?postId it reports whether that post
// is bookmarked; without it, it pages through the viewer's saved posts.
func (h *BookmarkHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if r.URL.Query().Get("postId") == "" {
		page, err := h.bookmarkService.ListForUser(r.Context(), userID,
			httputil.QueryInt(r, "page"), httputil.QueryInt(r, "limit"))
		if err != nil {
			log.Printf("[ERROR] List bookmarks handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to load bookmarks")
			return
		}
		httputil.WriteJSON(w, http.StatusOK, page)
		return
	}

	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}
	status, err := h.bookmarkService.Status(r.Context(), postID, userID)
	if err != nil {
		h.writeError(w, err, "Bookmark status", postID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// Add handles POST /api/bookmarks {"postId": 1}
func (h *BookmarkHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	if err := h.bookmarkService.Add(r.Context(), postID, userID); err != nil {
		h.writeError(w, err, "Bookmark", postID)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, model.BookmarkStatus{Bookmarked: true})
}

// Remove handles DELETE /api/bookmarks?postId=
func (h *BookmarkHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	if err := h.bookmarkService.Remove(r.Context(), postID, userID); err != nil {
		h.writeError(w, err, "Remove bookmark", postID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.BookmarkStatus{Bookmarked: false})
}

func (h *BookmarkHandler) writeError(w http.ResponseWriter, err error, op string, postID int64) {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrAlreadyBookmarked):
		httputil.WriteConflict(w, "Post already bookmarked")
	case errors.Is(err, model.ErrNotBookmarked):
		httputil.WriteNotFound(w, "Post not bookmarked")
	default:
		log.Printf("[ERROR] %s handler: post=%d err=%v", op, postID, err)
		httputil.WriteInternalError(w, "Failed to update bookmark")
	}
}
