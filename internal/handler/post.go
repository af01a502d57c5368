package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
	"lumigram/internal/service"
	"lumigram/internal/transport/http/middleware"
)

type PostHandler struct {
	postService PostService
	feedService FeedService
}

func NewPostHandler(postService PostService, feedService FeedService) *PostHandler {
	return &PostHandler{
		postService: postService,
		feedService: feedService,
	}
}

// List handles GET /api/posts?page&limit&userId&hashtag
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.FeedQuery{
		Page:    httputil.QueryInt(r, "page"),
		Limit:   httputil.QueryInt(r, "limit"),
		UserID:  q.Get("userId"),
		Hashtag: q.Get("hashtag"),
	}

	viewerID := middleware.UserIDFromContext(r.Context())
	page, err := h.feedService.List(r.Context(), query, viewerID)
	if err != nil {
		log.Printf("[ERROR] List posts handler: query=%+v err=%v", query, err)
		httputil.WriteInternalError(w, "Failed to load posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

// Create handles POST /api/posts (multipart: image, caption, mentions)
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxPostImageSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteBadRequest(w, "Invalid multipart form")
		return
	}

	mentions, err := formMentions(r)
	if err != nil {
		httputil.WriteBadRequest(w, "mentions must be a JSON array")
		return
	}

	file, header, err := formImage(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid image upload")
		return
	}
	if file != nil {
		defer file.Close()
	}

	in := model.CreatePostInput{
		Caption:  formString(r, "caption"),
		Mentions: mentions,
	}

	post, err := h.postService.Create(r.Context(), userID, in, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrImageRequired):
			httputil.WriteBadRequest(w, "An image is required")
		case errors.Is(err, model.ErrCaptionTooLong):
			httputil.WriteBadRequest(w, "Caption too long (max 2200 characters)")
		case writeUploadError(w, err):
		default:
			log.Printf("[ERROR] Create post handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Get handles GET /api/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, err := httputil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	post, err := h.postService.Get(r.Context(), postID, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post handler: post=%d err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /api/posts/{id}. Only the owner can delete.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, err := httputil.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	if err := h.postService.Delete(r.Context(), postID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You can only delete your own posts")
		default:
			log.Printf("[ERROR] Delete post handler: user=%s post=%d err=%v", userID, postID, err)
			httputil.WriteInternalError(w, "Failed to delete post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}
