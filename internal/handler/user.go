package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
	"lumigram/internal/transport/http/middleware"
)

type UserHandler struct {
	userService UserService
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	profile, err := h.userService.Profile(r.Context(), userID, middleware.UserIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Get profile handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to load profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/users/{id} (multipart: name, bio, website, image,
// cropX, cropY, cropWidth, cropHeight)
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.UserIDFromContext(r.Context())
	if actorID == "" {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	targetID := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxProfileImageSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteBadRequest(w, "Invalid multipart form")
		return
	}

	crop, err := formCrop(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Crop values must be integers and all four must be set")
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

	req := model.UpdateProfileRequest{
		Name:    formString(r, "name"),
		Bio:     formString(r, "bio"),
		Website: formString(r, "website"),
		Crop:    crop,
	}

	user, err := h.userService.Update(r.Context(), actorID, targetID, req, file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotProfileOwner):
			httputil.WriteForbidden(w, "You can only edit your own profile")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrNameRequired),
			errors.Is(err, model.ErrNameTooLong),
			errors.Is(err, model.ErrBioTooLong),
			errors.Is(err, model.ErrInvalidWebsite):
			httputil.WriteBadRequest(w, err.Error())
		case writeUploadError(w, err):
		default:
			log.Printf("[ERROR] Update profile handler: user=%s err=%v", actorID, err)
			httputil.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// Search handles GET /api/users/search?q= for @-autocomplete.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.SearchMentions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("[ERROR] User search handler: %v", err)
		httputil.WriteInternalError(w, "Failed to search users")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"users": users})
}
