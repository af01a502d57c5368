package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before spilling to temp files.
const multipartMemory = 8 << 20

type postRef struct {
	PostID int64 `json:"postId"`
}

type userRef struct {
	UserID string `json:"userId"`
}

// postIDParam reads postId from the query string, falling back to a JSON
// body of the form {"postId": 1}.
func postIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if raw := r.URL.Query().Get("postId"); raw != "" {
		id, err := httputil.ParseID(raw)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid post ID")
			return 0, false
		}
		return id, true
	}

	var ref postRef
	if r.Body == nil || httputil.DecodeJSON(w, r, &ref) != nil || ref.PostID <= 0 {
		httputil.WriteBadRequest(w, "postId is required")
		return 0, false
	}
	return ref.PostID, true
}

// userIDParam reads userId from the query string or a JSON body.
func userIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	if id := r.URL.Query().Get("userId"); id != "" {
		return id, true
	}

	var ref userRef
	if r.Body == nil || httputil.DecodeJSON(w, r, &ref) != nil || ref.UserID == "" {
		httputil.WriteBadRequest(w, "userId is required")
		return "", false
	}
	return ref.UserID, true
}

// formImage returns the optional "image" file of a parsed multipart form.
func formImage(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	return file, header, err
}

// formString returns a pointer to a form value, or nil when the field was
// not sent at all.
func formString(r *http.Request, name string) *string {
	if _, ok := r.MultipartForm.Value[name]; !ok {
		return nil
	}
	v := r.FormValue(name)
	return &v
}

func formMentions(r *http.Request) ([]model.MentionCandidate, error) {
	raw := r.FormValue("mentions")
	if raw == "" {
		return nil, nil
	}
	var mentions []model.MentionCandidate
	if err := json.Unmarshal([]byte(raw), &mentions); err != nil {
		return nil, err
	}
	return mentions, nil
}

// formCrop reads cropX/cropY/cropWidth/cropHeight. All four must be present
// for a crop to apply.
func formCrop(r *http.Request) (*model.CropRect, error) {
	fields := []string{"cropX", "cropY", "cropWidth", "cropHeight"}
	values := make([]int, len(fields))
	present := 0
	for i, name := range fields {
		raw := r.FormValue(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, model.ErrInvalidCropRect
		}
		values[i] = n
		present++
	}

	switch present {
	case 0:
		return nil, nil
	case len(fields):
		return &model.CropRect{X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
	default:
		return nil, model.ErrInvalidCropRect
	}
}

// writeUploadError maps image validation errors. It reports false when err
// is not an upload error.
func writeUploadError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Only JPEG, PNG, GIF and WebP images are allowed")
	case errors.Is(err, model.ErrInvalidCropRect):
		httputil.WriteBadRequest(w, "Crop rectangle must lie inside the image")
	default:
		return false
	}
	return true
}
