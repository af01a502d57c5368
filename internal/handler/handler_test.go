package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"lumigram/internal/httputil"
	"lumigram/internal/model"
	"lumigram/internal/service"
	"lumigram/internal/transport/http/middleware"
)

// =============================================================================
// FAKE SERVICES
// =============================================================================

type fakePostService struct {
	createFn func(ctx context.Context, userID string, in model.CreatePostInput, file multipart.File, header *multipart.FileHeader) (*model.FeedPost, error)
	deleteFn func(ctx context.Context, postID int64, userID string) error
}

func (f *fakePostService) Create(ctx context.Context, userID string, in model.CreatePostInput, file multipart.File, header *multipart.FileHeader) (*model.FeedPost, error) {
	return f.createFn(ctx, userID, in, file, header)
}

func (f *fakePostService) Get(ctx context.Context, postID int64, viewerID string) (*model.PostDetail, error) {
	return nil, model.ErrPostNotFound
}

func (f *fakePostService) Delete(ctx context.Context, postID int64, userID string) error {
	return f.deleteFn(ctx, postID, userID)
}

type fakeFeedService struct {
	queries []service.FeedQuery
	viewers []string
}

func (f *fakeFeedService) List(ctx context.Context, q service.FeedQuery, viewerID string) (*model.PostPage, error) {
	f.queries = append(f.queries, q)
	f.viewers = append(f.viewers, viewerID)
	return &model.PostPage{Posts: []model.FeedPost{}, Page: 1, Limit: 10}, nil
}

type fakeLikeService struct {
	addErr    error
	removeErr error
}

func (f *fakeLikeService) Add(ctx context.Context, postID int64, userID string) error {
	return f.addErr
}
func (f *fakeLikeService) Remove(ctx context.Context, postID int64, userID string) error {
	return f.removeErr
}
func (f *fakeLikeService) Status(ctx context.Context, postID int64, userID string) (*model.LikeStatus, error) {
	return &model.LikeStatus{Liked: f.addErr == nil, LikeCount: 4}, nil
}

type fakeFollowService struct {
	followed [][2]string
}

func (f *fakeFollowService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}
	f.followed = append(f.followed, [2]string{followerID, followeeID})
	return nil
}

func (f *fakeFollowService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return model.ErrNotFollowing
}

func (f *fakeFollowService) Status(ctx context.Context, viewerID, userID string) (*model.FollowStatus, error) {
	return &model.FollowStatus{}, nil
}

type fakeCommentService struct {
	got model.CreateCommentRequest
}

func (f *fakeCommentService) Create(ctx context.Context, userID string, req model.CreateCommentRequest) (*model.Comment, error) {
	f.got = req
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.ErrContentRequired
	}
	return &model.Comment{ID: 1, PostID: req.PostID, Content: req.Content}, nil
}

func (f *fakeCommentService) Delete(ctx context.Context, commentID int64, userID string) error {
	return model.ErrNotCommentOwner
}

func (f *fakeCommentService) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	return []model.Comment{}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// withUser injects an authenticated identity the way the auth middleware does.
func withUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID != "" {
				r = r.WithContext(middleware.WithIdentity(r.Context(), model.Identity{Subject: userID}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func serve(t *testing.T, userID string, register func(r chi.Router), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Use(withUser(userID))
	register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorDetail {
	t.Helper()
	var body httputil.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v (raw %q)", err, rec.Body.String())
	}
	return body.Error
}

func multipartBody(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "photo.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte("\xff\xd8\xff\xe0fake-jpeg"))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

// =============================================================================
// TESTS
// =============================================================================

func TestFollowHandler_SelfFollowIsBadRequest(t *testing.T) {
	svc := &fakeFollowService{}
	h := NewFollowHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/follows", strings.NewReader(`{"userId":"user_a"}`))
	rec := serve(t, "user_a", func(r chi.Router) { r.Post("/api/follows", h.Follow) }, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(svc.followed) != 0 {
		t.Error("self follow should not be recorded")
	}
}

func TestFollowHandler(t *testing.T) {
	svc := &fakeFollowService{}
	h := NewFollowHandler(svc)
	routes := func(r chi.Router) {
		r.Post("/api/follows", h.Follow)
		r.Delete("/api/follows", h.Unfollow)
	}

	rec := serve(t, "user_a", routes, httptest.NewRequest(http.MethodPost, "/api/follows", strings.NewReader(`{"userId":"user_b"}`)))
	if rec.Code != http.StatusCreated || len(svc.followed) != 1 {
		t.Errorf("follow: status = %d, followed = %v", rec.Code, svc.followed)
	}

	rec = serve(t, "user_a", routes, httptest.NewRequest(http.MethodDelete, "/api/follows?userId=user_b", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unfollow when not following: status = %d, want 404", rec.Code)
	}

	rec = serve(t, "user_a", routes, httptest.NewRequest(http.MethodPost, "/api/follows", strings.NewReader(`{}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing userId: status = %d, want 400", rec.Code)
	}

	rec = serve(t, "", routes, httptest.NewRequest(http.MethodPost, "/api/follows", strings.NewReader(`{"userId":"user_b"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}
}

func TestLikeHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		svc        *fakeLikeService
		wantStatus int
	}{
		{"like", http.MethodPost, "/api/likes", `{"postId":7}`, &fakeLikeService{}, http.StatusCreated},
		{"duplicate like", http.MethodPost, "/api/likes", `{"postId":7}`, &fakeLikeService{addErr: model.ErrAlreadyLiked}, http.StatusConflict},
		{"missing post", http.MethodPost, "/api/likes", `{"postId":7}`, &fakeLikeService{addErr: model.ErrPostNotFound}, http.StatusNotFound},
		{"unlike not liked", http.MethodDelete, "/api/likes?postId=7", "", &fakeLikeService{removeErr: model.ErrNotLiked}, http.StatusNotFound},
		{"unlike with body", http.MethodDelete, "/api/likes", `{"postId":7}`, &fakeLikeService{}, http.StatusOK},
		{"bad post id", http.MethodDelete, "/api/likes?postId=abc", "", &fakeLikeService{}, http.StatusBadRequest},
		{"unexpected error", http.MethodPost, "/api/likes", `{"postId":7}`, &fakeLikeService{addErr: errors.New("boom")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLikeHandler(tt.svc)
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := serve(t, "user_a", func(r chi.Router) {
				r.Post("/api/likes", h.Like)
				r.Delete("/api/likes", h.Unlike)
			}, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestLikeHandler_LikeReturnsStatus(t *testing.T) {
	h := NewLikeHandler(&fakeLikeService{})
	req := httptest.NewRequest(http.MethodPost, "/api/likes", strings.NewReader(`{"postId":7}`))
	rec := serve(t, "user_a", func(r chi.Router) { r.Post("/api/likes", h.Like) }, req)

	var status model.LikeStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Liked || status.LikeCount != 4 {
		t.Errorf("status = %+v", status)
	}
}

func TestPostHandler_ListParsesQuery(t *testing.T) {
	feed := &fakeFeedService{}
	h := NewPostHandler(&fakePostService{}, feed)

	req := httptest.NewRequest(http.MethodGet, "/api/posts?page=2&limit=12&userId=user_b&hashtag=sunny", nil)
	rec := serve(t, "viewer", func(r chi.Router) { r.Get("/api/posts", h.List) }, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := service.FeedQuery{Page: 2, Limit: 12, UserID: "user_b", Hashtag: "sunny"}
	if feed.queries[0] != want {
		t.Errorf("query = %+v, want %+v", feed.queries[0], want)
	}
	if feed.viewers[0] != "viewer" {
		t.Errorf("viewer = %q", feed.viewers[0])
	}
}

func TestPostHandler_Create(t *testing.T) {
	var gotIn model.CreatePostInput
	var gotFile bool
	svc := &fakePostService{
		createFn: func(ctx context.Context, userID string, in model.CreatePostInput, file multipart.File, header *multipart.FileHeader) (*model.FeedPost, error) {
			gotIn = in
			gotFile = file != nil && header != nil
			if file == nil {
				return nil, model.ErrImageRequired
			}
			return &model.FeedPost{Post: model.Post{ID: 1, UserID: userID}}, nil
		},
	}
	h := NewPostHandler(svc, &fakeFeedService{})
	routes := func(r chi.Router) { r.Post("/api/posts", h.Create) }

	body, contentType := multipartBody(t, map[string]string{
		"caption":  "Great day! #sunny @B",
		"mentions": `[{"userId":"user_b","displayText":"B"}]`,
	}, true)
	req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(t, "user_a", routes, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if !gotFile || gotIn.Caption == nil || *gotIn.Caption != "Great day! #sunny @B" {
		t.Errorf("input = %+v, file = %v", gotIn, gotFile)
	}
	if len(gotIn.Mentions) != 1 || gotIn.Mentions[0].UserID != "user_b" {
		t.Errorf("mentions = %+v", gotIn.Mentions)
	}

	body, contentType = multipartBody(t, map[string]string{"caption": "no image"}, false)
	req = httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)
	rec = serve(t, "user_a", routes, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing image: status = %d, want 400", rec.Code)
	}

	body, contentType = multipartBody(t, map[string]string{"mentions": "not json"}, true)
	req = httptest.NewRequest(http.MethodPost, "/api/posts", body)
	req.Header.Set("Content-Type", contentType)
	rec = serve(t, "user_a", routes, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad mentions: status = %d, want 400", rec.Code)
	}
}

func TestPostHandler_CreateUploadErrors(t *testing.T) {
	tests := []struct {
		err      error
		wantCode string
	}{
		{model.ErrFileTooLarge, model.CodeFileTooLarge},
		{model.ErrInvalidImageType, model.CodeInvalidImageType},
		{model.ErrCaptionTooLong, httputil.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := &fakePostService{
				createFn: func(ctx context.Context, userID string, in model.CreatePostInput, file multipart.File, header *multipart.FileHeader) (*model.FeedPost, error) {
					return nil, tt.err
				},
			}
			h := NewPostHandler(svc, &fakeFeedService{})
			body, contentType := multipartBody(t, nil, true)
			req := httptest.NewRequest(http.MethodPost, "/api/posts", body)
			req.Header.Set("Content-Type", contentType)
			rec := serve(t, "user_a", func(r chi.Router) { r.Post("/api/posts", h.Create) }, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decodeError(t, rec).Code; got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestPostHandler_Delete(t *testing.T) {
	svc := &fakePostService{
		deleteFn: func(ctx context.Context, postID int64, userID string) error {
			if postID == 404 {
				return model.ErrPostNotFound
			}
			if userID != "owner" {
				return model.ErrNotPostOwner
			}
			return nil
		},
	}
	h := NewPostHandler(svc, &fakeFeedService{})
	routes := func(r chi.Router) { r.Delete("/api/posts/{id}", h.Delete) }

	tests := []struct {
		user   string
		target string
		want   int
	}{
		{"owner", "/api/posts/1", http.StatusOK},
		{"intruder", "/api/posts/1", http.StatusForbidden},
		{"owner", "/api/posts/404", http.StatusNotFound},
		{"owner", "/api/posts/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := serve(t, tt.user, routes, httptest.NewRequest(http.MethodDelete, tt.target, nil))
		if rec.Code != tt.want {
			t.Errorf("%s DELETE %s: status = %d, want %d", tt.user, tt.target, rec.Code, tt.want)
		}
	}
}

func TestCommentHandler(t *testing.T) {
	svc := &fakeCommentService{}
	h := NewCommentHandler(svc)
	routes := func(r chi.Router) {
		r.Post("/api/comments", h.Create)
		r.Delete("/api/comments/{id}", h.Delete)
	}

	body := `{"postId":3,"content":"hi @Bob","mentions":[{"userId":"user_b","displayText":"Bob"}]}`
	rec := serve(t, "user_a", routes, httptest.NewRequest(http.MethodPost, "/api/comments", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if svc.got.PostID != 3 || len(svc.got.Mentions) != 1 {
		t.Errorf("request = %+v", svc.got)
	}

	rec = serve(t, "user_a", routes, httptest.NewRequest(http.MethodPost, "/api/comments", strings.NewReader(`{"postId":3,"content":"  "}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank content: status = %d, want 400", rec.Code)
	}

	rec = serve(t, "user_a", routes, httptest.NewRequest(http.MethodDelete, "/api/comments/9", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("delete other's comment: status = %d, want 403", rec.Code)
	}
}
