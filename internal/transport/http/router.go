package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lumigram/internal/handler"
	"lumigram/internal/httputil"
	authmw "lumigram/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	PostHandler     *handler.PostHandler
	CommentHandler  *handler.CommentHandler
	LikeHandler     *handler.LikeHandler
	BookmarkHandler *handler.BookmarkHandler
	FollowHandler   *handler.FollowHandler
	UserHandler     *handler.UserHandler
	SearchHandler   *handler.SearchHandler

	Auth   authmw.AuthConfig
	Syncer authmw.UserSyncer
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes: a token is optional and only adds viewer state.
		r.Group(func(r chi.Router) {
			r.Use(authmw.OptionalAuth(cfg.Auth))
			r.Use(authmw.SyncUser(cfg.Syncer))

			r.Get("/posts", cfg.PostHandler.List)
			r.Get("/posts/{id}", cfg.PostHandler.Get)
			r.Get("/posts/{id}/comments", cfg.CommentHandler.ListByPost)

			r.Get("/users/search", cfg.UserHandler.Search)
			r.Get("/users/{id}", cfg.UserHandler.Get)

			r.Get("/search", cfg.SearchHandler.Search)
		})

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(authmw.Auth(cfg.Auth))
			r.Use(authmw.SyncUser(cfg.Syncer))

			r.Post("/posts", cfg.PostHandler.Create)
			r.Delete("/posts/{id}", cfg.PostHandler.Delete)

			r.Post("/comments", cfg.CommentHandler.Create)
			r.Delete("/comments/{id}", cfg.CommentHandler.Delete)

			r.Get("/likes", cfg.LikeHandler.Status)
			r.Post("/likes", cfg.LikeHandler.Like)
			r.Delete("/likes", cfg.LikeHandler.Unlike)

			r.Get("/bookmarks", cfg.BookmarkHandler.Get)
			r.Post("/bookmarks", cfg.BookmarkHandler.Add)
			r.Delete("/bookmarks", cfg.BookmarkHandler.Remove)

			r.Get("/follows", cfg.FollowHandler.Status)
			r.Post("/follows", cfg.FollowHandler.Follow)
			r.Delete("/follows", cfg.FollowHandler.Unfollow)

			r.Put("/users/{id}", cfg.UserHandler.Update)
		})
	})

	return r
}
