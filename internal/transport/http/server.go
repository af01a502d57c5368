package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"lumigram/internal/cache"
	"lumigram/internal/config"
	"lumigram/internal/database"
	"lumigram/internal/handler"
	"lumigram/internal/redis"
	"lumigram/internal/repository"
	"lumigram/internal/service"
	authmw "lumigram/internal/transport/http/middleware"
)

// Run wires the application and serves until SIGINT or SIGTERM, then drains
// in-flight requests for at most cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	var store cache.Store = cache.Noop{}
	redisClient, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("[Server] Redis unavailable, continuing without cache: %v", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient.Client)
	}

	media, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to configure object storage: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	feedRepo := repository.NewFeedRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	hashtagRepo := repository.NewHashtagRepository(db)
	mentionRepo := repository.NewMentionRepository(db)

	userService := service.NewUserService(userRepo, followRepo, media, store)

	router := NewRouter(RouterConfig{
		PostHandler: handler.NewPostHandler(
			service.NewPostService(postRepo, feedRepo, commentRepo, hashtagRepo, mentionRepo, likeRepo, bookmarkRepo, media),
			service.NewFeedService(feedRepo, likeRepo, bookmarkRepo, mentionRepo),
		),
		CommentHandler:  handler.NewCommentHandler(service.NewCommentService(commentRepo, postRepo, mentionRepo)),
		LikeHandler:     handler.NewLikeHandler(service.NewLikeService(likeRepo, postRepo)),
		BookmarkHandler: handler.NewBookmarkHandler(service.NewBookmarkService(bookmarkRepo, postRepo, feedRepo, likeRepo, mentionRepo)),
		FollowHandler:   handler.NewFollowHandler(service.NewFollowService(followRepo, userRepo)),
		UserHandler:     handler.NewUserHandler(userService),
		SearchHandler:   handler.NewSearchHandler(service.NewSearchService(hashtagRepo, userRepo, store, cfg.SearchCacheTTL)),
		Auth: authmw.AuthConfig{
			Secret:     cfg.AuthJWTSecret,
			Issuer:     cfg.AuthIssuer,
			CookieName: cfg.AuthCookieName,
		},
		Syncer: userService,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("[Server] Shutting down (timeout %s)", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
