package handler

import (
	"context"
	"mime/multipart"

	"lumigram/internal/model"
	"lumigram/internal/service"
)

// Services consumed by the handlers. The concrete implementations live in
// internal/service.

type PostService interface {
	Create(ctx context.Context, userID string, in model.CreatePostInput, file multipart.File, header *multipart.FileHeader) (*model.FeedPost, error)
	Get(ctx context.Context, postID int64, viewerID string) (*model.PostDetail, error)
	Delete(ctx context.Context, postID int64, userID string) error
}

type FeedService interface {
	List(ctx context.Context, q service.FeedQuery, viewerID string) (*model.PostPage, error)
}

type CommentService interface {
	Create(ctx context.Context, userID string, req model.CreateCommentRequest) (*model.Comment, error)
	Delete(ctx context.Context, commentID int64, userID string) error
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
}

type LikeService interface {
	Add(ctx context.Context, postID int64, userID string) error
	Remove(ctx context.Context, postID int64, userID string) error
	Status(ctx context.Context, postID int64, userID string) (*model.LikeStatus, error)
}

type BookmarkService interface {
	Add(ctx context.Context, postID int64, userID string) error
	Remove(ctx context.Context, postID int64, userID string) error
	Status(ctx context.Context, postID int64, userID string) (*model.BookmarkStatus, error)
	ListForUser(ctx context.Context, userID string, page, limit int) (*model.PostPage, error)
}

type FollowService interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	Status(ctx context.Context, viewerID, userID string) (*model.FollowStatus, error)
}

type UserService interface {
	Profile(ctx context.Context, userID, viewerID string) (*model.ProfileResponse, error)
	Update(ctx context.Context, actorID, targetID string, req model.UpdateProfileRequest, file multipart.File, header *multipart.FileHeader) (*model.User, error)
	SearchMentions(ctx context.Context, query string) ([]model.UserSummary, error)
}

type SearchService interface {
	Search(ctx context.Context, query, searchType string) (*model.SearchResponse, error)
}

var (
	_ PostService     = (*service.PostService)(nil)
	_ FeedService     = (*service.FeedService)(nil)
	_ CommentService  = (*service.CommentService)(nil)
	_ LikeService     = (*service.LikeService)(nil)
	_ BookmarkService = (*service.BookmarkService)(nil)
	_ FollowService   = (*service.FollowService)(nil)
	_ UserService     = (*service.UserService)(nil)
	_ SearchService   = (*service.SearchService)(nil)
)
