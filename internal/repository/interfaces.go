package repository

import (
	"context"

	"lumigram/internal/model"
)

type UserRepository interface {
	// EnsureExists inserts the user on first sight and leaves existing rows
	// untouched, so profile edits survive later logins.
	EnsureExists(ctx context.Context, id, name string, imageURL *string) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, user *model.User) error
	GetStats(ctx context.Context, id string) (model.UserStats, error)
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	Exists(ctx context.Context, postID int64) (bool, error)
	// Delete removes the post owned by userID and returns the deleted row.
	Delete(ctx context.Context, postID int64, userID string) (*model.Post, error)
}

// FeedFilter narrows a post listing. Empty fields are ignored.
type FeedFilter struct {
	UserID  string
	Hashtag string
}

type FeedRepository interface {
	ListPosts(ctx context.Context, filter FeedFilter, limit, offset int) ([]model.FeedPost, error)
	CountPosts(ctx context.Context, filter FeedFilter) (int, error)
	GetPost(ctx context.Context, postID int64) (*model.FeedPost, error)
	ListBookmarked(ctx context.Context, userID string, limit, offset int) ([]model.FeedPost, error)
	CountBookmarked(ctx context.Context, userID string) (int, error)
	// Stats returns like and comment counts keyed by post id. Posts without
	// activity are present with zero counts.
	Stats(ctx context.Context, postIDs []int64) (map[int64]model.PostStats, error)
	RecentComments(ctx context.Context, postIDs []int64, perPost int) (map[int64][]model.Comment, error)
	Hashtags(ctx context.Context, postIDs []int64) (map[int64][]string, error)
}

type LikeRepository interface {
	Create(ctx context.Context, postID int64, userID string) error
	Delete(ctx context.Context, postID int64, userID string) error
	Exists(ctx context.Context, postID int64, userID string) (bool, error)
	Count(ctx context.Context, postID int64) (int, error)
	// CheckLikes returns post_id -> liked for every id in postIDs.
	CheckLikes(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error)
}

type BookmarkRepository interface {
	Create(ctx context.Context, postID int64, userID string) error
	Delete(ctx context.Context, postID int64, userID string) error
	Exists(ctx context.Context, postID int64, userID string) (bool, error)
	CheckBookmarks(ctx context.Context, userID string, postIDs []int64) (map[int64]bool, error)
}

type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID string) (bool, error)
	Delete(ctx context.Context, followerID, followeeID string) error
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	Counts(ctx context.Context, userID string) (followers int, following int, err error)
}

type CommentRepository interface {
	Create(ctx context.Context, postID int64, userID, content string) (*model.Comment, error)
	Delete(ctx context.Context, commentID int64, userID string) error
	// ListByPost returns every comment on a post, oldest first.
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
}

type HashtagRepository interface {
	// Upsert returns the id of tag, inserting it if it does not exist yet.
	Upsert(ctx context.Context, tag string) (int64, error)
	LinkPost(ctx context.Context, postID, hashtagID int64) error
	Search(ctx context.Context, prefix string, limit int) ([]model.HashtagResult, error)
}

type MentionRepository interface {
	// CreateForPost stores mentions with the post as parent and returns how
	// many were written. Candidates naming unknown users are skipped.
	CreateForPost(ctx context.Context, postID int64, mentionerID string, mentions []model.MentionCandidate) (int, error)
	CreateForComment(ctx context.Context, commentID int64, mentionerID string, mentions []model.MentionCandidate) (int, error)
	ListForPosts(ctx context.Context, postIDs []int64) (map[int64][]model.Mention, error)
	ListForComments(ctx context.Context, commentIDs []int64) (map[int64][]model.Mention, error)
}
