package model

import (
	"errors"
	"time"
)

// Post is a single image post.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	ImageURL  string    `db:"image_url" json:"imageUrl"`
	ImageKey  string    `db:"image_key" json:"-"`
	Caption   *string   `db:"caption" json:"caption"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// FeedPost is a post enriched for display. IsLiked and IsBookmarked are only
// present when the request carries a viewer.
type FeedPost struct {
	Post
	Author         UserSummary `db:"author" json:"author"`
	LikeCount      int         `db:"-" json:"likeCount"`
	CommentCount   int         `db:"-" json:"commentCount"`
	RecentComments []Comment   `db:"-" json:"recentComments"`
	Mentions       []Mention   `db:"-" json:"mentions"`
	Hashtags       []string    `db:"-" json:"hashtags"`
	IsLiked        *bool       `db:"-" json:"isLiked,omitempty"`
	IsBookmarked   *bool       `db:"-" json:"isBookmarked,omitempty"`
}

// PostDetail is the single-post view with the whole comment thread.
type PostDetail struct {
	FeedPost
	Comments []Comment `json:"comments"`
}

// PostStats holds the aggregate counters computed on read.
type PostStats struct {
	PostID       int64 `db:"post_id"`
	LikeCount    int   `db:"like_count"`
	CommentCount int   `db:"comment_count"`
}

// CreatePostInput is what the handler extracts from the multipart form.
type CreatePostInput struct {
	Caption  *string
	Mentions []MentionCandidate
}

const (
	MaxPostCaptionLength = 2200
	MaxPostImageSize     = 5 * 1024 * 1024
	PostImageFolder      = "posts"
	PostCacheControl     = "public, max-age=31536000"
)

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotPostOwner   = errors.New("not the owner of this post")
	ErrImageRequired  = errors.New("an image is required")
	ErrCaptionTooLong = errors.New("caption too long")
)
