package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        int64       `db:"id" json:"id"`
	PostID    int64       `db:"post_id" json:"postId"`
	UserID    string      `db:"user_id" json:"-"`
	Content   string      `db:"content" json:"content"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
	Author    UserSummary `db:"author" json:"author"`
	Mentions  []Mention   `db:"-" json:"mentions"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	PostID   int64              `json:"postId"`
	Content  string             `json:"content"`
	Mentions []MentionCandidate `json:"mentions"`
}

const (
	MaxCommentLength = 2200

	// RecentCommentsPerPost is how many comments the feed attaches to each post.
	RecentCommentsPerPost = 2
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrContentRequired = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment content too long")
)
