package model

import "time"

// MentionCandidate is a suggestion the author picked while typing. It is
// only stored if its display text still appears in the final text.
type MentionCandidate struct {
	UserID      string `json:"userId"`
	DisplayText string `json:"displayText"`
}

// Mention links a user to exactly one post caption or comment.
type Mention struct {
	ID              int64     `db:"id" json:"id"`
	PostID          *int64    `db:"post_id" json:"postId,omitempty"`
	CommentID       *int64    `db:"comment_id" json:"commentId,omitempty"`
	MentionedUserID string    `db:"mentioned_user_id" json:"userId"`
	MentionerUserID string    `db:"mentioner_user_id" json:"-"`
	DisplayText     string    `db:"display_text" json:"displayText"`
	CreatedAt       time.Time `db:"created_at" json:"-"`
}
