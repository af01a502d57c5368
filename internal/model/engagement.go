package model

import "errors"

type LikeStatus struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type BookmarkStatus struct {
	Bookmarked bool `json:"bookmarked"`
}

// PostPage is one page of posts with offset pagination metadata.
type PostPage struct {
	Posts   []FeedPost `json:"posts"`
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	Total   int        `json:"total"`
	HasMore bool       `json:"hasMore"`
}

var (
	ErrAlreadyLiked      = errors.New("post already liked")
	ErrNotLiked          = errors.New("post not liked")
	ErrAlreadyBookmarked = errors.New("post already bookmarked")
	ErrNotBookmarked     = errors.New("post not bookmarked")
)
