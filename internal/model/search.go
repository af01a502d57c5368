package model

import "errors"

type HashtagResult struct {
	Tag       string `db:"tag" json:"tag"`
	PostCount int    `db:"post_count" json:"postCount"`
}

type SearchResponse struct {
	Hashtags []HashtagResult `json:"hashtags"`
	Users    []UserSummary   `json:"users"`
}

const (
	SearchTypeAll     = "all"
	SearchTypeHashtag = "hashtag"
	SearchTypeUser    = "user"

	SearchResultLimit = 10
)

var (
	ErrQueryRequired     = errors.New("search query is required")
	ErrInvalidSearchType = errors.New("invalid search type")
)
