package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"lumigram/internal/extract"
	"lumigram/internal/model"
	"lumigram/internal/repository"
)

const (
	// FeedDefaultLimit is the page size of the main feed.
	FeedDefaultLimit = 10

	// GridDefaultLimit is the page size of profile, hashtag and bookmark grids.
	GridDefaultLimit = 12

	FeedMaxLimit = 50
)

// FeedQuery selects a page of posts. UserID and Hashtag are optional and
// UserID takes precedence when both are set.
type FeedQuery struct {
	Page    int
	Limit   int
	UserID  string
	Hashtag string
}

type FeedService struct {
	feedRepo repository.FeedRepository
	enricher *postEnricher
}

func NewFeedService(
	feedRepo repository.FeedRepository,
	likeRepo repository.LikeRepository,
	bookmarkRepo repository.BookmarkRepository,
	mentionRepo repository.MentionRepository,
) *FeedService {
	return &FeedService{
		feedRepo: feedRepo,
		enricher: &postEnricher{
			feedRepo:     feedRepo,
			likeRepo:     likeRepo,
			bookmarkRepo: bookmarkRepo,
			mentionRepo:  mentionRepo,
		},
	}
}

// List returns one page of posts, newest first. viewerID may be empty for
// anonymous requests, in which case the viewer flags are omitted.
func (s *FeedService) List(ctx context.Context, q FeedQuery, viewerID string) (*model.PostPage, error) {
	startTime := time.Now()

	filter := repository.FeedFilter{UserID: q.UserID}
	if filter.UserID == "" {
		filter.Hashtag = extract.NormalizeTag(q.Hashtag)
	}

	defaultLimit := FeedDefaultLimit
	if filter.UserID != "" || filter.Hashtag != "" {
		defaultLimit = GridDefaultLimit
	}
	page, limit := normalizePage(q.Page, q.Limit, defaultLimit)
	offset := (page - 1) * limit

	total, err := s.feedRepo.CountPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	posts, err := s.feedRepo.ListPosts(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if err := s.enricher.enrich(ctx, posts, viewerID); err != nil {
		return nil, err
	}

	log.Printf("[FeedService] List: page=%d limit=%d user=%q hashtag=%q returned=%d total=%d duration=%v",
		page, limit, filter.UserID, filter.Hashtag, len(posts), total, time.Since(startTime))

	return newPostPage(posts, page, limit, total), nil
}

// normalizePage clamps page to >= 1 and limit to (0, FeedMaxLimit].
func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}
	return page, limit
}

func newPostPage(posts []model.FeedPost, page, limit, total int) *model.PostPage {
	if posts == nil {
		posts = []model.FeedPost{}
	}
	return &model.PostPage{
		Posts:   posts,
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: total > page*limit,
	}
}
