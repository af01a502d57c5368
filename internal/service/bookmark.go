package service

import (
	"context"
	"fmt"

	"lumigram/internal/model"
	"lumigram/internal/repository"
)

type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	postRepo     repository.PostRepository
	feedRepo     repository.FeedRepository
	enricher     *postEnricher
}

func NewBookmarkService(
	bookmarkRepo repository.BookmarkRepository,
	postRepo repository.PostRepository,
	feedRepo repository.FeedRepository,
	likeRepo repository.LikeRepository,
	mentionRepo repository.MentionRepository,
) *BookmarkService {
	return &BookmarkService{
		bookmarkRepo: bookmarkRepo,
		postRepo:     postRepo,
		feedRepo:     feedRepo,
		enricher: &postEnricher{
			feedRepo:     feedRepo,
			likeRepo:     likeRepo,
			bookmarkRepo: bookmarkRepo,
			mentionRepo:  mentionRepo,
		},
	}
}

func (s *BookmarkService) Add(ctx context.Context, postID int64, userID string) error {
	if err := requirePost(ctx, s.postRepo, postID); err != nil {
		return err
	}
	return s.bookmarkRepo.Create(ctx, postID, userID)
}

func (s *BookmarkService) Remove(ctx context.Context, postID int64, userID string) error {
	return s.bookmarkRepo.Delete(ctx, postID, userID)
}

func (s *BookmarkService) Status(ctx context.Context, postID int64, userID string) (*model.BookmarkStatus, error) {
	if err := requirePost(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}
	bookmarked, err := s.bookmarkRepo.Exists(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("check bookmark: %w", err)
	}
	return &model.BookmarkStatus{Bookmarked: bookmarked}, nil
}

// ListForUser returns the posts userID has saved, most recently saved first.
func (s *BookmarkService) ListForUser(ctx context.Context, userID string, page, limit int) (*model.PostPage, error) {
	page, limit = normalizePage(page, limit, GridDefaultLimit)

	total, err := s.feedRepo.CountBookmarked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count bookmarks: %w", err)
	}

	posts, err := s.feedRepo.ListBookmarked(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	if err := s.enricher.enrich(ctx, posts, userID); err != nil {
		return nil, err
	}
	return newPostPage(posts, page, limit, total), nil
}
