package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"lumigram/internal/extract"
	"lumigram/internal/model"
	"lumigram/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	mentionRepo repository.MentionRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	mentionRepo repository.MentionRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		mentionRepo: mentionRepo,
	}
}

func (s *CommentService) Create(ctx context.Context, userID string, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if utf8.RuneCountInString(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	if err := requirePost(ctx, s.postRepo, req.PostID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.Create(ctx, req.PostID, userID, content)
	if err != nil {
		return nil, err
	}
	comment.Mentions = []model.Mention{}

	valid := extract.ValidMentions(content, req.Mentions)
	if len(valid) > 0 {
		if _, err := s.mentionRepo.CreateForComment(ctx, comment.ID, userID, valid); err != nil {
			log.Printf("[CommentService] Failed to store mentions: comment=%d err=%v", comment.ID, err)
		} else if stored, err := s.mentionRepo.ListForComments(ctx, []int64{comment.ID}); err == nil {
			comment.Mentions = nonNilMentions(stored[comment.ID])
		}
	}

	log.Printf("[CommentService] Created comment=%d post=%d user=%s", comment.ID, req.PostID, userID)
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, commentID int64, userID string) error {
	return s.commentRepo.Delete(ctx, commentID, userID)
}

// ListByPost returns the full thread of a post, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	if err := requirePost(ctx, s.postRepo, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	commentIDs := make([]int64, len(comments))
	for i := range comments {
		commentIDs[i] = comments[i].ID
	}
	mentions, err := s.mentionRepo.ListForComments(ctx, commentIDs)
	if err != nil {
		return nil, fmt.Errorf("load comment mentions: %w", err)
	}
	return attachCommentMentions(comments, mentions), nil
}
