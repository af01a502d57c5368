package service

import (
	"context"
	"log"
	"strings"
	"time"

	"lumigram/internal/cache"
	"lumigram/internal/extract"
	"lumigram/internal/model"
	"lumigram/internal/repository"
)

type SearchService struct {
	hashtagRepo repository.HashtagRepository
	userRepo    repository.UserRepository
	cache       cache.Store
	ttl         time.Duration
}

func NewSearchService(
	hashtagRepo repository.HashtagRepository,
	userRepo repository.UserRepository,
	store cache.Store,
	ttl time.Duration,
) *SearchService {
	if store == nil {
		store = cache.Noop{}
	}
	return &SearchService{
		hashtagRepo: hashtagRepo,
		userRepo:    userRepo,
		cache:       store,
		ttl:         ttl,
	}
}

// Search looks up hashtags, users or both. A leading # or @ on the query is
// ignored. Cache failures fall through to the database.
func (s *SearchService) Search(ctx context.Context, query, searchType string) (*model.SearchResponse, error) {
	if searchType == "" {
		searchType = model.SearchTypeAll
	}
	switch searchType {
	case model.SearchTypeAll, model.SearchTypeHashtag, model.SearchTypeUser:
	default:
		return nil, model.ErrInvalidSearchType
	}

	query = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(query), "#@"))
	if query == "" {
		return nil, model.ErrQueryRequired
	}

	key := cache.SearchKey(searchType, extract.Fold(query))
	var cached model.SearchResponse
	if found, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		log.Printf("[SearchService] Cache read failed: key=%s err=%v", key, err)
	} else if found {
		return &cached, nil
	}

	resp := &model.SearchResponse{
		Hashtags: []model.HashtagResult{},
		Users:    []model.UserSummary{},
	}

	if searchType != model.SearchTypeUser {
		tags, err := s.hashtagRepo.Search(ctx, extract.NormalizeTag(query), model.SearchResultLimit)
		if err != nil {
			return nil, err
		}
		resp.Hashtags = tags
	}

	if searchType != model.SearchTypeHashtag {
		users, err := s.userRepo.Search(ctx, query, model.SearchResultLimit)
		if err != nil {
			return nil, err
		}
		resp.Users = users
	}

	if err := s.cache.SetJSON(ctx, key, resp, s.ttl); err != nil {
		log.Printf("[SearchService] Cache write failed: key=%s err=%v", key, err)
	}
	return resp, nil
}
