package service

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/url"
	"strings"
	"unicode/utf8"

	"lumigram/internal/cache"
	"lumigram/internal/extract"
	"lumigram/internal/model"
	"lumigram/internal/repository"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	images     ImageStore
	cache      cache.Store
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	images ImageStore,
	store cache.Store,
) *UserService {
	if store == nil {
		store = cache.Noop{}
	}
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		images:     images,
		cache:      store,
	}
}

// Sync makes sure the identity has a user row. Existing rows are never
// overwritten. The cache marker is written only after the row exists, so a
// request that sees it can rely on the row being there.
func (s *UserService) Sync(ctx context.Context, id model.Identity) error {
	if id.Subject == "" {
		return model.ErrMissingIdentity
	}

	key := cache.UserSyncedKey(id.Subject)
	synced, err := s.cache.Exists(ctx, key)
	if err != nil {
		log.Printf("[UserService] Sync marker unavailable: user=%s err=%v", id.Subject, err)
	}
	if synced {
		return nil
	}

	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = id.Subject
	}
	var imageURL *string
	if id.ImageURL != "" {
		imageURL = &id.ImageURL
	}

	if err := s.userRepo.EnsureExists(ctx, id.Subject, name, imageURL); err != nil {
		return fmt.Errorf("sync user: %w", err)
	}

	if err := s.cache.SetMarker(ctx, key, cache.UserSyncedTTL); err != nil {
		log.Printf("[UserService] Failed to set sync marker: user=%s err=%v", id.Subject, err)
	}
	return nil
}

func (s *UserService) Profile(ctx context.Context, userID, viewerID string) (*model.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.userRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &model.ProfileResponse{
		User:   user,
		Stats:  stats,
		IsSelf: viewerID == userID,
	}
	if viewerID != "" && !resp.IsSelf {
		if resp.IsFollowing, err = s.followRepo.Exists(ctx, viewerID, userID); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Update edits the profile of targetID. Only the owner may do so. When a new
// image is supplied the previous object is removed after the row is saved.
func (s *UserService) Update(ctx context.Context, actorID, targetID string, req model.UpdateProfileRequest, file multipart.File, header *multipart.FileHeader) (*model.User, error) {
	if actorID != targetID {
		return nil, model.ErrNotProfileOwner
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := applyProfileFields(user, req); err != nil {
		return nil, err
	}

	var oldKey string
	var upload *model.UploadResult
	if file != nil && header != nil {
		upload, err = s.images.UploadProfileImage(ctx, file, header, req.Crop)
		if err != nil {
			return nil, err
		}
		if user.ImageKey != nil {
			oldKey = *user.ImageKey
		}
		user.ImageURL = &upload.URL
		user.ImageKey = &upload.Key
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if upload != nil {
			if delErr := s.images.DeleteObject(ctx, upload.Key); delErr != nil {
				log.Printf("[UserService] Failed to remove unused image: key=%s err=%v", upload.Key, delErr)
			}
		}
		return nil, err
	}

	if oldKey != "" {
		if err := s.images.DeleteObject(ctx, oldKey); err != nil {
			log.Printf("[UserService] Failed to delete old profile image: user=%s key=%s err=%v", targetID, oldKey, err)
		}
	}
	return user, nil
}

func applyProfileFields(user *model.User, req model.UpdateProfileRequest) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return model.ErrNameRequired
		}
		if utf8.RuneCountInString(name) > model.MaxNameLength {
			return model.ErrNameTooLong
		}
		user.Name = name
	}

	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if utf8.RuneCountInString(bio) > model.MaxBioLength {
			return model.ErrBioTooLong
		}
		user.Bio = optionalString(bio)
	}

	if req.Website != nil {
		website := strings.TrimSpace(*req.Website)
		if website != "" && !isWebURL(website) {
			return model.ErrInvalidWebsite
		}
		user.Website = optionalString(website)
	}
	return nil
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SearchMentions backs @-autocomplete. When query holds a whole draft, the
// last @token is the one being completed.
func (s *UserService) SearchMentions(ctx context.Context, query string) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if tokens := extract.MentionTokens(query); len(tokens) > 0 {
		query = tokens[len(tokens)-1]
	} else {
		query = strings.TrimSpace(strings.TrimLeft(query, "@"))
	}
	if query == "" {
		return []model.UserSummary{}, nil
	}
	return s.userRepo.Search(ctx, query, model.MentionSuggestionLimit)
}
