package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// ProfileService manages user profiles: lazy creation on first access,
// explicit edits, and avatar uploads.
type ProfileService struct {
	profiles ProfileStore
	uploader Uploader
	bucket   string
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profiles ProfileStore, uploader Uploader, bucket string) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		uploader: uploader,
		bucket:   bucket,
		logger:   util.GetLogger(),
	}
}

// LoadProfile returns the user's profile, creating a placeholder row
// on first access.
func (s *ProfileService) LoadProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}

	profile, err := s.profiles.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if profile == nil {
		profile = &models.Profile{
			ID:       userID,
			FullName: "New User",
			Username: "user-" + userID[:minInt(8, len(userID))],
		}
		if err := s.profiles.CreateProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		s.logger.Info("Profile created", zap.String("user_id", userID))
	}

	return profile, nil
}

// UpdateProfile applies a partial edit and returns the refreshed row.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}

	if err := s.profiles.UpdateProfile(ctx, userID, upd); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.LoadProfile(ctx, userID)
}

// UploadAvatar stores the image under a unique per-upload path (stale
// CDN caches keep serving the old URL otherwise), writes the public
// URL back to the profile, and returns the refreshed row.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, data []byte) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: no authenticated user", ErrInvalidState)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty avatar image", ErrInvalidInput)
	}

	path := fmt.Sprintf("%s/avatar_%d.png", userID, now().UnixMilli())

	storedPath, err := s.uploader.Upload(ctx, s.bucket, path, data, true)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	avatarURL := s.uploader.PublicURL(s.bucket, storedPath)
	return s.UpdateProfile(ctx, userID, models.ProfileUpdate{AvatarURL: &avatarURL})
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
