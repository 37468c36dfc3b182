package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront-service/internal/models"
)

// GetProfileByID retrieves a profile, or nil when none exists yet
func (s *Store) GetProfileByID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile inserts a profile row keyed by the user id
func (s *Store) CreateProfile(ctx context.Context, profile *models.Profile) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO profiles (id, full_name, username, avatar_url) VALUES ($1, $2, $3, $4)",
		profile.ID, profile.FullName, profile.Username, profile.AvatarURL)
	return err
}

// UpdateProfile applies a typed partial update to a profile
func (s *Store) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.FullName != nil {
		appendSet("full_name", *upd.FullName)
	}
	if upd.Username != nil {
		appendSet("username", *upd.Username)
	}
	if upd.AvatarURL != nil {
		appendSet("avatar_url", *upd.AvatarURL)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, userID)
	query := fmt.Sprintf("UPDATE profiles SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))

	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}
