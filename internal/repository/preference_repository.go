package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bbarathsrinivasan/ACMHack/internal/models"
)

// PreferenceRepository persists user availability profiles.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByUser returns the stored preference for a user. Missing rows surface as sql.ErrNoRows.
func (r *PreferenceRepository) GetByUser(ctx context.Context, userID string) (*models.UserPreference, error) {
	const query = `SELECT id, user_id, availability, created_at, updated_at FROM user_preferences WHERE user_id = $1`
	var pref models.UserPreference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert creates or replaces the preference for pref.UserID.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.UserPreference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now
	if len(pref.Availability) == 0 {
		pref.Availability = []byte("{}")
	}

	const query = `INSERT INTO user_preferences (id, user_id, availability, created_at, updated_at)
		VALUES (:id, :user_id, :availability, :created_at, :updated_at)
		ON CONFLICT (user_id) DO UPDATE
		SET availability = EXCLUDED.availability,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert user preference: %w", err)
	}
	return nil
}
