package repository

import (
	"context"
	"fmt"
	"time"

	"table-order-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByToken returns the session for token with its table, whatever its status.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Preload("Table").First(&session, "token = ?", token).Error
	if err != nil {
		return nil, fmt.Errorf("find session: %w", notFound(err))
	}
	return &session, nil
}

// Expire marks an active session expired as of now. Already expired sessions are left alone.
func (r *SessionRepository) Expire(ctx context.Context, id string, now time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND status = ?", id, models.SessionActive).
		Updates(map[string]interface{}{
			"status":     models.SessionExpired,
			"expires_at": now.UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("expire session %s: %w", id, err)
	}
	return nil
}

type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// Create issues a new active session for a table.
func (r *SessionRepository) Create(ctx context.Context, table *models.Table, ttl time.Duration, now time.Time, meta SessionMeta) (*models.Session, error) {
	session := models.Session{
		TableID:   table.ID,
		Table:     *table,
		Token:     uuid.NewString(),
		Status:    models.SessionActive,
		ExpiresAt: now.Add(ttl).UTC(),
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
	}
	if err := r.db.WithContext(ctx).Omit("Table").Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &session, nil
}
