package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"table-order-api/models"
	"table-order-api/repository"

	"go.uber.org/zap"
)

type SessionStore interface {
	FindByToken(ctx context.Context, token string) (*models.Session, error)
	Expire(ctx context.Context, id string, now time.Time) error
}

// SessionValidator admits only active, unexpired table sessions.
type SessionValidator struct {
	store SessionStore
	now   func() time.Time
	log   *zap.Logger
}

func NewSessionValidator(store SessionStore, now func() time.Time, log *zap.Logger) *SessionValidator {
	return &SessionValidator{store: store, now: now, log: log}
}

// Validate returns the session and its table. Unknown, expired and
// just-expired tokens all fail with the same INVALID_SESSION error; only the
// just-expired case is marked expired in storage.
func (v *SessionValidator) Validate(ctx context.Context, token string) (*models.Session, error) {
	session, err := v.store.FindByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodeInvalidSession, ErrMsgSessionInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}

	now := v.now()
	if session.Usable(now) {
		return session, nil
	}
	if session.Status == models.SessionActive {
		v.expire(ctx, session, now)
	}
	return nil, newError(CodeInvalidSession, ErrMsgSessionInvalid)
}

// expire is best effort; the request is rejected either way.
func (v *SessionValidator) expire(ctx context.Context, session *models.Session, now time.Time) {
	if err := v.store.Expire(context.WithoutCancel(ctx), session.ID, now); err != nil {
		v.log.Warn("failed to mark session expired",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return
	}
	v.log.Info("session expired", zap.String("session_id", session.ID), zap.String("table_id", session.TableID))
}
