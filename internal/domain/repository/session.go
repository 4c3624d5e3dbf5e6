package repository

import (
	"context"

	"github.com/valog/shopbot/internal/domain/model"
)

// SessionRepository stores per-chat conversation state. It is advisory
// only: losing a session never affects order state.
type SessionRepository interface {
	Get(ctx context.Context, chatID int64) (*model.Session, error)
	Set(ctx context.Context, chatID int64, session *model.Session) error
	Clear(ctx context.Context, chatID int64) error
}
