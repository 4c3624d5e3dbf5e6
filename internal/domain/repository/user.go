package repository

import (
	"context"

	"github.com/valog/shopbot/internal/domain/model"
)

// UserRepository describes persistence operations with Telegram users.
type UserRepository interface {
	Upsert(ctx context.Context, chatID int64, firstName, lastName string) (*model.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*model.User, error)
}
