// Package bridge projects committed order transitions into the chat
// conversation: it sends the user a message and advances the dialog
// session. The projection is one-way and best-effort, so a delivery
// failure never disturbs order state.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/valog/shopbot/internal/domain/lifecycle"
	"github.com/valog/shopbot/internal/domain/model"
	"github.com/valog/shopbot/internal/domain/repository"
)

// Notifier delivers a text message to a chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Bridge translates lifecycle effects into chat messages and session
// updates.
type Bridge struct {
	notifier Notifier
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// New constructs a Bridge.
func New(notifier Notifier, sessions repository.SessionRepository, logger *slog.Logger) *Bridge {
	return &Bridge{notifier: notifier, sessions: sessions, logger: logger}
}

// OrderChanged reacts to a committed transition. Unknown effects are
// ignored.
func (b *Bridge) OrderChanged(ctx context.Context, order *model.Order, effect lifecycle.Effect) {
	var (
		text string
		step string
	)

	switch effect {
	case lifecycle.EffectStoreReference:
		text = fmt.Sprintf("Заказ %s на сумму %.2f %s создан, ожидаем оплату.", order.ID, order.Amount, order.Currency)
		step = model.SessionStepAwaitingPayment
	case lifecycle.EffectGrantEntitlement:
		text = fmt.Sprintf("Оплата заказа %s прошла успешно. Спасибо за покупку!", order.ID)
		step = model.SessionStepDone
	case lifecycle.EffectNotifyFailure:
		text = fmt.Sprintf("Оплата заказа %s не прошла. Попробуйте оформить заказ ещё раз.", order.ID)
		step = model.SessionStepIdle
	case lifecycle.EffectNotifyExpiry:
		text = fmt.Sprintf("Срок оплаты заказа %s истёк. Оформите заказ заново.", order.ID)
		step = model.SessionStepIdle
	default:
		return
	}

	if err := b.notifier.SendMessage(ctx, order.UserID, text); err != nil {
		b.logger.Error("chat notification failed",
			slog.Int64("chat_id", order.UserID),
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	session := &model.Session{Step: step, LastMessage: text}
	if step == model.SessionStepAwaitingPayment {
		session.ActiveOrder = order.ID.String()
	}
	if err := b.sessions.Set(ctx, order.UserID, session); err != nil {
		b.logger.Error("session update failed",
			slog.Int64("chat_id", order.UserID),
			slog.String("error", err.Error()),
		)
	}
}
