package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
	"github.com/valog/shopbot/internal/server/http/dto"
)

// WebhookHandler ingests payment provider notifications.
type WebhookHandler struct {
	facade WebhookFacade
	logger *slog.Logger
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{facade: facade, logger: logger}
}

// Receive handles POST /api/webhooks/payment. The provider retries
// until it sees a 2xx, so every recognized-but-unactionable delivery
// (duplicate, unknown payment) is acknowledged rather than errored.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.EventID == "" || req.Object.ID == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	status, ok := parseProviderStatus(req.Object.Status)
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	_, err := h.facade.HandleWebhook(c.Request.Context(), req.EventID, req.Object.ID, status)
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, domainErrors.ErrDuplicateEvent):
		c.Status(http.StatusOK)
	case errors.Is(err, domainErrors.ErrNotFound):
		// The payment does not map to any order. Acknowledge so the
		// provider stops retrying; nothing is recorded.
		h.logger.Warn("webhook for unknown payment",
			slog.String("event_id", req.EventID),
			slog.String("payment_id", req.Object.ID),
		)
		c.Status(http.StatusOK)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

func parseProviderStatus(raw string) (model.ProviderStatus, bool) {
	switch raw {
	case "pending", "waiting_for_capture":
		return model.ProviderStatusPending, true
	case "succeeded":
		return model.ProviderStatusSucceeded, true
	case "canceled":
		return model.ProviderStatusCanceled, true
	case "failed":
		return model.ProviderStatusFailed, true
	default:
		return "", false
	}
}
