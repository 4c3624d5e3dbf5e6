package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
	"github.com/valog/shopbot/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade CheckoutFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade CheckoutFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if req.UserID == 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	order, paymentURL, err := h.facade.Checkout(c.Request.Context(), req.UserID, req.FirstName, req.LastName, req.Amount, req.Currency)
	if err != nil {
		var rejected domainErrors.GatewayRejectedError
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAmount), errors.Is(err, domainErrors.ErrInvalidCurrency):
			c.Status(http.StatusBadRequest)
		case errors.As(err, &rejected):
			c.JSON(http.StatusUnprocessableEntity, toOrderResponse(order, ""))
		case errors.Is(err, domainErrors.ErrGatewayUnavailable):
			// The order is persisted; the background sweep will request
			// the intent once the provider recovers.
			c.JSON(http.StatusAccepted, toOrderResponse(order, ""))
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order, paymentURL))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, ""))
}

func toOrderResponse(order *model.Order, paymentURL string) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:         order.ID.String(),
		UserID:     order.UserID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		State:      string(order.State),
		PaymentURL: paymentURL,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
	if order.ProviderRef != nil {
		resp.ProviderRef = *order.ProviderRef
	}
	return resp
}
