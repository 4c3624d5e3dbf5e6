package dto

import "time"

// CreateOrderRequest describes checkout payload.
type CreateOrderRequest struct {
	UserID    int64   `json:"user_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// OrderResponse describes a single order.
type OrderResponse struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	State       string    `json:"state"`
	PaymentURL  string    `json:"payment_url,omitempty"`
	ProviderRef string    `json:"provider_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
