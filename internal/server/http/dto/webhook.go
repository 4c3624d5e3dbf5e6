package dto

// WebhookRequest is the payment provider notification payload.
type WebhookRequest struct {
	EventID string        `json:"event_id"`
	Event   string        `json:"event"`
	Object  WebhookObject `json:"object"`
}

// WebhookObject carries the payment the notification refers to.
type WebhookObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
