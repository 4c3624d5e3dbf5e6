package model

// Dialog steps tracked per chat.
const (
	SessionStepIdle            = "idle"
	SessionStepAwaitingPayment = "awaiting_payment"
	SessionStepDone            = "done"
)

// Session is the per-chat conversation state projected from order
// transitions. It never feeds back into order logic.
type Session struct {
	Step        string `json:"step"`
	ActiveOrder string `json:"active_order,omitempty"`
	LastMessage string `json:"last_message,omitempty"`
}
