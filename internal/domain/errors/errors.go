package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrVersionConflict    = errors.New("version conflict")
	ErrDuplicateEvent     = errors.New("duplicate event")
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCurrency    = errors.New("invalid currency")
)

// GatewayRejectedError is a terminal refusal from the payment provider.
type GatewayRejectedError struct {
	Code        string
	Description string
}

func (e GatewayRejectedError) Error() string {
	return fmt.Sprintf("gateway rejected: %s (%s)", e.Description, e.Code)
}
