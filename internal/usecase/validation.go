package usecase

import (
	"fmt"

	"github.com/google/uuid"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
)

// validCurrency accepts three-letter uppercase ISO 4217 codes.
func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

func parseOrderID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed order id %q", domainErrors.ErrNotFound, id)
	}
	return parsed, nil
}
