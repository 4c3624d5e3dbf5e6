package model

import "time"

// User describes a Telegram user known to the shop.
type User struct {
	ChatID    int64
	FirstName string
	LastName  string
	CreatedAt time.Time
}
