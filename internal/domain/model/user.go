package model

import "time"

// User is keyed by the Telegram user id. Rows are never deleted; the agreed
// flag is the only mutable field.
type User struct {
	TelegramID  int64     `json:"telegram_id"`
	Username    string    `json:"username"`
	AgreedRules bool      `json:"agreed_rules"`
	CreatedAt   time.Time `json:"created_at"`
}
