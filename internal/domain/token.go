package domain

import "time"

type Token struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token is past its expiry. Tokens without an
// expiry never expire.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}
