package entity

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCode is one issued one-time code. Rows are never updated after
// consumption and never deleted; the accumulated history is the audit trail.
type VerificationCode struct {
	BaseSimple
	UserID      uuid.UUID   `db:"user_id"`
	Code        string      `db:"code"`
	Channel     AuthChannel `db:"channel"`
	ExpiresAt   time.Time   `db:"expires_at"`
	IsConfirmed bool        `db:"is_confirmed"`
}

// Usable reports whether the code can still be consumed at the given time.
func (c *VerificationCode) Usable(now time.Time) bool {
	return !c.IsConfirmed && now.Before(c.ExpiresAt)
}
