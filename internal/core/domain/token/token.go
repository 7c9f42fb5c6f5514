package token

import (
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	"time"
)

// ID is an opaque unguessable token identifier. It is the sole lookup
// credential for both token kinds, so collisions must be cryptographically
// negligible (128-bit random).
type ID string

type VerificationToken struct {
	ID         ID
	AccountID  account.ID
	CreatedAt  time.Time
	VerifiedAt c.Optional[time.Time]
	IsVerified bool
}

// IsExpired reports whether the token is past its lifetime. The boundary
// instant counts as expired: a token created at T with TTL D is expired at
// exactly T+D.
func (t VerificationToken) IsExpired(ttl time.Duration, now time.Time) bool {
	return !now.Before(t.CreatedAt.Add(ttl))
}

type PasswordResetToken struct {
	ID        ID
	AccountID account.ID
	CreatedAt time.Time
	UsedAt    c.Optional[time.Time]
	IsUsed    bool
}

func (t PasswordResetToken) IsExpired(ttl time.Duration, now time.Time) bool {
	return !now.Before(t.CreatedAt.Add(ttl))
}
