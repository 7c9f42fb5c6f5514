package token

import (
	"context"
	"tokengate/internal/core/domain/account"
	"time"
)

type CreateVerificationTokenInput struct {
	ID        ID
	AccountID account.ID
	CreatedAt time.Time
}

// VerificationTokenRepository owns verification token rows. At most one
// token exists per account (unique constraint on account id).
type VerificationTokenRepository interface {
	Create(ctx context.Context, input CreateVerificationTokenInput) (VerificationToken, error)
	GetByID(ctx context.Context, id ID) (VerificationToken, error)
	GetByAccount(ctx context.Context, accountID account.ID) (VerificationToken, error)
	// MarkVerified flips the one-way verified flag. The mutation is
	// conditional on the flag being unset; ErrTokenAlreadyConsumed is
	// returned when another request won the race.
	MarkVerified(ctx context.Context, id ID, at time.Time) (VerificationToken, error)
	Delete(ctx context.Context, id ID) error
	DeleteByAccount(ctx context.Context, accountID account.ID) error
}

type CreatePasswordResetTokenInput struct {
	ID        ID
	AccountID account.ID
	CreatedAt time.Time
}

type PasswordResetTokenRepository interface {
	Create(ctx context.Context, input CreatePasswordResetTokenInput) (PasswordResetToken, error)
	GetByID(ctx context.Context, id ID) (PasswordResetToken, error)
	// MarkUsed consumes the token. Conditional on is_used being false, so
	// under two concurrent confirmations exactly one caller succeeds and
	// the other gets ErrTokenAlreadyConsumed.
	MarkUsed(ctx context.Context, id ID, at time.Time) (PasswordResetToken, error)
	// MarkAllUsed supersedes every outstanding token of the account,
	// returning how many were invalidated.
	MarkAllUsed(ctx context.Context, accountID account.ID, at time.Time) (int64, error)
	DeleteByAccount(ctx context.Context, accountID account.ID) error
}
