package uow

import (
	"context"
	"tokengate/internal/core/domain/account"
	"tokengate/internal/core/domain/token"
)

type Context interface {
	Rollback(ctx context.Context) error
	Commit(ctx context.Context) error

	Accounts() account.Repository
	VerificationTokens() token.VerificationTokenRepository
	PasswordResetTokens() token.PasswordResetTokenRepository
}

type UnitOfWork interface {
	Begin(ctx context.Context) (Context, error)
}
