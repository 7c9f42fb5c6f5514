package token

import (
	"context"
	"tokengate/internal/core/domain/account"
)

type Generator interface {
	GenerateTokenID() ID
}

type VerificationTokenSender interface {
	SendVerificationToken(ctx context.Context, a account.Account, t VerificationToken) error
}

type PasswordResetTokenSender interface {
	SendPasswordResetToken(ctx context.Context, a account.Account, t PasswordResetToken) error
}
