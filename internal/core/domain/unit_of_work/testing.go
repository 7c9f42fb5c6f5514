package uow

import (
	"context"
	"tokengate/internal/core/domain/account"
	"tokengate/internal/core/domain/token"
)

type FakeUnitOfWorkContext struct {
	AccountRepository            *account.FakeRepository
	VerificationTokenRepository  *token.FakeVerificationTokenRepository
	PasswordResetTokenRepository *token.FakePasswordResetTokenRepository
	WasRollbackCalled            bool
	WasCommitCalled              bool
}

func NewFakeUnitOfWorkContext(
	accountRepository *account.FakeRepository,
	verificationTokenRepository *token.FakeVerificationTokenRepository,
	passwordResetTokenRepository *token.FakePasswordResetTokenRepository,
) *FakeUnitOfWorkContext {
	return &FakeUnitOfWorkContext{
		AccountRepository:            accountRepository,
		VerificationTokenRepository:  verificationTokenRepository,
		PasswordResetTokenRepository: passwordResetTokenRepository,
	}
}

func (c *FakeUnitOfWorkContext) Rollback(ctx context.Context) error {
	c.WasRollbackCalled = true
	return nil
}

func (c *FakeUnitOfWorkContext) Commit(ctx context.Context) error {
	c.WasCommitCalled = true
	return nil
}

func (c *FakeUnitOfWorkContext) Accounts() account.Repository {
	return c.AccountRepository
}

func (c *FakeUnitOfWorkContext) VerificationTokens() token.VerificationTokenRepository {
	return c.VerificationTokenRepository
}

func (c *FakeUnitOfWorkContext) PasswordResetTokens() token.PasswordResetTokenRepository {
	return c.PasswordResetTokenRepository
}

type FakeUnitOfWork struct {
	Context *FakeUnitOfWorkContext
}

func NewFakeUnitOfWork() *FakeUnitOfWork {
	return &FakeUnitOfWork{
		Context: NewFakeUnitOfWorkContext(
			account.NewFakeRepository(),
			token.NewFakeVerificationTokenRepository(),
			token.NewFakePasswordResetTokenRepository(),
		),
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) (Context, error) {
	return u.Context, nil
}
