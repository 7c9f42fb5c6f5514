package confirmpasswordreset

import (
	"context"
	"errors"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	e "tokengate/internal/core/domain/errors"
	"tokengate/internal/core/domain/logging"
	"tokengate/internal/core/domain/token"
	uow "tokengate/internal/core/domain/unit_of_work"
	"tokengate/internal/core/services"
	"time"
)

type Input struct {
	TokenID     token.ID
	NewPassword account.RawPassword
}

type Result struct {
	Account account.Account
}

type service struct {
	log            logging.Logger
	unitOfWork     uow.UnitOfWork
	passwordHasher account.PasswordHasher
	passwordPolicy account.PasswordPolicy
	ttl            time.Duration
	now            func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	passwordHasher account.PasswordHasher,
	passwordPolicy account.PasswordPolicy,
	ttl time.Duration,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if passwordPolicy == nil {
		panic(e.NewNilArgumentError("passwordPolicy"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		unitOfWork:     unitOfWork,
		passwordHasher: passwordHasher,
		passwordPolicy: passwordPolicy,
		ttl:            ttl,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	uow, err := s.unitOfWork.Begin(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not begin unit of work.",
			logging.Entry("err", err),
		)
		return result, err
	}
	defer uow.Rollback(ctx)

	t, err := uow.PasswordResetTokens().GetByID(ctx, input.TokenID)
	if errors.Is(err, token.ErrTokenDoesNotExist) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get password reset token.",
			logging.Entry("err", err),
		)
		return result, err
	}
	// Reset tokens are strictly single-use, reuse is always an error.
	if t.IsUsed {
		return result, token.ErrTokenAlreadyConsumed
	}
	if t.IsExpired(s.ttl, s.now()) {
		s.log.Info(
			ctx,
			"Password reset token has expired.",
			logging.Entry("tokenID", t.ID),
			logging.Entry("createdAt", t.CreatedAt),
		)
		return result, token.ErrTokenExpired
	}

	a, err := uow.Accounts().GetByID(ctx, t.AccountID)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get account for password reset token.",
			logging.Entry("accountID", t.AccountID),
			logging.Entry("err", err),
		)
		return result, err
	}

	if violations := s.passwordPolicy.Validate(input.NewPassword, c.NewOptional(a, true)); len(violations) > 0 {
		return result, account.NewPasswordPolicyError(violations)
	}

	passwordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		s.log.Error(ctx, "Could not hash new password.", logging.Entry("err", err))
		return result, err
	}

	at := s.now()
	// Consume first: the conditional update decides the winner when two
	// confirmations race, so the credential is replaced exactly once.
	if _, err = uow.PasswordResetTokens().MarkUsed(ctx, t.ID, at); err != nil {
		if errors.Is(err, token.ErrTokenAlreadyConsumed) {
			return result, err
		}
		s.log.Error(
			ctx,
			"Could not mark password reset token as used.",
			logging.Entry("tokenID", t.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	if err = uow.Accounts().SetPassword(ctx, a.ID, passwordHash); err != nil {
		s.log.Error(
			ctx,
			"Could not set new account password.",
			logging.Entry("accountID", a.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	// Supersede any stale sibling token from an earlier request window.
	if _, err = uow.PasswordResetTokens().MarkAllUsed(ctx, a.ID, at); err != nil {
		s.log.Error(
			ctx,
			"Could not invalidate sibling password reset tokens.",
			logging.Entry("accountID", a.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	if err = uow.Commit(ctx); err != nil {
		s.log.Error(
			ctx,
			"Could not commit unit of work.",
			logging.Entry("accountID", a.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(
		ctx,
		"Password has been successfully reset.",
		logging.Entry("accountID", a.ID),
	)
	return Result{Account: a}, nil
}
