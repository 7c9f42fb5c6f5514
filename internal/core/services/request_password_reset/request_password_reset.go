package requestpasswordreset

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
	Email c.Email
	IP    string
}

func (i Input) GetRateLimitKey() string {
	return "request-password-reset::" + i.IP
}

// Result never reveals whether the email matched an account. The token is
// populated only for matching active accounts and is exposed to the
// transport solely through the test-mode header.
type Result struct {
	Token c.Optional[token.PasswordResetToken]
}

type service struct {
	log            logging.Logger
	unitOfWork     uow.UnitOfWork
	tokenGenerator token.Generator
	sender         token.PasswordResetTokenSender
	now            func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	tokenGenerator token.Generator,
	sender token.PasswordResetTokenSender,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if tokenGenerator == nil {
		panic(e.NewNilArgumentError("tokenGenerator"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		unitOfWork:     unitOfWork,
		tokenGenerator: tokenGenerator,
		sender:         sender,
		now:            now,
	}
}

// Run always reports success. Whether the email is unknown, the account is
// inactive, or an internal step fails, the caller sees the same generic
// outcome; only context cancellation propagates.
func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	uow, err := s.unitOfWork.Begin(ctx)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not begin unit of work for password reset request.",
			logging.Entry("err", err),
		)
		return result, nil
	}
	defer uow.Rollback(ctx)

	a, err := uow.Accounts().GetByEmail(ctx, input.Email)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, account.ErrAccountDoesNotExist) {
		s.log.Info(ctx, "Password reset requested for unknown email.")
		return result, nil
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get account for password reset request.",
			logging.Entry("err", err),
		)
		return result, nil
	}
	if !a.IsActive() {
		s.log.Info(
			ctx,
			"Password reset requested for inactive account.",
			logging.Entry("accountID", a.ID),
		)
		return result, nil
	}

	at := s.now()
	// A fresh token always supersedes every outstanding one.
	if _, err = uow.PasswordResetTokens().MarkAllUsed(ctx, a.ID, at); err != nil {
		s.log.Error(
			ctx,
			"Could not invalidate outstanding password reset tokens.",
			logging.Entry("accountID", a.ID),
			logging.Entry("err", err),
		)
		return result, nil
	}
	t, err := uow.PasswordResetTokens().Create(ctx, token.CreatePasswordResetTokenInput{
		ID:        s.tokenGenerator.GenerateTokenID(),
		AccountID: a.ID,
		CreatedAt: at,
	})
	if err != nil {
		s.log.Error(
			ctx,
			"Could not create password reset token.",
			logging.Entry("accountID", a.ID),
			logging.Entry("err", err),
		)
		return result, nil
	}
	if err = uow.Commit(ctx); err != nil {
		s.log.Error(
			ctx,
			"Could not commit unit of work for password reset request.",
			logging.Entry("accountID", a.ID),
			logging.Entry("err", err),
		)
		return result, nil
	}
	result.Token = c.NewOptional(t, true)

	if err = s.sender.SendPasswordResetToken(ctx, a, t); err != nil {
		if errors.Is(err, context.Canceled) {
			return result, err
		}
		s.log.Error(
			ctx,
			"Could not dispatch password reset token.",
			logging.Entry("accountID", a.ID),
			logging.Entry("err", err),
		)
		return result, nil
	}

	s.log.Info(
		ctx,
		"Password reset token created and dispatched.",
		logging.Entry("accountID", a.ID),
	)
	return result, nil
}
