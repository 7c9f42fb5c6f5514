package resendverification

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
	return "resend-verification::" + i.IP
}

type Result struct {
	Account account.Account
	Token   token.VerificationToken
	// Reused reports that a still-valid outstanding token was sent again
	// instead of rotating it.
	Reused bool
}

type service struct {
	log            logging.Logger
	unitOfWork     uow.UnitOfWork
	tokenGenerator token.Generator
	ttl            time.Duration
	now            func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	tokenGenerator token.Generator,
	ttl time.Duration,
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
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		unitOfWork:     unitOfWork,
		tokenGenerator: tokenGenerator,
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
			logging.Entry("input", input),
			logging.Entry("err", err),
		)
		return result, err
	}
	defer uow.Rollback(ctx)

	a, err := uow.Accounts().GetByEmail(ctx, input.Email)
	if errors.Is(err, account.ErrAccountDoesNotExist) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get account by email.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, err
	}
	if a.IsActive() {
		return result, account.ErrAccountAlreadyActive
	}

	// A still-pending unexpired token is reused as-is; an expired one is
	// rotated. Reset tokens never get this treatment (see the reset flow).
	t, err := uow.VerificationTokens().GetByAccount(ctx, a.ID)
	switch {
	case errors.Is(err, token.ErrTokenDoesNotExist):
		t, err = s.createToken(ctx, uow, a.ID)
		if err != nil {
			return result, err
		}
	case err != nil:
		s.log.Error(
			ctx,
			"Could not get outstanding verification token.",
			logging.Entry("accountID", a.ID),
			logging.Entry("err", err),
		)
		return result, err
	case t.IsExpired(s.ttl, s.now()):
		if err = uow.VerificationTokens().Delete(ctx, t.ID); err != nil {
			s.log.Error(
				ctx,
				"Could not delete expired verification token.",
				logging.Entry("tokenID", t.ID),
				logging.Entry("err", err),
			)
			return result, err
		}
		t, err = s.createToken(ctx, uow, a.ID)
		if err != nil {
			return result, err
		}
	default:
		result.Reused = true
	}

	if err = uow.Commit(ctx); err != nil {
		s.log.Error(
			ctx,
			"Could not commit unit of work.",
			logging.Entry("input", input),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(
		ctx,
		"Verification token prepared for resending.",
		logging.Entry("accountID", a.ID),
		logging.Entry("reused", result.Reused),
	)
	result.Account = a
	result.Token = t
	return result, nil
}

func (s *service) createToken(
	ctx context.Context,
	uowCtx uow.Context,
	accountID account.ID,
) (t token.VerificationToken, err error) {
	t, err = uowCtx.VerificationTokens().Create(ctx, token.CreateVerificationTokenInput{
		ID:        s.tokenGenerator.GenerateTokenID(),
		AccountID: accountID,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.log.Error(
			ctx,
			"Could not create verification token.",
			logging.Entry("accountID", accountID),
			logging.Entry("err", err),
		)
	}
	return t, err
}
