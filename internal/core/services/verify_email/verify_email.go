package verifyemail

import (
	"context"
	"errors"
	"tokengate/internal/core/domain/account"
	e "tokengate/internal/core/domain/errors"
	"tokengate/internal/core/domain/logging"
	"tokengate/internal/core/domain/token"
	uow "tokengate/internal/core/domain/unit_of_work"
	"tokengate/internal/core/services"
	"time"
)

type Input struct {
	TokenID token.ID
}

type Result struct {
	Token           token.VerificationToken
	Account         account.Account
	AlreadyVerified bool
}

type service struct {
	log        logging.Logger
	unitOfWork uow.UnitOfWork
	ttl        time.Duration
	now        func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	ttl time.Duration,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:        log,
		unitOfWork: unitOfWork,
		ttl:        ttl,
		now:        now,
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

	t, err := uow.VerificationTokens().GetByID(ctx, input.TokenID)
	if errors.Is(err, token.ErrTokenDoesNotExist) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get verification token.",
			logging.Entry("input", input),
			logging.Entry("err", err),
		)
		return result, err
	}

	// The verify transition is idempotent: a second click on the same
	// link succeeds without mutation.
	if t.IsVerified {
		a, err := uow.Accounts().GetByID(ctx, t.AccountID)
		if err != nil {
			return result, err
		}
		return Result{Token: t, Account: a, AlreadyVerified: true}, nil
	}

	if t.IsExpired(s.ttl, s.now()) {
		s.log.Info(
			ctx,
			"Verification token has expired.",
			logging.Entry("tokenID", t.ID),
			logging.Entry("createdAt", t.CreatedAt),
		)
		return result, token.ErrTokenExpired
	}

	at := s.now()
	verified, err := uow.VerificationTokens().MarkVerified(ctx, t.ID, at)
	if errors.Is(err, token.ErrTokenAlreadyConsumed) {
		// Lost a race against a concurrent verify; the transition already
		// happened, so report success with the winner's state.
		verified, err = uow.VerificationTokens().GetByID(ctx, t.ID)
		if err != nil {
			return result, err
		}
		a, err := uow.Accounts().GetByID(ctx, verified.AccountID)
		if err != nil {
			return result, err
		}
		return Result{Token: verified, Account: a, AlreadyVerified: true}, nil
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not mark verification token as verified.",
			logging.Entry("tokenID", t.ID),
			logging.Entry("err", err),
		)
		return result, err
	}

	// Account activation and token verification commit together.
	activated, err := uow.Accounts().Activate(ctx, verified.AccountID, at)
	if err != nil {
		s.log.Error(
			ctx,
			"Could not activate account for the verified token.",
			logging.Entry("accountID", verified.AccountID),
			logging.Entry("err", err),
		)
		return result, err
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
		"Email verified, account activated.",
		logging.Entry("accountID", activated.ID),
	)
	return Result{Token: verified, Account: activated}, nil
}
