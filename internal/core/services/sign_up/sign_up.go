package signup

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
	Username  account.Username
	Email     c.Email
	Password  account.RawPassword
	FirstName c.Optional[string]
	LastName  c.Optional[string]
}

type Result struct {
	Account account.Account
	Token   token.VerificationToken
}

type service struct {
	log            logging.Logger
	unitOfWork     uow.UnitOfWork
	passwordHasher account.PasswordHasher
	passwordPolicy account.PasswordPolicy
	tokenGenerator token.Generator
	now            func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	passwordHasher account.PasswordHasher,
	passwordPolicy account.PasswordPolicy,
	tokenGenerator token.Generator,
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
	if tokenGenerator == nil {
		panic(e.NewNilArgumentError("tokenGenerator"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		unitOfWork:     unitOfWork,
		passwordHasher: passwordHasher,
		passwordPolicy: passwordPolicy,
		tokenGenerator: tokenGenerator,
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

	// Username is checked before email so the caller learns which of the
	// two collided.
	_, err = uow.Accounts().GetByUsername(ctx, input.Username)
	if err == nil {
		s.log.Info(ctx, "Username is already taken.", logging.Entry("username", input.Username))
		return result, account.ErrUsernameAlreadyExists
	}
	if !errors.Is(err, account.ErrAccountDoesNotExist) {
		return result, err
	}
	_, err = uow.Accounts().GetByEmail(ctx, input.Email)
	if err == nil {
		s.log.Info(ctx, "Email is already registered.", logging.Entry("email", input.Email))
		return result, account.ErrEmailAlreadyExists
	}
	if !errors.Is(err, account.ErrAccountDoesNotExist) {
		return result, err
	}

	if violations := s.passwordPolicy.Validate(input.Password, c.Optional[account.Account]{}); len(violations) > 0 {
		return result, account.NewPasswordPolicyError(violations)
	}

	passwordHash, err := s.passwordHasher.HashPassword(input.Password)
	if err != nil {
		s.log.Error(ctx, "Could not hash password.", logging.Entry("err", err))
		return result, err
	}

	// New accounts stay inactive until email verification completes.
	createdAccount, err := uow.Accounts().Create(ctx, account.CreateAccountInput{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    s.now(),
	})
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, account.ErrUsernameAlreadyExists) || errors.Is(err, account.ErrEmailAlreadyExists) {
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not create new account.",
			logging.Entry("input", input),
			logging.Entry("err", err),
		)
		return result, err
	}

	createdToken, err := uow.VerificationTokens().Create(ctx, token.CreateVerificationTokenInput{
		ID:        s.tokenGenerator.GenerateTokenID(),
		AccountID: createdAccount.ID,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.log.Error(
			ctx,
			"Could not create verification token for the new account.",
			logging.Entry("accountID", createdAccount.ID),
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
		"New account has been created, verification pending.",
		logging.Entry("accountID", createdAccount.ID),
	)
	return Result{Account: createdAccount, Token: createdToken}, nil
}
