package services_test

import (
	"context"
	"testing"
	"time"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	"tokengate/internal/core/domain/logging"
	"tokengate/internal/core/domain/token"
	duow "tokengate/internal/core/domain/unit_of_work"
	"tokengate/internal/core/services"
	confirmpasswordreset "tokengate/internal/core/services/confirm_password_reset"
	requestpasswordreset "tokengate/internal/core/services/request_password_reset"
	signup "tokengate/internal/core/services/sign_up"
	verifyemail "tokengate/internal/core/services/verify_email"

	"github.com/stretchr/testify/suite"
)

var NOW time.Time = time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC)

const (
	VERIFICATION_TTL = 24 * time.Hour
	RESET_TTL        = time.Hour
)

// Exercises the services the way the HTTP layer chains them, with one
// shared fake store per test.
type flowTestSuite struct {
	suite.Suite
	unitOfWork         *duow.FakeUnitOfWork
	generator          *token.FakeGenerator
	verificationSender *token.FakeVerificationTokenSender
	resetSender        *token.FakePasswordResetTokenSender

	signUp               services.Service[signup.Input, signup.Result]
	verifyEmail          services.Service[verifyemail.Input, verifyemail.Result]
	requestPasswordReset services.Service[requestpasswordreset.Input, requestpasswordreset.Result]
	confirmPasswordReset services.Service[confirmpasswordreset.Input, confirmpasswordreset.Result]
}

func (s *flowTestSuite) SetupTest() {
	logger := logging.NewFakeLogger()
	s.unitOfWork = duow.NewFakeUnitOfWork()
	s.generator = token.NewFakeGenerator("verification-token")
	s.verificationSender = token.NewFakeVerificationTokenSender()
	s.resetSender = token.NewFakePasswordResetTokenSender()
	now := func() time.Time { return NOW }

	s.signUp = signup.NewWithVerificationTokenSending(
		logger,
		s.verificationSender,
		signup.New(
			logger,
			s.unitOfWork,
			account.NewFakePasswordHasher(),
			account.NewFakePasswordPolicy(),
			s.generator,
			now,
		),
	)
	s.verifyEmail = verifyemail.New(logger, s.unitOfWork, VERIFICATION_TTL, now)
	s.requestPasswordReset = requestpasswordreset.New(
		logger,
		s.unitOfWork,
		s.generator,
		s.resetSender,
		now,
	)
	s.confirmPasswordReset = confirmpasswordreset.New(
		logger,
		s.unitOfWork,
		account.NewFakePasswordHasher(),
		account.NewFakePasswordPolicy(),
		RESET_TTL,
		now,
	)
}

func TestFlows(t *testing.T) {
	suite.Run(t, new(flowTestSuite))
}

func (s *flowTestSuite) TestSignUpVerifyRepeatAndDuplicate() {
	ctx := context.Background()
	assert := s.Require()

	signedUp, err := s.signUp.Run(ctx, signup.Input{
		Username: "alice",
		Email:    "alice@test.test",
		Password: "correct horse battery",
	})
	assert.Nil(err)
	assert.False(signedUp.Account.IsActive())
	assert.Equal(1, s.verificationSender.SentCount())

	verified, err := s.verifyEmail.Run(ctx, verifyemail.Input{TokenID: signedUp.Token.ID})
	assert.Nil(err)
	assert.False(verified.AlreadyVerified)
	assert.True(verified.Account.IsActive())

	again, err := s.verifyEmail.Run(ctx, verifyemail.Input{TokenID: signedUp.Token.ID})
	assert.Nil(err)
	assert.True(again.AlreadyVerified)
	assert.Equal(verified.Token.VerifiedAt, again.Token.VerifiedAt)

	_, err = s.signUp.Run(ctx, signup.Input{
		Username: "alice",
		Email:    "other@test.test",
		Password: "correct horse battery",
	})
	assert.ErrorIs(err, account.ErrUsernameAlreadyExists)

	_, err = s.signUp.Run(ctx, signup.Input{
		Username: "alice2",
		Email:    "alice@test.test",
		Password: "correct horse battery",
	})
	assert.ErrorIs(err, account.ErrEmailAlreadyExists)
}

func (s *flowTestSuite) TestResetRequestSupersedesAndConfirmConsumes() {
	ctx := context.Background()
	assert := s.Require()
	a := s.createActiveAccount("bob", "bob@test.test")

	s.generator.NextID = "reset-token-1"
	first, err := s.requestPasswordReset.Run(ctx, requestpasswordreset.Input{Email: "bob@test.test"})
	assert.Nil(err)
	assert.True(first.Token.IsPresent)

	s.generator.NextID = "reset-token-2"
	second, err := s.requestPasswordReset.Run(ctx, requestpasswordreset.Input{Email: "bob@test.test"})
	assert.Nil(err)
	assert.True(second.Token.IsPresent)
	assert.Equal(2, s.resetSender.SentCount())

	superseded, err := s.unitOfWork.Context.PasswordResetTokenRepository.GetByID(ctx, "reset-token-1")
	assert.Nil(err)
	assert.True(superseded.IsUsed)

	_, err = s.confirmPasswordReset.Run(ctx, confirmpasswordreset.Input{
		TokenID:     "reset-token-2",
		NewPassword: "a brand new password",
	})
	assert.Nil(err)

	changed, err := s.unitOfWork.Context.AccountRepository.GetByID(ctx, a.ID)
	assert.Nil(err)
	assert.NotEqual(a.PasswordHash, changed.PasswordHash)

	consumed, err := s.unitOfWork.Context.PasswordResetTokenRepository.GetByID(ctx, "reset-token-2")
	assert.Nil(err)
	assert.True(consumed.IsUsed)

	_, err = s.confirmPasswordReset.Run(ctx, confirmpasswordreset.Input{
		TokenID:     "reset-token-2",
		NewPassword: "yet another password",
	})
	assert.ErrorIs(err, token.ErrTokenAlreadyConsumed)

	_, err = s.confirmPasswordReset.Run(ctx, confirmpasswordreset.Input{
		TokenID:     "reset-token-1",
		NewPassword: "yet another password",
	})
	assert.ErrorIs(err, token.ErrTokenAlreadyConsumed)
}

func (s *flowTestSuite) createActiveAccount(username account.Username, email string) account.Account {
	s.T().Helper()
	ctx := context.Background()

	signedUp, err := s.signUp.Run(ctx, signup.Input{
		Username: username,
		Email:    c.NewEmail(email),
		Password: "correct horse battery",
	})
	s.Require().Nil(err)
	verified, err := s.verifyEmail.Run(ctx, verifyemail.Input{TokenID: signedUp.Token.ID})
	s.Require().Nil(err)
	return verified.Account
}
