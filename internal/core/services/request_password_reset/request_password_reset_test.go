package requestpasswordreset

import (
	"context"
	"testing"
	"time"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	"tokengate/internal/core/domain/logging"
	"tokengate/internal/core/domain/token"
	uow "tokengate/internal/core/domain/unit_of_work"
	"tokengate/internal/core/services"

	"github.com/stretchr/testify/suite"
)

const (
	EMAIL        = c.Email("user@x.com")
	NEW_TOKEN_ID = "new-reset-token"
	OLD_TOKEN_ID = "old-reset-token"
)

var Now time.Time = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	Logger  *logging.FakeLogger
	Uow     *uow.FakeUnitOfWork
	Sender  *token.FakePasswordResetTokenSender
	Service services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.Uow = uow.NewFakeUnitOfWork()
	suite.Sender = token.NewFakePasswordResetTokenSender()
	suite.Service = New(
		suite.Logger,
		suite.Uow,
		token.NewFakeGenerator(NEW_TOKEN_ID),
		suite.Sender,
		func() time.Time { return Now },
	)
}

func TestRequestPasswordResetService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestUnknownEmailStillSucceeds() {
	result, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Nil(err)
	s.False(result.Token.IsPresent)
	s.Equal(0, len(s.Uow.Context.PasswordResetTokenRepository.Tokens))
	s.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) TestInactiveAccountStillSucceedsWithoutToken() {
	s.createAccount(false)

	result, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Nil(err)
	s.False(result.Token.IsPresent)
	s.Equal(0, len(s.Uow.Context.PasswordResetTokenRepository.Tokens))
	s.Equal(0, s.Sender.SentCount())
}

func (s *testSuite) TestActiveAccountGetsToken() {
	a := s.createAccount(true)

	result, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Nil(err)
	s.True(result.Token.IsPresent)
	s.Equal(token.ID(NEW_TOKEN_ID), result.Token.Value.ID)
	s.Equal(a.ID, result.Token.Value.AccountID)
	s.Equal(1, s.Sender.SentCount())
}

func (s *testSuite) TestOutstandingTokensSuperseded() {
	a := s.createAccount(true)
	old := s.createResetToken(a.ID, OLD_TOKEN_ID)
	s.False(old.IsUsed)

	_, err := s.Service.Run(context.Background(), Input{Email: EMAIL})
	s.Nil(err)

	stored, err := s.Uow.Context.PasswordResetTokenRepository.GetByID(context.Background(), old.ID)
	s.Nil(err)
	s.True(stored.IsUsed)
	s.True(stored.UsedAt.IsPresent)

	fresh, err := s.Uow.Context.PasswordResetTokenRepository.GetByID(context.Background(), token.ID(NEW_TOKEN_ID))
	s.Nil(err)
	s.False(fresh.IsUsed)
}

func (s *testSuite) TestSupersessionNeverCrossesAccounts() {
	a := s.createAccount(true)
	other, err := s.Uow.Context.AccountRepository.Create(
		context.Background(),
		account.CreateAccountInput{
			Username:     account.Username("otheruser"),
			Email:        c.Email("other@x.com"),
			PasswordHash: account.PasswordHash("test-password-hash"),
			CreatedAt:    Now,
			ActivatedAt:  c.NewOptional(Now, true),
		},
	)
	s.Nil(err)
	otherToken := s.createResetToken(other.ID, "other-reset-token")
	_ = s.createResetToken(a.ID, OLD_TOKEN_ID)

	_, err = s.Service.Run(context.Background(), Input{Email: EMAIL})
	s.Nil(err)

	stored, err := s.Uow.Context.PasswordResetTokenRepository.GetByID(context.Background(), otherToken.ID)
	s.Nil(err)
	s.False(stored.IsUsed)
}

func (s *testSuite) TestDispatchFailureIsSwallowed() {
	s.createAccount(true)
	s.Sender.ReturnError = true

	result, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Nil(err)
	s.True(result.Token.IsPresent)
	s.Equal(1, len(s.Uow.Context.PasswordResetTokenRepository.Tokens))
}

func (s *testSuite) createAccount(active bool) account.Account {
	s.T().Helper()
	input := account.CreateAccountInput{
		Username:     account.Username("testuser"),
		Email:        EMAIL,
		PasswordHash: account.PasswordHash("test-password-hash"),
		CreatedAt:    Now,
	}
	if active {
		input.ActivatedAt = c.NewOptional(Now, true)
	}
	a, err := s.Uow.Context.AccountRepository.Create(context.Background(), input)
	if err != nil {
		s.FailNow(err.Error())
	}
	return a
}

func (s *testSuite) createResetToken(accountID account.ID, id string) token.PasswordResetToken {
	s.T().Helper()
	t, err := s.Uow.Context.PasswordResetTokenRepository.Create(
		context.Background(),
		token.CreatePasswordResetTokenInput{
			ID:        token.ID(id),
			AccountID: accountID,
			CreatedAt: Now.Add(-10 * time.Minute),
		},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return t
}
