package resendverification

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
	EMAIL        = c.Email("test@test.test")
	OLD_TOKEN_ID = "old-verification-token"
	NEW_TOKEN_ID = "new-verification-token"
	TTL          = 24 * time.Hour
)

var Now time.Time = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	Logger  *logging.FakeLogger
	Uow     *uow.FakeUnitOfWork
	Now     time.Time
	Service services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.Uow = uow.NewFakeUnitOfWork()
	suite.Now = Now
	suite.Service = New(
		suite.Logger,
		suite.Uow,
		token.NewFakeGenerator(NEW_TOKEN_ID),
		TTL,
		func() time.Time { return suite.Now },
	)
}

func TestResendVerificationService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestUnknownEmail() {
	_, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.ErrorIs(err, account.ErrAccountDoesNotExist)
}

func (s *testSuite) TestAlreadyActiveAccount() {
	a := s.createAccount()
	_, err := s.Uow.Context.AccountRepository.Activate(context.Background(), a.ID, Now)
	s.Nil(err)

	_, err = s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.ErrorIs(err, account.ErrAccountAlreadyActive)
}

func (s *testSuite) TestUnexpiredTokenIsReused() {
	a := s.createAccount()
	s.createToken(a.ID, Now.Add(-time.Hour))

	result, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Nil(err)
	s.True(result.Reused)
	s.Equal(token.ID(OLD_TOKEN_ID), result.Token.ID)
	s.Equal(1, len(s.Uow.Context.VerificationTokenRepository.Tokens))
}

func (s *testSuite) TestExpiredTokenIsRotated() {
	a := s.createAccount()
	s.createToken(a.ID, Now.Add(-TTL))

	result, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Nil(err)
	s.False(result.Reused)
	s.Equal(token.ID(NEW_TOKEN_ID), result.Token.ID)

	tokens := s.Uow.Context.VerificationTokenRepository.Tokens
	s.Equal(1, len(tokens))
	s.Equal(token.ID(NEW_TOKEN_ID), tokens[0].ID)
	s.True(tokens[0].CreatedAt.Equal(Now))
}

func (s *testSuite) TestMissingTokenIsCreated() {
	a := s.createAccount()

	result, err := s.Service.Run(context.Background(), Input{Email: EMAIL})

	s.Nil(err)
	s.False(result.Reused)
	s.Equal(token.ID(NEW_TOKEN_ID), result.Token.ID)
	s.Equal(a.ID, result.Token.AccountID)
}

func (s *testSuite) createAccount() account.Account {
	s.T().Helper()
	a, err := s.Uow.Context.AccountRepository.Create(
		context.Background(),
		account.CreateAccountInput{
			Username:     account.Username("testuser"),
			Email:        EMAIL,
			PasswordHash: account.PasswordHash("test-password-hash"),
			CreatedAt:    Now,
		},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return a
}

func (s *testSuite) createToken(accountID account.ID, createdAt time.Time) token.VerificationToken {
	s.T().Helper()
	t, err := s.Uow.Context.VerificationTokenRepository.Create(
		context.Background(),
		token.CreateVerificationTokenInput{
			ID:        token.ID(OLD_TOKEN_ID),
			AccountID: accountID,
			CreatedAt: createdAt,
		},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return t
}
