package verifyemail

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
	EMAIL    = c.Email("test@test.test")
	TOKEN_ID = token.ID("test-verification-token")
	TTL      = 24 * time.Hour
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
		TTL,
		func() time.Time { return suite.Now },
	)
}

func TestVerifyEmailService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestSuccessAccountActivated() {
	a := s.createInactiveAccount()
	s.createToken(a.ID, Now)

	result, err := s.Service.Run(context.Background(), Input{TokenID: TOKEN_ID})

	s.Nil(err)
	s.False(result.AlreadyVerified)
	s.True(result.Token.IsVerified)
	s.True(result.Token.VerifiedAt.IsPresent)
	s.True(result.Account.IsActive())
	s.True(s.Uow.Context.WasCommitCalled)

	stored, err := s.Uow.Context.AccountRepository.GetByID(context.Background(), a.ID)
	s.Nil(err)
	s.True(stored.IsActive())
}

func (s *testSuite) TestRepeatedVerifyIsIdempotent() {
	a := s.createInactiveAccount()
	s.createToken(a.ID, Now)

	first, err := s.Service.Run(context.Background(), Input{TokenID: TOKEN_ID})
	s.Nil(err)

	second, err := s.Service.Run(context.Background(), Input{TokenID: TOKEN_ID})
	s.Nil(err)
	s.True(second.AlreadyVerified)
	s.True(second.Token.IsVerified)
	s.Equal(first.Token.VerifiedAt, second.Token.VerifiedAt)
}

func (s *testSuite) TestUnknownToken() {
	_, err := s.Service.Run(context.Background(), Input{TokenID: token.ID("unknown")})

	s.ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (s *testSuite) TestExpiredExactlyAtBoundary() {
	a := s.createInactiveAccount()
	s.createToken(a.ID, Now)
	s.Now = Now.Add(TTL)

	_, err := s.Service.Run(context.Background(), Input{TokenID: TOKEN_ID})

	s.ErrorIs(err, token.ErrTokenExpired)

	stored, err := s.Uow.Context.AccountRepository.GetByID(context.Background(), a.ID)
	s.Nil(err)
	s.False(stored.IsActive())
}

func (s *testSuite) TestNotExpiredJustBeforeBoundary() {
	a := s.createInactiveAccount()
	s.createToken(a.ID, Now)
	s.Now = Now.Add(TTL - time.Nanosecond)

	result, err := s.Service.Run(context.Background(), Input{TokenID: TOKEN_ID})

	s.Nil(err)
	s.Equal(a.ID, result.Account.ID)
	s.True(result.Account.IsActive())
}

func (s *testSuite) createInactiveAccount() account.Account {
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
	s.False(a.IsActive())
	return a
}

func (s *testSuite) createToken(accountID account.ID, createdAt time.Time) token.VerificationToken {
	s.T().Helper()
	t, err := s.Uow.Context.VerificationTokenRepository.Create(
		context.Background(),
		token.CreateVerificationTokenInput{
			ID:        TOKEN_ID,
			AccountID: accountID,
			CreatedAt: createdAt,
		},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return t
}
