package token

import (
	"context"
	"testing"
	"time"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	"tokengate/internal/core/domain/token"
	"tokengate/internal/db"
	dbaccount "tokengate/internal/db/account"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

type passwordResetTestSuite struct {
	suite.Suite
	pool     *pgxpool.Pool
	accounts *dbaccount.PgxAccountRepository
	repo     *PgxPasswordResetTokenRepository
}

func (suite *passwordResetTestSuite) SetupSuite() {
	suite.pool = db.CreateTestPool()
	suite.accounts = dbaccount.NewPgxRepository(suite.pool)
	suite.repo = NewPgxPasswordResetTokenRepository(suite.pool)
}

func (suite *passwordResetTestSuite) TearDownSuite() {
	suite.pool.Close()
}

func (suite *passwordResetTestSuite) TearDownTest() {
	db.TruncateTables(suite.pool)
}

func TestPgxPasswordResetTokenRepository(t *testing.T) {
	suite.Run(t, new(passwordResetTestSuite))
}

func (suite *passwordResetTestSuite) TestCreateAndGet() {
	a := suite.createResetAccount("reset-user", "reset@test.test")

	created, err := suite.repo.Create(context.Background(), token.CreatePasswordResetTokenInput{
		ID:        "test-reset-token",
		AccountID: a.ID,
		CreatedAt: NOW,
	})

	assert := suite.Require()
	assert.Nil(err)
	assert.Equal(token.ID("test-reset-token"), created.ID)
	assert.Equal(a.ID, created.AccountID)
	assert.False(created.IsUsed)
	assert.False(created.UsedAt.IsPresent)

	byID, err := suite.repo.GetByID(context.Background(), created.ID)
	assert.Nil(err)
	assert.Equal(created.ID, byID.ID)
}

func (suite *passwordResetTestSuite) TestGetDoesNotExist() {
	_, err := suite.repo.GetByID(context.Background(), "unknown")
	suite.Require().ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (suite *passwordResetTestSuite) TestMarkUsed() {
	a := suite.createResetAccount("reset-user", "reset@test.test")
	created := suite.createResetToken(a.ID, "test-reset-token")

	t, err := suite.repo.MarkUsed(context.Background(), created.ID, NOW)

	assert := suite.Require()
	assert.Nil(err)
	assert.True(t.IsUsed)
	assert.True(NOW.Equal(t.UsedAt.Value))
}

func (suite *passwordResetTestSuite) TestMarkUsedTwiceFails() {
	a := suite.createResetAccount("reset-user", "reset@test.test")
	created := suite.createResetToken(a.ID, "test-reset-token")

	_, err := suite.repo.MarkUsed(context.Background(), created.ID, NOW)
	suite.Require().Nil(err)

	_, err = suite.repo.MarkUsed(context.Background(), created.ID, NOW.Add(time.Minute))
	suite.Require().ErrorIs(err, token.ErrTokenAlreadyConsumed)

	t, err := suite.repo.GetByID(context.Background(), created.ID)
	suite.Require().Nil(err)
	suite.Require().True(NOW.Equal(t.UsedAt.Value))
}

func (suite *passwordResetTestSuite) TestMarkUsedDoesNotExist() {
	_, err := suite.repo.MarkUsed(context.Background(), "unknown", NOW)
	suite.Require().ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (suite *passwordResetTestSuite) TestMarkAllUsed() {
	a := suite.createResetAccount("reset-user", "reset@test.test")
	other := suite.createResetAccount("other-user", "other@test.test")
	suite.createResetToken(a.ID, "token-1")
	suite.createResetToken(a.ID, "token-2")
	used := suite.createResetToken(a.ID, "token-3")
	_, err := suite.repo.MarkUsed(context.Background(), used.ID, NOW)
	suite.Require().Nil(err)
	otherToken := suite.createResetToken(other.ID, "other-token")

	count, err := suite.repo.MarkAllUsed(context.Background(), a.ID, NOW.Add(time.Minute))

	assert := suite.Require()
	assert.Nil(err)
	assert.Equal(int64(2), count)

	t, err := suite.repo.GetByID(context.Background(), otherToken.ID)
	assert.Nil(err)
	assert.False(t.IsUsed)
}

func (suite *passwordResetTestSuite) TestDeleteByAccount() {
	a := suite.createResetAccount("reset-user", "reset@test.test")
	created := suite.createResetToken(a.ID, "test-reset-token")

	err := suite.repo.DeleteByAccount(context.Background(), a.ID)
	suite.Require().Nil(err)

	_, err = suite.repo.GetByID(context.Background(), created.ID)
	suite.Require().ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (suite *passwordResetTestSuite) createResetAccount(
	username account.Username,
	email string,
) account.Account {
	suite.T().Helper()
	a, err := suite.accounts.Create(context.Background(), account.CreateAccountInput{
		Username:     username,
		Email:        c.Email(email),
		PasswordHash: "test-password-hash",
		CreatedAt:    NOW,
	})
	suite.Require().Nil(err)
	return a
}

func (suite *passwordResetTestSuite) createResetToken(
	accountID account.ID,
	id token.ID,
) token.PasswordResetToken {
	suite.T().Helper()
	t, err := suite.repo.Create(context.Background(), token.CreatePasswordResetTokenInput{
		ID:        id,
		AccountID: accountID,
		CreatedAt: NOW,
	})
	suite.Require().Nil(err)
	return t
}
