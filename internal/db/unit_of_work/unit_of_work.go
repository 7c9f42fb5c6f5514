package uow

import (
	"context"
	"tokengate/internal/core/domain/account"
	"tokengate/internal/core/domain/token"
	uow "tokengate/internal/core/domain/unit_of_work"
	dbaccount "tokengate/internal/db/account"
	dbtoken "tokengate/internal/db/token"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type pgxUnitOfWorkContext struct {
	tx pgx.Tx
}

func newPgxUnitOfWorkContext(tx pgx.Tx) *pgxUnitOfWorkContext {
	return &pgxUnitOfWorkContext{
		tx: tx,
	}
}

func (c *pgxUnitOfWorkContext) Commit(ctx context.Context) error {
	return c.tx.Commit(ctx)
}

func (c *pgxUnitOfWorkContext) Rollback(ctx context.Context) error {
	return c.tx.Rollback(ctx)
}

func (c *pgxUnitOfWorkContext) Accounts() account.Repository {
	return dbaccount.NewPgxRepository(c.tx)
}

func (c *pgxUnitOfWorkContext) VerificationTokens() token.VerificationTokenRepository {
	return dbtoken.NewPgxVerificationTokenRepository(c.tx)
}

func (c *pgxUnitOfWorkContext) PasswordResetTokens() token.PasswordResetTokenRepository {
	return dbtoken.NewPgxPasswordResetTokenRepository(c.tx)
}

type PgxUnitOfWork struct {
	db *pgxpool.Pool
}

func NewPgxUnitOfWork(db *pgxpool.Pool) *PgxUnitOfWork {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &PgxUnitOfWork{db: db}
}

func (u *PgxUnitOfWork) Begin(ctx context.Context) (uow.Context, error) {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return newPgxUnitOfWorkContext(tx), nil
}
