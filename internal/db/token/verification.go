package token

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	"tokengate/internal/core/domain/token"
	"tokengate/internal/db"

	"github.com/jackc/pgx/v4"
)

const verificationTokenColumns = `id, account_id, created_at, verified_at, is_verified`

type PgxVerificationTokenRepository struct {
	db db.DBTX
}

func NewPgxVerificationTokenRepository(db db.DBTX) *PgxVerificationTokenRepository {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &PgxVerificationTokenRepository{db: db}
}

func (r *PgxVerificationTokenRepository) Create(
	ctx context.Context,
	input token.CreateVerificationTokenInput,
) (t token.VerificationToken, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO verification_token (id, account_id, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING `+verificationTokenColumns,
		string(input.ID),
		int64(input.AccountID),
		input.CreatedAt,
	)
	return scanVerificationToken(row)
}

func (r *PgxVerificationTokenRepository) GetByID(
	ctx context.Context,
	id token.ID,
) (t token.VerificationToken, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+verificationTokenColumns+` FROM verification_token WHERE id = $1`,
		string(id),
	)
	t, err = scanVerificationToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, token.ErrTokenDoesNotExist
	}
	return t, err
}

func (r *PgxVerificationTokenRepository) GetByAccount(
	ctx context.Context,
	accountID account.ID,
) (t token.VerificationToken, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+verificationTokenColumns+` FROM verification_token WHERE account_id = $1`,
		int64(accountID),
	)
	t, err = scanVerificationToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, token.ErrTokenDoesNotExist
	}
	return t, err
}

// MarkVerified flips the flag with a conditional update. Zero updated rows
// means the token is either gone or was verified by a concurrent request;
// a follow-up read tells the two apart.
func (r *PgxVerificationTokenRepository) MarkVerified(
	ctx context.Context,
	id token.ID,
	at time.Time,
) (t token.VerificationToken, err error) {
	row := r.db.QueryRow(
		ctx,
		`UPDATE verification_token SET is_verified = TRUE, verified_at = $2
		 WHERE id = $1 AND is_verified = FALSE
		 RETURNING `+verificationTokenColumns,
		string(id),
		at,
	)
	t, err = scanVerificationToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return t, getErr
		}
		return t, token.ErrTokenAlreadyConsumed
	}
	return t, err
}

func (r *PgxVerificationTokenRepository) Delete(ctx context.Context, id token.ID) error {
	commandTag, err := r.db.Exec(
		ctx,
		`DELETE FROM verification_token WHERE id = $1`,
		string(id),
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return token.ErrTokenDoesNotExist
	}
	return nil
}

func (r *PgxVerificationTokenRepository) DeleteByAccount(ctx context.Context, accountID account.ID) error {
	_, err := r.db.Exec(
		ctx,
		`DELETE FROM verification_token WHERE account_id = $1`,
		int64(accountID),
	)
	return err
}

func scanVerificationToken(row pgx.Row) (t token.VerificationToken, err error) {
	var (
		id         string
		accountID  int64
		createdAt  time.Time
		verifiedAt sql.NullTime
		isVerified bool
	)
	err = row.Scan(&id, &accountID, &createdAt, &verifiedAt, &isVerified)
	if err != nil {
		return t, err
	}
	return token.VerificationToken{
		ID:         token.ID(id),
		AccountID:  account.ID(accountID),
		CreatedAt:  createdAt,
		VerifiedAt: c.NewOptional(verifiedAt.Time, verifiedAt.Valid),
		IsVerified: isVerified,
	}, nil
}
