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

const passwordResetTokenColumns = `id, account_id, created_at, used_at, is_used`

type PgxPasswordResetTokenRepository struct {
	db db.DBTX
}

func NewPgxPasswordResetTokenRepository(db db.DBTX) *PgxPasswordResetTokenRepository {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &PgxPasswordResetTokenRepository{db: db}
}

func (r *PgxPasswordResetTokenRepository) Create(
	ctx context.Context,
	input token.CreatePasswordResetTokenInput,
) (t token.PasswordResetToken, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO password_reset_token (id, account_id, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING `+passwordResetTokenColumns,
		string(input.ID),
		int64(input.AccountID),
		input.CreatedAt,
	)
	return scanPasswordResetToken(row)
}

func (r *PgxPasswordResetTokenRepository) GetByID(
	ctx context.Context,
	id token.ID,
) (t token.PasswordResetToken, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+passwordResetTokenColumns+` FROM password_reset_token WHERE id = $1`,
		string(id),
	)
	t, err = scanPasswordResetToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, token.ErrTokenDoesNotExist
	}
	return t, err
}

// MarkUsed consumes the token with a conditional update, so under
// concurrent confirmations exactly one caller gets the updated row back.
func (r *PgxPasswordResetTokenRepository) MarkUsed(
	ctx context.Context,
	id token.ID,
	at time.Time,
) (t token.PasswordResetToken, err error) {
	row := r.db.QueryRow(
		ctx,
		`UPDATE password_reset_token SET is_used = TRUE, used_at = $2
		 WHERE id = $1 AND is_used = FALSE
		 RETURNING `+passwordResetTokenColumns,
		string(id),
		at,
	)
	t, err = scanPasswordResetToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return t, getErr
		}
		return t, token.ErrTokenAlreadyConsumed
	}
	return t, err
}

func (r *PgxPasswordResetTokenRepository) MarkAllUsed(
	ctx context.Context,
	accountID account.ID,
	at time.Time,
) (int64, error) {
	commandTag, err := r.db.Exec(
		ctx,
		`UPDATE password_reset_token SET is_used = TRUE, used_at = $2
		 WHERE account_id = $1 AND is_used = FALSE`,
		int64(accountID),
		at,
	)
	if err != nil {
		return 0, err
	}
	return commandTag.RowsAffected(), nil
}

func (r *PgxPasswordResetTokenRepository) DeleteByAccount(ctx context.Context, accountID account.ID) error {
	_, err := r.db.Exec(
		ctx,
		`DELETE FROM password_reset_token WHERE account_id = $1`,
		int64(accountID),
	)
	return err
}

func scanPasswordResetToken(row pgx.Row) (t token.PasswordResetToken, err error) {
	var (
		id        string
		accountID int64
		createdAt time.Time
		usedAt    sql.NullTime
		isUsed    bool
	)
	err = row.Scan(&id, &accountID, &createdAt, &usedAt, &isUsed)
	if err != nil {
		return t, err
	}
	return token.PasswordResetToken{
		ID:        token.ID(id),
		AccountID: account.ID(accountID),
		CreatedAt: createdAt,
		UsedAt:    c.NewOptional(usedAt.Time, usedAt.Valid),
		IsUsed:    isUsed,
	}, nil
}
