package account

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	"tokengate/internal/db"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"
const USERNAME_CONSTRAINT_NAME = "account_username_idx"
const EMAIL_CONSTRAINT_NAME = "account_email_idx"

const accountColumns = `id, username, email, password_hash, first_name, last_name, created_at, activated_at`

type PgxAccountRepository struct {
	db db.DBTX
}

func NewPgxRepository(db db.DBTX) *PgxAccountRepository {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &PgxAccountRepository{db: db}
}

func (r *PgxAccountRepository) Create(
	ctx context.Context,
	input account.CreateAccountInput,
) (a account.Account, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO account (username, email, password_hash, first_name, last_name, created_at, activated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+accountColumns,
		string(input.Username),
		string(input.Email),
		string(input.PasswordHash),
		encodeOptionalString(input.FirstName),
		encodeOptionalString(input.LastName),
		input.CreatedAt,
		encodeOptionalTime(input.ActivatedAt),
	)
	a, err = scanAccount(row)

	var errUniqueConstraint *pgconn.PgError
	if errors.As(err, &errUniqueConstraint) && errUniqueConstraint.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE {
		switch errUniqueConstraint.ConstraintName {
		case USERNAME_CONSTRAINT_NAME:
			return a, account.ErrUsernameAlreadyExists
		case EMAIL_CONSTRAINT_NAME:
			return a, account.ErrEmailAlreadyExists
		}
	}
	return a, err
}

func (r *PgxAccountRepository) GetByID(ctx context.Context, id account.ID) (a account.Account, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+accountColumns+` FROM account WHERE id = $1`,
		int64(id),
	)
	return scanAccountNotFoundAware(row)
}

func (r *PgxAccountRepository) GetByUsername(
	ctx context.Context,
	username account.Username,
) (a account.Account, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+accountColumns+` FROM account WHERE username = $1`,
		string(username),
	)
	return scanAccountNotFoundAware(row)
}

func (r *PgxAccountRepository) GetByEmail(ctx context.Context, email c.Email) (a account.Account, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT `+accountColumns+` FROM account WHERE email = $1`,
		string(email),
	)
	return scanAccountNotFoundAware(row)
}

// Activate is one-way. An already set activation timestamp is kept, so
// repeating the call returns the account unchanged.
func (r *PgxAccountRepository) Activate(
	ctx context.Context,
	id account.ID,
	at time.Time,
) (a account.Account, err error) {
	row := r.db.QueryRow(
		ctx,
		`UPDATE account SET activated_at = COALESCE(activated_at, $2)
		 WHERE id = $1
		 RETURNING `+accountColumns,
		int64(id),
		at,
	)
	return scanAccountNotFoundAware(row)
}

func (r *PgxAccountRepository) SetPassword(
	ctx context.Context,
	id account.ID,
	password account.PasswordHash,
) error {
	commandTag, err := r.db.Exec(
		ctx,
		`UPDATE account SET password_hash = $2 WHERE id = $1`,
		int64(id),
		string(password),
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return account.ErrAccountDoesNotExist
	}
	return nil
}

func scanAccountNotFoundAware(row pgx.Row) (a account.Account, err error) {
	a, err = scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, account.ErrAccountDoesNotExist
	}
	return a, err
}

func scanAccount(row pgx.Row) (a account.Account, err error) {
	var (
		id           int64
		username     string
		email        string
		passwordHash string
		firstName    sql.NullString
		lastName     sql.NullString
		createdAt    time.Time
		activatedAt  sql.NullTime
	)
	err = row.Scan(&id, &username, &email, &passwordHash, &firstName, &lastName, &createdAt, &activatedAt)
	if err != nil {
		return a, err
	}
	return account.Account{
		ID:           account.ID(id),
		Username:     account.Username(username),
		Email:        c.Email(email),
		PasswordHash: account.PasswordHash(passwordHash),
		FirstName:    c.NewOptional(firstName.String, firstName.Valid),
		LastName:     c.NewOptional(lastName.String, lastName.Valid),
		CreatedAt:    createdAt,
		ActivatedAt:  c.NewOptional(activatedAt.Time, activatedAt.Valid),
	}, nil
}

func encodeOptionalString(s c.Optional[string]) sql.NullString {
	return sql.NullString{String: s.Value, Valid: s.IsPresent}
}

func encodeOptionalTime(at c.Optional[time.Time]) sql.NullTime {
	return sql.NullTime{Time: at.Value, Valid: at.IsPresent}
}
