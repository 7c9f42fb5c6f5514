package account

import (
	"context"
	c "tokengate/internal/core/domain/common"
	"time"
)

type CreateAccountInput struct {
	Username     Username
	Email        c.Email
	PasswordHash PasswordHash
	FirstName    c.Optional[string]
	LastName     c.Optional[string]
	CreatedAt    time.Time
	ActivatedAt  c.Optional[time.Time]
}

type Repository interface {
	Create(ctx context.Context, input CreateAccountInput) (Account, error)
	GetByID(ctx context.Context, id ID) (Account, error)
	GetByUsername(ctx context.Context, username Username) (Account, error)
	GetByEmail(ctx context.Context, email c.Email) (Account, error)
	Activate(ctx context.Context, id ID, at time.Time) (Account, error)
	SetPassword(ctx context.Context, id ID, password PasswordHash) error
}
