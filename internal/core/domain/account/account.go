package account

import (
	c "tokengate/internal/core/domain/common"
	"time"
)

type ID int64

type Username string

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

type Account struct {
	ID           ID
	Username     Username
	Email        c.Email
	PasswordHash PasswordHash
	FirstName    c.Optional[string]
	LastName     c.Optional[string]
	CreatedAt    time.Time
	ActivatedAt  c.Optional[time.Time]
}

func (a *Account) IsActive() bool {
	return a.ActivatedAt.IsPresent
}

// GreetingName is the name used to address the account holder in
// outbound mail, falling back to the username.
func (a *Account) GreetingName() string {
	if a.FirstName.IsPresent && a.FirstName.Value != "" {
		return a.FirstName.Value
	}
	return string(a.Username)
}
