package account

import c "tokengate/internal/core/domain/common"

type PasswordHasher interface {
	HashPassword(password RawPassword) (PasswordHash, error)
	ValidatePassword(password RawPassword, hash PasswordHash) bool
}

// PasswordPolicy gates candidate passwords before they become credentials.
// Violations are human-readable and surfaced to the caller verbatim.
type PasswordPolicy interface {
	Validate(candidate RawPassword, owner c.Optional[Account]) []string
}
