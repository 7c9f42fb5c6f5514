package account

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrAccountDoesNotExist   = errors.New("account does not exist")
	ErrAccountAlreadyActive  = errors.New("account is already active")
)

// PasswordPolicyError carries the policy's human-readable violation texts.
type PasswordPolicyError struct {
	Violations []string
}

func NewPasswordPolicyError(violations []string) *PasswordPolicyError {
	return &PasswordPolicyError{Violations: violations}
}

func (e *PasswordPolicyError) Error() string {
	return fmt.Sprintf("password validation failed: %s", strings.Join(e.Violations, ", "))
}
