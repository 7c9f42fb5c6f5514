package account

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sync"
	c "tokengate/internal/core/domain/common"
	"time"
)

type FakeRepository struct {
	Accounts    []Account
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{Accounts: make([]Account, 0, 10)}
}

func (r *FakeRepository) Create(ctx context.Context, input CreateAccountInput) (a Account, err error) {
	if r.ReturnError {
		return a, fmt.Errorf("could not create account %v", input)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	maxID := ID(0)
	for _, existing := range r.Accounts {
		if existing.Username == input.Username {
			return a, ErrUsernameAlreadyExists
		}
		if existing.Email == input.Email {
			return a, ErrEmailAlreadyExists
		}
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	a = Account{
		ID:           maxID + 1,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    input.CreatedAt,
		ActivatedAt:  input.ActivatedAt,
	}
	r.Accounts = append(r.Accounts, a)
	return a, nil
}

func (r *FakeRepository) GetByID(ctx context.Context, id ID) (a Account, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, existing := range r.Accounts {
		if existing.ID == id {
			return existing, nil
		}
	}
	return a, ErrAccountDoesNotExist
}

func (r *FakeRepository) GetByUsername(ctx context.Context, username Username) (a Account, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, existing := range r.Accounts {
		if existing.Username == username {
			return existing, nil
		}
	}
	return a, ErrAccountDoesNotExist
}

func (r *FakeRepository) GetByEmail(ctx context.Context, email c.Email) (a Account, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, existing := range r.Accounts {
		if existing.Email == email {
			return existing, nil
		}
	}
	return a, ErrAccountDoesNotExist
}

func (r *FakeRepository) Activate(ctx context.Context, id ID, at time.Time) (a Account, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, existing := range r.Accounts {
		if existing.ID == id {
			if !existing.IsActive() {
				r.Accounts[ix].ActivatedAt = c.NewOptional(at, true)
			}
			return r.Accounts[ix], nil
		}
	}
	return a, ErrAccountDoesNotExist
}

func (r *FakeRepository) SetPassword(ctx context.Context, id ID, password PasswordHash) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, existing := range r.Accounts {
		if existing.ID == id {
			r.Accounts[ix].PasswordHash = password
			return nil
		}
	}
	return ErrAccountDoesNotExist
}

type FakePasswordHasher struct{}

func NewFakePasswordHasher() *FakePasswordHasher {
	return &FakePasswordHasher{}
}

func (h *FakePasswordHasher) HashPassword(password RawPassword) (PasswordHash, error) {
	hash := md5.New()
	io.WriteString(hash, string(password))
	return PasswordHash(fmt.Sprintf("%x", hash.Sum(nil))), nil
}

func (h *FakePasswordHasher) ValidatePassword(password RawPassword, hash PasswordHash) bool {
	actualHash, err := h.HashPassword(password)
	if err != nil {
		return false
	}
	return actualHash == hash
}

type FakePasswordPolicy struct {
	Violations []string
}

func NewFakePasswordPolicy(violations ...string) *FakePasswordPolicy {
	return &FakePasswordPolicy{Violations: violations}
}

func (p *FakePasswordPolicy) Validate(candidate RawPassword, owner c.Optional[Account]) []string {
	return p.Violations
}
