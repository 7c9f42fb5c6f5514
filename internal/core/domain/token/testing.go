package token

import (
	"context"
	"fmt"
	"sync"
	"tokengate/internal/core/domain/account"
	c "tokengate/internal/core/domain/common"
	"time"
)

type FakeVerificationTokenRepository struct {
	Tokens      []VerificationToken
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeVerificationTokenRepository() *FakeVerificationTokenRepository {
	return &FakeVerificationTokenRepository{Tokens: make([]VerificationToken, 0, 10)}
}

func (r *FakeVerificationTokenRepository) Create(
	ctx context.Context,
	input CreateVerificationTokenInput,
) (t VerificationToken, err error) {
	if r.ReturnError {
		return t, fmt.Errorf("could not create verification token %v", input)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, existing := range r.Tokens {
		if existing.AccountID == input.AccountID {
			return t, fmt.Errorf("verification token for account %d already exists", input.AccountID)
		}
	}
	t = VerificationToken{
		ID:        input.ID,
		AccountID: input.AccountID,
		CreatedAt: input.CreatedAt,
	}
	r.Tokens = append(r.Tokens, t)
	return t, nil
}

func (r *FakeVerificationTokenRepository) GetByID(ctx context.Context, id ID) (t VerificationToken, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, existing := range r.Tokens {
		if existing.ID == id {
			return existing, nil
		}
	}
	return t, ErrTokenDoesNotExist
}

func (r *FakeVerificationTokenRepository) GetByAccount(
	ctx context.Context,
	accountID account.ID,
) (t VerificationToken, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, existing := range r.Tokens {
		if existing.AccountID == accountID {
			return existing, nil
		}
	}
	return t, ErrTokenDoesNotExist
}

func (r *FakeVerificationTokenRepository) MarkVerified(
	ctx context.Context,
	id ID,
	at time.Time,
) (t VerificationToken, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, existing := range r.Tokens {
		if existing.ID != id {
			continue
		}
		if existing.IsVerified {
			return t, ErrTokenAlreadyConsumed
		}
		r.Tokens[ix].IsVerified = true
		r.Tokens[ix].VerifiedAt = c.NewOptional(at, true)
		return r.Tokens[ix], nil
	}
	return t, ErrTokenDoesNotExist
}

func (r *FakeVerificationTokenRepository) Delete(ctx context.Context, id ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, existing := range r.Tokens {
		if existing.ID == id {
			r.Tokens = append(r.Tokens[:ix], r.Tokens[ix+1:]...)
			return nil
		}
	}
	return ErrTokenDoesNotExist
}

func (r *FakeVerificationTokenRepository) DeleteByAccount(ctx context.Context, accountID account.ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	remaining := r.Tokens[:0]
	for _, existing := range r.Tokens {
		if existing.AccountID != accountID {
			remaining = append(remaining, existing)
		}
	}
	r.Tokens = remaining
	return nil
}

type FakePasswordResetTokenRepository struct {
	Tokens      []PasswordResetToken
	ReturnError bool
	lock        sync.Mutex
}

func NewFakePasswordResetTokenRepository() *FakePasswordResetTokenRepository {
	return &FakePasswordResetTokenRepository{Tokens: make([]PasswordResetToken, 0, 10)}
}

func (r *FakePasswordResetTokenRepository) Create(
	ctx context.Context,
	input CreatePasswordResetTokenInput,
) (t PasswordResetToken, err error) {
	if r.ReturnError {
		return t, fmt.Errorf("could not create password reset token %v", input)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	t = PasswordResetToken{
		ID:        input.ID,
		AccountID: input.AccountID,
		CreatedAt: input.CreatedAt,
	}
	r.Tokens = append(r.Tokens, t)
	return t, nil
}

func (r *FakePasswordResetTokenRepository) GetByID(ctx context.Context, id ID) (t PasswordResetToken, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, existing := range r.Tokens {
		if existing.ID == id {
			return existing, nil
		}
	}
	return t, ErrTokenDoesNotExist
}

func (r *FakePasswordResetTokenRepository) MarkUsed(
	ctx context.Context,
	id ID,
	at time.Time,
) (t PasswordResetToken, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, existing := range r.Tokens {
		if existing.ID != id {
			continue
		}
		if existing.IsUsed {
			return t, ErrTokenAlreadyConsumed
		}
		r.Tokens[ix].IsUsed = true
		r.Tokens[ix].UsedAt = c.NewOptional(at, true)
		return r.Tokens[ix], nil
	}
	return t, ErrTokenDoesNotExist
}

func (r *FakePasswordResetTokenRepository) MarkAllUsed(
	ctx context.Context,
	accountID account.ID,
	at time.Time,
) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	var count int64
	for ix, existing := range r.Tokens {
		if existing.AccountID == accountID && !existing.IsUsed {
			r.Tokens[ix].IsUsed = true
			r.Tokens[ix].UsedAt = c.NewOptional(at, true)
			count++
		}
	}
	return count, nil
}

func (r *FakePasswordResetTokenRepository) DeleteByAccount(ctx context.Context, accountID account.ID) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	remaining := r.Tokens[:0]
	for _, existing := range r.Tokens {
		if existing.AccountID != accountID {
			remaining = append(remaining, existing)
		}
	}
	r.Tokens = remaining
	return nil
}

type FakeGenerator struct {
	NextID ID
}

func NewFakeGenerator(id string) *FakeGenerator {
	return &FakeGenerator{NextID: ID(id)}
}

func (g *FakeGenerator) GenerateTokenID() ID {
	return g.NextID
}

type FakeVerificationTokenSender struct {
	Sent        []VerificationToken
	SentTo      []account.Account
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeVerificationTokenSender() *FakeVerificationTokenSender {
	return &FakeVerificationTokenSender{}
}

func (s *FakeVerificationTokenSender) SendVerificationToken(
	ctx context.Context,
	a account.Account,
	t VerificationToken,
) error {
	if s.ReturnError {
		return fmt.Errorf("could not send verification token to account %d", a.ID)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, t)
	s.SentTo = append(s.SentTo, a)
	return nil
}

func (s *FakeVerificationTokenSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}

func (s *FakeVerificationTokenSender) LastSent() VerificationToken {
	s.lock.Lock()
	defer s.lock.Unlock()
	l := len(s.Sent)
	if l == 0 {
		panic("Sent count is 0.")
	}
	return s.Sent[l-1]
}

type FakePasswordResetTokenSender struct {
	Sent        []PasswordResetToken
	SentTo      []account.Account
	ReturnError bool
	lock        sync.Mutex
}

func NewFakePasswordResetTokenSender() *FakePasswordResetTokenSender {
	return &FakePasswordResetTokenSender{}
}

func (s *FakePasswordResetTokenSender) SendPasswordResetToken(
	ctx context.Context,
	a account.Account,
	t PasswordResetToken,
) error {
	if s.ReturnError {
		return fmt.Errorf("could not send password reset token to account %d", a.ID)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, t)
	s.SentTo = append(s.SentTo, a)
	return nil
}

func (s *FakePasswordResetTokenSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}
