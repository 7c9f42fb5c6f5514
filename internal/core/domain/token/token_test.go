package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

func TestVerificationTokenExpiryBoundary(t *testing.T) {
	token := VerificationToken{ID: "test", CreatedAt: createdAt}
	ttl := 24 * time.Hour

	cases := []struct {
		id      string
		now     time.Time
		expired bool
	}{
		{"just created", createdAt, false},
		{"one nanosecond before boundary", createdAt.Add(ttl - time.Nanosecond), false},
		{"exactly at boundary", createdAt.Add(ttl), true},
		{"after boundary", createdAt.Add(ttl + time.Second), true},
		{"long after boundary", createdAt.Add(100 * ttl), true},
	}
	for _, testcase := range cases {
		t.Run(testcase.id, func(t *testing.T) {
			require.Equal(t, testcase.expired, token.IsExpired(ttl, testcase.now))
		})
	}
}

func TestPasswordResetTokenExpiryBoundary(t *testing.T) {
	token := PasswordResetToken{ID: "test", CreatedAt: createdAt}
	ttl := time.Hour

	assert := require.New(t)
	assert.False(token.IsExpired(ttl, createdAt.Add(ttl-time.Nanosecond)))
	assert.True(token.IsExpired(ttl, createdAt.Add(ttl)))
	assert.True(token.IsExpired(ttl, createdAt.Add(2*ttl)))
}
