package ratelimiting

import (
	"context"
	"testing"
	"tokengate/internal/core/domain/logging"
	ratelimiter "tokengate/internal/core/domain/rate_limiter"

	"github.com/stretchr/testify/require"
)

type testInput struct {
	key string
}

func (i testInput) GetRateLimitKey() string {
	return i.key
}

type countingService struct {
	calls int
}

func (s *countingService) Run(ctx context.Context, input testInput) (struct{}, error) {
	s.calls++
	return struct{}{}, nil
}

func TestAllowedRequestPassesThrough(t *testing.T) {
	assert := require.New(t)
	inner := &countingService{}
	service := WithRateLimiting[testInput, struct{}](
		logging.NewFakeLogger(),
		ratelimiter.NewFakeRateLimiter(true),
		ratelimiter.Limit{Value: 5, Interval: ratelimiter.Minute},
		inner,
	)

	_, err := service.Run(context.Background(), testInput{key: "test"})

	assert.Nil(err)
	assert.Equal(1, inner.calls)
}

func TestRejectedRequestNeverReachesInner(t *testing.T) {
	assert := require.New(t)
	inner := &countingService{}
	service := WithRateLimiting[testInput, struct{}](
		logging.NewFakeLogger(),
		ratelimiter.NewFakeRateLimiter(false),
		ratelimiter.Limit{Value: 5, Interval: ratelimiter.Minute},
		inner,
	)

	_, err := service.Run(context.Background(), testInput{key: "test"})

	assert.ErrorIs(err, ratelimiter.ErrRateLimitExceeded)
	assert.Equal(0, inner.calls)
}
