package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Burst_Then_Refill(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	limiter := newRateLimiter(3, time.Second)
	limiter.now = func() time.Time { return now }
	limiter.lastCheck = now

	// Given a full bucket, the burst passes and the next frame is refused
	req.True(limiter.allow())
	req.True(limiter.allow())
	req.True(limiter.allow())
	req.False(limiter.allow())

	// When a bit more than a third of the interval elapses, one token is back
	now = now.Add(400 * time.Millisecond)
	req.True(limiter.allow())
	req.False(limiter.allow())

	// Then a long pause never overfills the bucket
	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		req.True(limiter.allow())
	}
	req.False(limiter.allow())
}

func TestRateLimiter_Sanitizes_Config(t *testing.T) {
	req := require.New(t)
	limiter := newRateLimiter(0, 0)
	req.Equal(float64(1), limiter.capacity)
	req.Equal(float64(1), limiter.rate)
}
