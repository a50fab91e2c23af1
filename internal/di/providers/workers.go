package providers

import (
	"github.com/samber/do/v2"

	"github.com/Amir-Wake/Ebookd/internal/ratelimit"
)

// Review submissions per user. A burst covers a reader rating a few books in
// a row, the refill rate stops scripted flooding.
const (
	reviewRatePerSecond = 0.2
	reviewBurst         = 5
)

// ReviewLimiterHandle wraps the per-user review rate limiter with shutdown
// capability so its sweep goroutine stops cleanly.
type ReviewLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *ReviewLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideReviewLimiter provides the per-user review submission limiter.
func ProvideReviewLimiter(i do.Injector) (*ReviewLimiterHandle, error) {
	return &ReviewLimiterHandle{
		KeyedRateLimiter: ratelimit.New(reviewRatePerSecond, reviewBurst),
	}, nil
}
