package ocr

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/vendor-intake/internal/resilience"
)

// WithRetry retries transient recognition failures with exponential
// backoff. maxAttempts <= 0 uses the resilience default.
func WithRetry(r Recognizer, provider string, maxAttempts int) Recognizer {
	cfg := resilience.WithAttempts(maxAttempts)
	cfg.OnRetry = resilience.RetryLogger(provider, "recognize")
	return withRetryConfig(r, cfg)
}

func withRetryConfig(r Recognizer, cfg resilience.RetryConfig) Recognizer {
	return RecognizerFunc(func(ctx context.Context, img Image) (string, error) {
		return resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
			return r.Recognize(ctx, img)
		})
	})
}

// WithRateLimit spaces calls to at most rps per second. rps <= 0 disables
// limiting.
func WithRateLimit(r Recognizer, rps float64) Recognizer {
	if rps <= 0 {
		return r
	}
	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	return RecognizerFunc(func(ctx context.Context, img Image) (string, error) {
		if err := limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "ocr: rate limiter wait")
		}
		return r.Recognize(ctx, img)
	})
}

// WithBreaker fails calls fast while the provider's breaker is open.
func WithBreaker(r Recognizer, cfg resilience.BreakerConfig) Recognizer {
	b := resilience.NewBreaker(cfg)
	return RecognizerFunc(func(ctx context.Context, img Image) (string, error) {
		return resilience.BreakVal(ctx, b, func(ctx context.Context) (string, error) {
			return r.Recognize(ctx, img)
		})
	})
}
