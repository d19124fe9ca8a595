package infra

import (
	"context"
	"time"

	"github.com/phuslu/log"
)

// Backoff describes a capped exponential retry schedule.
type Backoff struct {
	Attempts int           // total tries, at least 1
	Initial  time.Duration // delay before the second try; doubles afterwards
}

// DefaultBackoff is three tries starting at 800ms.
var DefaultBackoff = Backoff{Attempts: 3, Initial: 800 * time.Millisecond}

// Retry runs fn until it succeeds, the attempts are used up, or ctx ends.
// Parse failures are not retried. The last error is returned.
func Retry(ctx context.Context, b Backoff, fn func(context.Context) error) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := b.Initial

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if Classify(err) == KindParse || Canceled(err) || i == attempts-1 {
			break
		}
		log.Debug().Err(err).Int("attempt", i+1).Dur("delay", delay).Msg("retrying upstream call")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
