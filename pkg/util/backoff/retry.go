package backoff

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// MaxRetries bounds the connection attempts to the candle store and cache
var MaxRetries uint64 = 5

// RetryConnect retries op with exponential backoff, at most MaxRetries times and never past ctx.
// Every failed attempt is logged with target.
func RetryConnect(ctx context.Context, target string, op backoff.Operation) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond

	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, MaxRetries), ctx),
		func(err error, next time.Duration) {
			log.WithError(err).Warnf("unable to connect to %s, retrying in %s", target, next)
		})
}
