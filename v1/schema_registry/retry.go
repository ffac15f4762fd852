package schema_registry

import (
	"context"
	"errors"
	"net"

	"github.com/cenkalti/backoff/v4"
)

// transportError is a request that failed before an HTTP response arrived.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// neverSent reports whether the request provably did not reach the server,
// i.e. the connection could not be established.
func (e *transportError) neverSent() bool {
	var opErr *net.OpError
	return errors.As(e.err, &opErr) && opErr.Op == "dial"
}

// do runs spec against the configured endpoints with bounded exponential
// backoff. Each attempt walks the endpoints in order and stops at the first
// one that produced a response.
//
// Retry policy:
//   - registry rejections (4xx) are never retried
//   - transport failures and 5xx/429 are retried for idempotent calls
//   - non-idempotent calls are retried only if no endpoint could be dialed
func (c *Client) do(ctx context.Context, spec requestSpec, out interface{}) error {
	attempt := 0
	operation := func() error {
		attempt++
		var lastErr error
		for _, baseURL := range c.urls {
			err := c.roundTrip(ctx, baseURL, spec, out)
			if err == nil {
				return nil
			}
			lastErr = err

			var tErr *transportError
			if errors.As(err, &tErr) {
				if !spec.idempotent && !tErr.neverSent() {
					return backoff.Permanent(err)
				}
				// Try the next endpoint.
				continue
			}

			var restErr *RestError
			if errors.As(err, &restErr) && restErr.Temporary() && spec.idempotent {
				continue
			}
			return backoff.Permanent(err)
		}

		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		c.logger.WarnWithContext(ctx, "schema registry request failed, retrying", lastErr, map[string]interface{}{
			"method":  spec.method,
			"path":    spec.path,
			"attempt": attempt,
		})
		return lastErr
	}

	return backoff.Retry(operation, c.newBackOff(ctx))
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryBackoff
	expo.MaxInterval = c.maxRetryBackoff
	// The retry count is the bound, not elapsed time.
	expo.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(c.maxRetries)), ctx)
}
