package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Await blocks until the payment reaches a terminal status or ctx is
// cancelled, checking at a fixed interval. Transient check failures and
// pending statuses keep the wait going. The terminal status is returned
// for the caller to inspect; an error is returned only when the wait
// itself was abandoned.
func Await(ctx context.Context, checker StatusChecker, reference string, interval time.Duration) (Status, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	operation := func() (Status, error) {
		status, err := checker.CheckStatus(ctx, reference)
		if err != nil {
			// Transient, retried on the next tick.
			return "", err
		}
		if !status.Terminal() {
			return "", fmt.Errorf("payment %s still pending", reference)
		}
		return status, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
	)
}
