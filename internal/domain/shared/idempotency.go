package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed message IDs so that redelivered
// messages (for example payment webhooks) are handled once
type IdempotencyStore interface {
	// MarkProcessed records id for ttl. It returns false when id was
	// already recorded.
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// Forget removes id so a failed handler can be retried
	Forget(ctx context.Context, id string) error
}
