package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OrderExpirer cancels card orders that were never paid
type OrderExpirer interface {
	ExpireAbandoned(ctx context.Context, maxAge time.Duration) (int, error)
}

// AbandonedOrderTask returns stock held by checkouts whose card payment
// never completed
func AbandonedOrderTask(orders OrderExpirer, maxAge time.Duration, logger *zap.Logger) Task {
	return TaskFunc{
		TaskName: "expire-abandoned-orders",
		Fn: func(ctx context.Context) error {
			n, err := orders.ExpireAbandoned(ctx, maxAge)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("Expired abandoned orders", zap.Int("count", n), zap.Duration("max_age", maxAge))
			}
			return nil
		},
	}
}
