package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spiderqueue/spiderqueue/internal/service"
)

// StartNotificationWorker drains the notification queue until ctx is
// cancelled. Returns immediately; delivery runs on its own goroutine.
func StartNotificationWorker(ctx context.Context, notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("notification worker stopped")
				return
			case event := <-notifications.Queue():
				if err := notifications.Deliver(ctx, event); err != nil {
					logger.Warn("notification delivery failed",
						zap.String("event_type", string(event.Type)),
						zap.Error(err),
					)
				}
			}
		}
	}()
}
