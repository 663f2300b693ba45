package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spiderqueue/spiderqueue/internal/config"
	"github.com/spiderqueue/spiderqueue/internal/events"
)

// NotificationService reacts to board activity and fans notifications out to
// the configured channels. Delivery is best effort and never blocks the
// producing operation.
type NotificationService struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
	queue  chan events.Event
}

// NewNotificationService constructs the service with a bounded queue.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan events.Event, 256),
	}
}

// RegisterSubscriptions wires the service into the dispatcher.
func (s *NotificationService) RegisterSubscriptions(dispatcher events.Dispatcher) {
	handler := func(_ context.Context, event events.Event) error {
		s.Enqueue(event)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, handler)
	dispatcher.Subscribe(events.EventTicketMoved, handler)
	dispatcher.Subscribe(events.EventTicketAssigned, handler)
	dispatcher.Subscribe(events.EventTicketLent, handler)
	dispatcher.Subscribe(events.EventTicketReturned, handler)
	dispatcher.Subscribe(events.EventInviteAccepted, handler)
}

// Enqueue buffers an event for delivery, dropping when the queue is full.
func (s *NotificationService) Enqueue(event events.Event) {
	select {
	case s.queue <- event:
	default:
		s.logger.Warn("notification queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
		)
	}
}

// Queue exposes the delivery channel for the worker.
func (s *NotificationService) Queue() <-chan events.Event {
	return s.queue
}

// Deliver sends a single notification. Email and webhook delivery are logged
// stubs until an outbound provider is configured.
func (s *NotificationService) Deliver(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_type", string(event.Type)),
		zap.String("workspace_id", event.WorkspaceID),
		zap.String("actor", event.Actor),
	}
	if event.TicketID != "" {
		fields = append(fields, zap.String("ticket_id", event.TicketID))
	}
	if s.cfg.WebhookURL != "" {
		fields = append(fields, zap.String("webhook_url", s.cfg.WebhookURL))
	}
	s.logger.Info("notification delivered", fields...)
	return nil
}
