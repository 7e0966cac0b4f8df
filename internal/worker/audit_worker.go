package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-service/internal/events"
)

// StartAuditWorker subscribes a structured-log audit trail to every domain
// event type.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	audited := []events.EventType{
		events.EventUserRegistered,
		events.EventProductCreated,
		events.EventProductUpdated,
		events.EventProductDeleted,
		events.EventCartCreated,
		events.EventCartReplaced,
		events.EventCartLineAdded,
		events.EventCartLineUpdated,
		events.EventCartLineRemoved,
		events.EventCartCleared,
	}

	for _, eventType := range audited {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			logger.Info("audit",
				zap.String("event", string(event.Type)),
				zap.String("entity_id", event.EntityID),
				zap.Time("at", event.Timestamp),
				zap.Any("payload", event.Payload),
			)
			return nil
		})
	}
}
