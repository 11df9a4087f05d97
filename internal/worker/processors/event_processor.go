package processors

import (
	"fmt"

	"cartsync/internal/events"
	"cartsync/internal/logger"
	"cartsync/internal/models"

	"gorm.io/gorm"
)

// EventProcessor turns cart events into audit rows. The audit trail is what
// merchants look at when a shopper asks why their cart looks different on
// another device.
type EventProcessor struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewEventProcessor(db *gorm.DB, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		db:     db,
		logger: logger,
	}
}

func (ep *EventProcessor) Process(event events.CartEvent) error {
	switch event.Type {
	case string(models.SyncEventCartSaved), string(models.SyncEventCartRestored):
		return ep.record(event)
	default:
		ep.logger.Debug("Ignoring unknown event type: %s", event.Type)
		return nil
	}
}

func (ep *EventProcessor) record(event events.CartEvent) error {
	row := models.SyncEvent{
		ShopDomain: event.ShopDomain,
		CustomerID: event.CustomerID,
		EventType:  event.Type,
		ItemCount:  event.ItemCount,
		OccurredAt: event.Timestamp,
	}

	if err := ep.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record sync event: %w", err)
	}

	ep.logger.Info("Recorded %s for shop %s customer %s (%d items)",
		event.Type, event.ShopDomain, event.CustomerID, event.ItemCount)
	return nil
}
