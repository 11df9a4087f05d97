package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncEvent is one row of the cart sync audit trail, written by the worker
// as it consumes cart events off Kafka.
type SyncEvent struct {
	ID         string    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ShopDomain string    `json:"shop_domain" gorm:"not null"`
	CustomerID string    `json:"customer_id" gorm:"not null"`
	EventType  string    `json:"event_type" gorm:"not null"`
	ItemCount  int       `json:"item_count"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

type SyncEventType string

const (
	SyncEventCartSaved    SyncEventType = "cart.saved"
	SyncEventCartRestored SyncEventType = "cart.restored"
)

func (e *SyncEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}
