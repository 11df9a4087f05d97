package events

import (
	"context"
	"encoding/json"
	"time"

	"cartsync/internal/logger"

	"github.com/segmentio/kafka-go"
)

// CartEvent is the message published after a successful save and consumed
// by the audit worker.
type CartEvent struct {
	Type       string    `json:"type"`
	ShopDomain string    `json:"shop_domain"`
	CustomerID string    `json:"customer_id"`
	ItemCount  int       `json:"item_count"`
	Timestamp  time.Time `json:"timestamp"`
}

type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers, topic string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

// Publish sends the event keyed by (shop, customer) so one customer's
// events stay ordered within a partition. Publishing is advisory: a broker
// outage must never fail a save.
func (p *Publisher) Publish(ctx context.Context, event CartEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal cart event: %v", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ShopDomain + "/" + event.CustomerID),
		Value: value,
	})
	if err != nil {
		p.logger.Warn("Failed to publish cart event: %v", err)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
