package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/util"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer hands messages to a gateway listening on a Kafka topic. Delivery
// counts as successful once the broker acknowledges the write.
type Producer struct {
	w messageWriter
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}}
}

// Deliver publishes an envelope keyed by phone so one recipient's messages stay ordered.
func (p *Producer) Deliver(ctx context.Context, phone, message, attachment string) error {
	env := model.Envelope{ID: util.New(), Phone: phone, Text: message, Attachment: attachment}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(phone), Value: b}); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (p *Producer) Close() error { return p.w.Close() }
