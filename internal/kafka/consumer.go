package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MinBytes       int           // default 1KB
	MaxBytes       int           // default 10MB
	CommitInterval time.Duration // default 1s
	MaxWait        time.Duration // default 500ms
}

// Consumer reads send envelopes as a member of a consumer group; offsets are
// committed explicitly per message.
type Consumer struct {
	r *kafka.Reader
}

func NewConsumerFromConfig(c Config) (*Consumer, error) {
	if len(c.Brokers) == 0 || c.Topic == "" || c.GroupID == "" {
		return nil, errors.New("kafka consumer needs brokers, topic and group id")
	}

	minBytes := c.MinBytes
	if minBytes <= 0 {
		minBytes = 1 << 10
	}
	maxBytes := c.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	ci := c.CommitInterval
	if ci <= 0 {
		ci = time.Second
	}
	// messages trickle in one at a time; don't hold them back waiting for MinBytes
	mw := c.MaxWait
	if mw <= 0 {
		mw = 500 * time.Millisecond
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		CommitInterval: ci,
		MaxWait:        mw,
		StartOffset:    kafka.FirstOffset,
	})

	return &Consumer{r: r}, nil
}

type Message = kafka.Message

func (c *Consumer) Fetch(ctx context.Context) (Message, error) {
	return c.r.FetchMessage(ctx)
}

func (c *Consumer) Commit(ctx context.Context, m Message) error {
	return c.r.CommitMessages(ctx, m)
}

func (c *Consumer) Close() error { return c.r.Close() }

// DecodeEnvelope parses a send request; envelopes without a phone are rejected.
func DecodeEnvelope(m Message) (model.Envelope, error) {
	var env model.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return model.Envelope{}, fmt.Errorf("bad envelope json: %w", err)
	}
	if env.Phone == "" {
		return model.Envelope{}, fmt.Errorf("envelope %q missing phone", env.ID)
	}
	return env, nil
}
