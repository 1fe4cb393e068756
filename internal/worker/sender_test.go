package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/kafka"
	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/service/messenger"
	"github.com/jmehdipour/wa-assistant/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSource struct {
	ch chan kafka.Message

	mu        sync.Mutex
	committed []int64
}

func (s *chanSource) Fetch(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-s.ch:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (s *chanSource) Commit(_ context.Context, m kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, m.Offset)
	return nil
}

func (s *chanSource) commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed)
}

type fakeDeliverer struct {
	mu   sync.Mutex
	envs []model.Envelope
}

func (d *fakeDeliverer) Deliver(_ context.Context, env model.Envelope) (model.SendLogEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.envs = append(d.envs, env)

	e := model.SendLogEntry{ID: env.ID, Phone: env.Phone, Message: env.Text, Type: model.TypeInstant, Status: model.StatusSent}
	switch env.Phone {
	case "bad":
		return model.SendLogEntry{}, util.ErrInvalidPhone
	case "27820000009":
		e.Status = model.StatusFailed
		return e, messenger.ErrDeliveryFailed
	}
	return e, nil
}

type fakeSink struct {
	mu      sync.Mutex
	entries []model.SendLogEntry
}

func (s *fakeSink) InsertBatch(_ context.Context, entries []model.SendLogEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return len(entries), nil
}

func envelopeMsg(t *testing.T, offset int64, env model.Envelope) kafka.Message {
	t.Helper()
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Key: []byte(env.Phone), Value: b}
}

func TestSenderKafkaDeliversCommitsAndMirrors(t *testing.T) {
	src := &chanSource{ch: make(chan kafka.Message, 8)}
	src.ch <- envelopeMsg(t, 1, model.Envelope{ID: "a", Phone: "27820000001", Text: "one"})
	src.ch <- kafka.Message{Offset: 2, Value: []byte("{not json")}
	src.ch <- envelopeMsg(t, 3, model.Envelope{ID: "b", Phone: "27820000009", Text: "two"})
	src.ch <- envelopeMsg(t, 4, model.Envelope{ID: "c", Phone: "bad", Text: "three"})
	src.ch <- envelopeMsg(t, 5, model.Envelope{ID: "d", Phone: "27820000002", Text: "four"})

	del := &fakeDeliverer{}
	sink := &fakeSink{}
	w := NewSenderKafka(src, del, sink)
	w.BatchWait = time.Hour // only the final flush

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool { return src.commits() == 5 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	assert.Len(t, del.envs, 4)

	ids := make([]string, 0, len(sink.entries))
	for _, e := range sink.entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "b", "d"}, ids)
	assert.Equal(t, model.StatusFailed, sink.entries[1].Status)
}

func TestSenderKafkaRequiresDeps(t *testing.T) {
	err := (&SenderKafka{}).Run(context.Background())
	assert.Error(t, err)
}

type flakySource struct {
	chanSource
	fails int
}

func (s *flakySource) Fetch(ctx context.Context) (kafka.Message, error) {
	s.mu.Lock()
	if s.fails > 0 {
		s.fails--
		s.mu.Unlock()
		return kafka.Message{}, errors.New("broker unavailable")
	}
	s.mu.Unlock()
	return s.chanSource.Fetch(ctx)
}

func TestSenderKafkaRetriesFetchErrors(t *testing.T) {
	src := &flakySource{chanSource: chanSource{ch: make(chan kafka.Message, 1)}, fails: 2}
	src.ch <- envelopeMsg(t, 7, model.Envelope{ID: "x", Phone: "27820000001", Text: "hi"})

	w := NewSenderKafka(src, &fakeDeliverer{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	assert.Eventually(t, func() bool { return src.commits() == 1 }, 3*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
