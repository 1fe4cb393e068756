package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/kafka"
	"github.com/jmehdipour/wa-assistant/internal/logger"
	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/service/messenger"
	"go.uber.org/zap"
)

// Source is where queued envelopes come from (a Kafka consumer group in production).
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// Deliverer sends one envelope and records it in the send log.
type Deliverer interface {
	Deliver(ctx context.Context, env model.Envelope) (model.SendLogEntry, error)
}

// Sink mirrors log entries elsewhere; optional.
type Sink interface {
	InsertBatch(ctx context.Context, entries []model.SendLogEntry) (int, error)
}

// SenderKafka:
// - fetches envelopes from Kafka,
// - delivers them through the configured transport (logged locally),
// - mirrors the resulting log entries to the SQL sink in batches.
type SenderKafka struct {
	// Dependencies
	Source  Source
	Deliver Deliverer
	Sink    Sink // nil disables mirroring

	// Behavior
	Workers   int           // number of goroutines delivering messages
	Delay     time.Duration // pause between deliveries within one processor
	BatchSize int           // max buffered entries per sink flush
	BatchWait time.Duration // max time to wait before a sink flush
}

// NewSenderKafka builds a worker with sane defaults.
func NewSenderKafka(src Source, d Deliverer, sink Sink) *SenderKafka {
	return &SenderKafka{
		Source:    src,
		Deliver:   d,
		Sink:      sink,
		Workers:   1,
		BatchSize: 100,
		BatchWait: 2 * time.Second,
	}
}

// Run starts the worker and blocks until ctx is cancelled and in-flight work is done.
func (w *SenderKafka) Run(ctx context.Context) error {
	if w.Source == nil || w.Deliver == nil {
		return errors.New("sender-kafka: source and deliverer are required")
	}
	if w.Workers <= 0 {
		w.Workers = 1
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 100
	}
	if w.BatchWait <= 0 {
		w.BatchWait = 2 * time.Second
	}

	// processors → batch writer
	entries := make(chan model.SendLogEntry, w.BatchSize*2)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		w.runBatchWriter(entries)
	}()

	// fetch loop → fan-out to processors
	msgCh := make(chan kafka.Message, w.Workers*2)
	go func() {
		defer close(msgCh)
		for {
			m, err := w.Source.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Log.Warn("kafka fetch failed", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(200 * time.Millisecond):
				}
				continue
			}
			select {
			case msgCh <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < w.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.runProcessor(ctx, msgCh, entries)
		}()
	}

	wg.Wait()
	close(entries)
	<-writerDone
	return nil
}

func (w *SenderKafka) runProcessor(ctx context.Context, in <-chan kafka.Message, out chan<- model.SendLogEntry) {
	first := true
	for m := range in {
		if ctx.Err() != nil {
			// uncommitted; redelivered to the group after restart
			return
		}
		if !first && w.Delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.Delay):
			}
		}
		first = false
		w.processOne(ctx, m, out)
	}
}

func (w *SenderKafka) processOne(ctx context.Context, m kafka.Message, out chan<- model.SendLogEntry) {
	env, err := kafka.DecodeEnvelope(m)
	if err != nil {
		// poison → commit, skip
		logger.Log.Warn("dropping bad envelope", zap.Int64("offset", m.Offset), zap.Error(err))
		w.commit(ctx, m)
		return
	}

	entry, err := w.Deliver.Deliver(ctx, env)
	switch {
	case err == nil, errors.Is(err, messenger.ErrDeliveryFailed):
		// sent or logged as failed: either way there is a log entry to mirror
		out <- entry
	default:
		logger.Log.Warn("rejected envelope", zap.String("id", env.ID), zap.String("phone", env.Phone), zap.Error(err))
	}

	// always commit (at-most-once delivery; failures live in the send log, not the queue)
	w.commit(ctx, m)
}

func (w *SenderKafka) commit(ctx context.Context, m kafka.Message) {
	if err := w.Source.Commit(ctx, m); err != nil {
		logger.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

// runBatchWriter does size/time-based flushes of log entries to the sink until in is closed.
func (w *SenderKafka) runBatchWriter(in <-chan model.SendLogEntry) {
	tick := time.NewTicker(w.BatchWait)
	defer tick.Stop()

	var buf []model.SendLogEntry

	flush := func() {
		if len(buf) == 0 || w.Sink == nil {
			buf = buf[:0]
			return
		}
		// detached so the final flush still runs after shutdown has cancelled the run context
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		n, err := w.Sink.InsertBatch(ctx, buf)
		if err != nil {
			logger.Log.Error("sink flush failed", zap.Int("entries", len(buf)), zap.Error(err))
		} else {
			logger.Log.Debug("sink flushed", zap.Int("entries", len(buf)), zap.Int("written", n))
		}
		buf = buf[:0]
	}

	for {
		select {
		case e, ok := <-in:
			if !ok {
				flush()
				return
			}
			buf = append(buf, e)
			if len(buf) >= w.BatchSize {
				flush()
			}
		case <-tick.C:
			flush()
		}
	}
}
