package dispatcher

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/util"
)

var (
	ErrNoHealthy = fmt.Errorf("no healthy providers")
	ErrNoAcquire = fmt.Errorf("provider not acquired")
)

// Dispatcher spreads deliveries over providers round-robin, skipping providers whose
// breaker is open. With maxAttempts > 1 a failed delivery moves on to the next provider.
type Dispatcher struct {
	providers         []Provider
	roundRobinCounter atomic.Uint64
	maxAttempts       int
}

func NewDispatcher(provs []Provider, maxAttempts int) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Dispatcher{providers: provs, maxAttempts: maxAttempts}
}

func (d *Dispatcher) selectProvider() (Provider, error) {
	healthy := make([]Provider, 0, len(d.providers))
	for _, p := range d.providers {
		if p.Ready() {
			healthy = append(healthy, p)
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}

	x := d.roundRobinCounter.Add(1)
	idx := int((x - 1) % uint64(len(healthy)))

	return healthy[idx], nil
}

func (d *Dispatcher) tryOnce(ctx context.Context, env model.Envelope) error {
	p, err := d.selectProvider()
	if err != nil {
		return err
	}

	if !p.Acquire() {
		return ErrNoAcquire
	}

	return p.Send(ctx, env)
}

// Deliver sends message (and the optional attachment) to a canonical phone.
func (d *Dispatcher) Deliver(ctx context.Context, phone, message, attachment string) error {
	env := model.Envelope{ID: util.New(), Phone: phone, Text: message, Attachment: attachment}

	var last error
	for i := 0; i < d.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.tryOnce(ctx, env); err == nil {
			return nil
		} else {
			last = err
		}
	}

	if last == nil {
		last = fmt.Errorf("deliver failed")
	}

	return last
}
