package dispatcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMicroBreakerOpensAndProbes(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	b := NewMicroBreaker(2, 10*time.Second)
	b.now = func() time.Time { return now }

	assert.True(t, b.Ready())
	b.OnFailure()
	assert.Equal(t, Closed, b.State())
	b.OnFailure()
	assert.Equal(t, Open, b.State())
	assert.False(t, b.Ready())
	assert.False(t, b.TryAcquire())

	now = now.Add(11 * time.Second)
	assert.True(t, b.Ready())
	assert.True(t, b.TryAcquire())
	assert.Equal(t, HalfOpen, b.State())
	// only one probe at a time
	assert.False(t, b.TryAcquire())

	b.OnFailure()
	assert.Equal(t, Open, b.State())

	now = now.Add(11 * time.Second)
	assert.True(t, b.TryAcquire())
	b.OnSuccess()
	assert.Equal(t, Closed, b.State())
	assert.Equal(t, "closed", b.State().String())
}
