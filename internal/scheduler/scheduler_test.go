package scheduler

import (
	"testing"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHHMM(t *testing.T) {
	h, m, err := ParseHHMM(" 09:05 ")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	for _, bad := range []string{"", "9", "24:00", "12:60", "ab:cd", "-1:10"} {
		_, _, err := ParseHHMM(bad)
		assert.ErrorIs(t, err, ErrInvalidTime, bad)
	}
	assert.Equal(t, "07:30", FormatHHMM(7, 30))
}

func TestNextDaily(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.Local)

	assert.Equal(t, time.Date(2026, 10, 17, 18, 30, 0, 0, time.Local), NextDaily(now, 18, 30))
	assert.Equal(t, time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local), NextDaily(now, 9, 0))
	assert.Equal(t, now, NextDaily(now, 10, 0))

	eom := time.Date(2026, 10, 31, 23, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, 11, 1, 8, 0, 0, 0, time.Local), NextDaily(eom, 8, 0))
}

func TestScheduleDaily(t *testing.T) {
	s := New(time.UTC)

	id, err := s.ScheduleDaily("06:45", func() {})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	s.Start()
	defer s.Stop()

	next := s.Next(id)
	require.False(t, next.IsZero())
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 45, next.Minute())

	_, err = s.ScheduleDaily("25:00", func() {})
	assert.ErrorIs(t, err, ErrInvalidTime)

	s.Remove(id)
	assert.Equal(t, 0, s.Len())
}

func TestTasksSync(t *testing.T) {
	s := New(time.Local)
	tasks := NewTasks(s, func(model.ScheduledTask) {})

	list := []model.ScheduledTask{
		{ID: "27820000001_8_0", Phone: "27820000001", Message: "morning", Time: "08:00"},
		{ID: "27820000002_20_30", Phone: "27820000002", Message: "evening", Time: "20:30"},
		{ID: "broken", Phone: "27820000003", Message: "x", Time: "8am"},
	}

	added, removed, invalid := tasks.Sync(list)
	assert.Equal(t, 2, added)
	assert.Zero(t, removed)
	require.Len(t, invalid, 1)
	assert.Equal(t, "broken", invalid[0].ID)
	assert.Equal(t, 2, tasks.Len())
	assert.Equal(t, 2, s.Len())

	// unchanged list is a no-op
	added, removed, _ = tasks.Sync(list[:2])
	assert.Zero(t, added)
	assert.Zero(t, removed)

	// message edit re-registers, deletion drops
	edited := list[0]
	edited.Message = "good morning"
	added, removed, _ = tasks.Sync([]model.ScheduledTask{edited})
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, tasks.Len())
	assert.Equal(t, 1, s.Len())
}
