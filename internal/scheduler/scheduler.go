// Package scheduler runs callbacks once a day at a local HH:MM.
package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrInvalidTime = errors.New("invalid time, want HH:MM")

type EntryID = cron.EntryID

// ParseHHMM parses a 24h "HH:MM" time of day.
func ParseHHMM(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, herr := strconv.Atoi(h)
	minute, merr := strconv.Atoi(m)
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return hour, minute, nil
}

// FormatHHMM is the inverse of ParseHHMM.
func FormatHHMM(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// NextDaily returns today's hour:minute in now's location, or the same time tomorrow
// when today's slot is already behind now.
func NextDaily(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Scheduler wraps a cron runner limited to daily jobs.
type Scheduler struct {
	c *cron.Cron
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{c: cron.New(cron.WithLocation(loc))}
}

// ScheduleDaily registers fn to run every day at hhmm.
func (s *Scheduler) ScheduleDaily(hhmm string, fn func()) (EntryID, error) {
	hour, minute, err := ParseHHMM(hhmm)
	if err != nil {
		return 0, err
	}
	return s.c.AddFunc(fmt.Sprintf("%d %d * * *", minute, hour), fn)
}

func (s *Scheduler) Remove(id EntryID) { s.c.Remove(id) }

// Next reports when entry id fires next; zero if unknown or not started.
func (s *Scheduler) Next(id EntryID) time.Time { return s.c.Entry(id).Next }

func (s *Scheduler) Len() int { return len(s.c.Entries()) }

func (s *Scheduler) Start() { s.c.Start() }

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() { <-s.c.Stop().Done() }
