package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// zone-less layouts written by datetime.isoformat() and str(datetime), read in time.Local
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts RFC 3339 and the zone-less ISO layouts. Blank input is the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}

// looseTime is the JSON form of time fields in the data files.
type looseTime struct{ time.Time }

func (t *looseTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (c *Contact) UnmarshalJSON(b []byte) error {
	type plain Contact
	aux := struct {
		*plain
		AddedAt looseTime `json:"added_at"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.AddedAt = aux.AddedAt.Time
	return nil
}

func (e *SendLogEntry) UnmarshalJSON(b []byte) error {
	type plain SendLogEntry
	aux := struct {
		*plain
		Timestamp looseTime `json:"timestamp"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	e.Timestamp = aux.Timestamp.Time
	return nil
}

func (t *ScheduledTask) UnmarshalJSON(b []byte) error {
	type plain ScheduledTask
	aux := struct {
		*plain
		ScheduledAt looseTime `json:"scheduled_at"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	t.ScheduledAt = aux.ScheduledAt.Time
	return nil
}
