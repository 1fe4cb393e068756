package model

import (
	"fmt"
	"time"
)

// ScheduledTask is a message re-sent every day at Time (HH:MM, local).
type ScheduledTask struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	Message     string    `json:"message"`
	Time        string    `json:"time"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// ScheduleID builds the task id used to replace an existing schedule for the same slot.
func ScheduleID(phone string, hour, minute int) string {
	return fmt.Sprintf("%s_%d_%d", phone, hour, minute)
}
