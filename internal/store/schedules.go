package store

import (
	"github.com/jmehdipour/wa-assistant/internal/model"
	"go.uber.org/zap"
)

// SaveSchedule stores t, replacing any task with the same id.
func (s *Store) SaveSchedule(t model.ScheduledTask) error {
	if t.ScheduledAt.IsZero() {
		t.ScheduledAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := loadJSON[model.ScheduledTask](s.path(SchedulesFile))
	if err != nil {
		return err
	}

	replaced := false
	for i := range tasks {
		if tasks[i].ID == t.ID {
			tasks[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		tasks = append(tasks, t)
	}

	return writeJSON(s.path(SchedulesFile), tasks)
}

func (s *Store) ListSchedules() []model.ScheduledTask {
	tasks, err := loadJSON[model.ScheduledTask](s.path(SchedulesFile))
	if err != nil {
		s.log.Warn("schedules unreadable, treating as empty", zap.Error(err))
		return []model.ScheduledTask{}
	}
	return tasks
}

// RemoveSchedule deletes the task with id, reporting whether it existed.
func (s *Store) RemoveSchedule(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := loadJSON[model.ScheduledTask](s.path(SchedulesFile))
	if err != nil {
		return false, err
	}

	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return false, nil
	}

	return true, writeJSON(s.path(SchedulesFile), kept)
}
