package scheduler

import (
	"sync"

	"github.com/jmehdipour/wa-assistant/internal/model"
)

// Tasks keeps cron entries in line with the persisted schedule list.
type Tasks struct {
	s   *Scheduler
	run func(model.ScheduledTask)

	mu      sync.Mutex
	entries map[string]taskEntry
}

type taskEntry struct {
	id   EntryID
	task model.ScheduledTask
}

// NewTasks registers scheduled tasks on s; each fires run with its task.
func NewTasks(s *Scheduler, run func(model.ScheduledTask)) *Tasks {
	return &Tasks{s: s, run: run, entries: map[string]taskEntry{}}
}

// Sync adds new tasks, drops removed ones and re-registers tasks whose time or
// message changed. Tasks with an unparseable time are skipped and returned.
func (t *Tasks) Sync(tasks []model.ScheduledTask) (added, removed int, invalid []model.ScheduledTask) {
	t.mu.Lock()
	defer t.mu.Unlock()

	want := make(map[string]model.ScheduledTask, len(tasks))
	for _, task := range tasks {
		want[task.ID] = task
	}

	for id, e := range t.entries {
		if w, ok := want[id]; ok && w.Time == e.task.Time && w.Message == e.task.Message && w.Phone == e.task.Phone {
			continue
		}
		t.s.Remove(e.id)
		delete(t.entries, id)
		removed++
	}

	for _, task := range tasks {
		if _, ok := t.entries[task.ID]; ok {
			continue
		}
		id, err := t.s.ScheduleDaily(task.Time, func() { t.run(task) })
		if err != nil {
			invalid = append(invalid, task)
			continue
		}
		t.entries[task.ID] = taskEntry{id: id, task: task}
		added++
	}
	return added, removed, invalid
}

func (t *Tasks) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
