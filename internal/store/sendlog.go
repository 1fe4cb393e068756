package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmehdipour/wa-assistant/internal/util"
	"go.uber.org/zap"
)

// AppendLogEntry adds e to the end of the send log. A zero timestamp is stamped
// with the store clock and a missing id is filled with a ULID. An unparseable log
// is moved aside to message_log.json.corrupt-<ulid> and a fresh log is started.
func (s *Store) AppendLogEntry(e model.SendLogEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if e.ID == "" {
		e.ID = util.NewAt(e.Timestamp)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := loadJSON[model.SendLogEntry](s.path(LogFile))
	if errors.Is(err, ErrCorrupt) {
		aside, rerr := s.quarantine(LogFile)
		if rerr != nil {
			return fmt.Errorf("%w (move aside: %v)", err, rerr)
		}
		s.log.Error("send log unreadable, moved aside and started a new one",
			zap.String("moved_to", aside), zap.Error(err))
		logs = []model.SendLogEntry{}
	} else if err != nil {
		return err
	}

	return writeJSON(s.path(LogFile), append(logs, e))
}

func (s *Store) quarantine(name string) (string, error) {
	aside := name + ".corrupt-" + util.NewAt(s.now())
	if err := os.Rename(s.path(name), s.path(aside)); err != nil {
		return "", err
	}
	return aside, nil
}

// LogEntries returns the send log in append order.
func (s *Store) LogEntries() []model.SendLogEntry {
	logs, err := loadJSON[model.SendLogEntry](s.path(LogFile))
	if err != nil {
		s.log.Warn("send log unreadable, treating as empty", zap.Error(err))
		return []model.SendLogEntry{}
	}
	return logs
}

// CountToday counts log entries whose timestamp falls on the clock's current local date.
func (s *Store) CountToday() int {
	now := s.now()
	y, m, d := now.Date()

	n := 0
	for _, e := range s.LogEntries() {
		ey, em, ed := e.Timestamp.In(now.Location()).Date()
		if ey == y && em == m && ed == d {
			n++
		}
	}
	return n
}
