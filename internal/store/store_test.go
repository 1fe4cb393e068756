package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2026, 10, 17, 9, 30, 0, 0, time.Local)}
	opts = append([]Option{WithCountryCode("27"), WithClock(clk.Now)}, opts...)
	return New(t.TempDir(), opts...), clk
}

func TestEnsureInitializedSeedsDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.EnsureInitialized())

	contacts := s.ListContacts()
	require.Len(t, contacts, 1)
	assert.Equal(t, "27748529340", contacts[0].Phone)
	assert.Equal(t, "admin", contacts[0].Group)

	tpls := s.ListTemplates()
	require.Len(t, tpls, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{tpls[0].ID, tpls[1].ID, tpls[2].ID})
	assert.Equal(t, "greeting", tpls[0].Category)
}

func TestEnsureInitializedIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.EnsureInitialized())

	_, err := s.AddContact("Alice", "0820001111", "clients")
	require.NoError(t, err)

	require.NoError(t, s.EnsureInitialized())
	assert.Len(t, s.ListContacts(), 2)
	assert.Len(t, s.ListTemplates(), 3)
}

func TestAddContactRejectsDuplicateCanonicalPhone(t *testing.T) {
	s, _ := newTestStore(t)

	c, err := s.AddContact("Alice", "0820001111", "clients")
	require.NoError(t, err)
	assert.Equal(t, "27820001111", c.Phone)
	assert.Equal(t, "27", c.CountryCode)

	before, err := os.ReadFile(filepath.Join(s.Dir(), ContactsJSONFile))
	require.NoError(t, err)

	_, err = s.AddContact("Alice2", "27820001111", "general")
	assert.ErrorIs(t, err, ErrDuplicateContact)

	after, err := os.ReadFile(filepath.Join(s.Dir(), ContactsJSONFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, s.ListContacts(), 1)
}

func TestAddContactRejectsShortPhone(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AddContact("Nobody", "abc", "")
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.Empty(t, s.ListContacts())
}

func TestAddContactDefaultGroup(t *testing.T) {
	s, _ := newTestStore(t)

	c, err := s.AddContact("Bob", "+27 83 000 2222", "  ")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGroup, c.Group)
}

func TestListContactsByGroupPreservesOrder(t *testing.T) {
	s, _ := newTestStore(t)

	phones := []string{"0820000001", "0820000002", "0820000003", "0820000004"}
	for i, p := range phones {
		_, err := s.AddContact("member", p, "team")
		require.NoError(t, err, i)
	}
	_, err := s.AddContact("outsider", "0829999999", "other")
	require.NoError(t, err)

	got := s.ListContactsByGroup("team")
	require.Len(t, got, len(phones))
	for i, c := range got {
		assert.Equal(t, "27"+phones[i][1:], c.Phone)
	}

	assert.Empty(t, s.ListContactsByGroup("Team"))
	assert.Empty(t, s.ListContactsByGroup("missing"))
	assert.Equal(t, 5, s.CountContacts())
}

func TestUnreadableFilesReadAsEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	for _, f := range []string{ContactsJSONFile, TemplatesFile, LogFile, SchedulesFile, ClientsFile} {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), f), []byte("{not json"), 0o644))
	}

	assert.Empty(t, s.ListContacts())
	assert.Empty(t, s.ListContactsByGroup("admin"))
	assert.Zero(t, s.CountContacts())
	assert.Empty(t, s.ListTemplates())
	assert.Empty(t, s.LogEntries())
	assert.Zero(t, s.CountToday())
	assert.Empty(t, s.ListSchedules())
	assert.Empty(t, s.ListClients())
}

func TestMutationsDoNotOverwriteCorruptFiles(t *testing.T) {
	s, _ := newTestStore(t)
	path := filepath.Join(s.Dir(), ContactsJSONFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := s.AddContact("Alice", "0820001111", "clients")
	assert.ErrorIs(t, err, ErrCorrupt)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(b))
}

func TestMissingFilesReadAsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"))

	assert.Empty(t, s.ListContacts())
	assert.Empty(t, s.LogEntries())
	assert.Zero(t, s.CountToday())
}

func TestCountToday(t *testing.T) {
	s, clk := newTestStore(t)

	const k = 4
	for i := 0; i < k; i++ {
		require.NoError(t, s.AppendLogEntry(model.SendLogEntry{
			Phone:   "27820001111",
			Message: "hi",
			Type:    model.TypeInstant,
			Status:  model.StatusSent,
		}))
	}
	assert.Equal(t, k, s.CountToday())

	clk.t = clk.t.Add(24 * time.Hour)
	assert.Zero(t, s.CountToday())
}

func TestCountTodayUsesCalendarDate(t *testing.T) {
	s, clk := newTestStore(t)
	clk.t = time.Date(2026, 10, 17, 23, 59, 0, 0, time.Local)

	require.NoError(t, s.AppendLogEntry(model.SendLogEntry{Timestamp: clk.t.Add(-24 * time.Hour), Status: model.StatusSent}))
	require.NoError(t, s.AppendLogEntry(model.SendLogEntry{Timestamp: time.Date(2026, 10, 17, 0, 0, 1, 0, time.Local), Status: model.StatusSent}))
	require.NoError(t, s.AppendLogEntry(model.SendLogEntry{Timestamp: clk.t, Status: model.StatusFailed}))

	assert.Equal(t, 2, s.CountToday())
}

func TestAppendLogEntryKeepsOrderAndFillsID(t *testing.T) {
	s, _ := newTestStore(t)

	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, s.AppendLogEntry(model.SendLogEntry{Phone: "27820001111", Message: msg, Type: model.TypeScheduled, Status: model.StatusSent}))
	}

	logs := s.LogEntries()
	require.Len(t, logs, 3)
	assert.Equal(t, "one", logs[0].Message)
	assert.Equal(t, "three", logs[2].Message)
	assert.Len(t, logs[0].ID, 26)
	assert.NotEqual(t, logs[0].ID, logs[1].ID)
	assert.Equal(t, model.TypeScheduled, logs[1].Type)
}

func TestReadsFilesWrittenWithNaiveISOTimestamps(t *testing.T) {
	s, _ := newTestStore(t)
	contacts := `[
    {"name": "Sky (Admin)", "phone": "27748529340", "country_code": "27", "group": "admin"},
    {"name": "Alice", "phone": "27820001111", "country_code": "27", "group": "clients", "added_at": "2026-10-17T09:00:00.123456"}
]`
	logs := `[
    {"timestamp": "2026-10-17T08:15:42.654321", "phone": "27820001111", "message": "hi", "type": "instant", "status": "sent"},
    {"timestamp": "2026-10-16T22:00:00", "phone": "27820001111", "message": "late", "type": "scheduled", "status": "sent"}
]`
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ContactsJSONFile), []byte(contacts), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), LogFile), []byte(logs), 0o644))

	got := s.ListContacts()
	require.Len(t, got, 2)
	assert.True(t, got[0].AddedAt.IsZero())
	assert.True(t, time.Date(2026, 10, 17, 9, 0, 0, 123456000, time.Local).Equal(got[1].AddedAt))

	entries := s.LogEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, 1, s.CountToday())

	_, err := s.AddContact("Bob", "0830002222", "")
	require.NoError(t, err)
	require.NoError(t, s.AppendLogEntry(model.SendLogEntry{Phone: "27830002222", Message: "yo", Type: model.TypeInstant, Status: model.StatusSent}))

	assert.Len(t, s.ListContacts(), 3)
	assert.Len(t, s.LogEntries(), 3)
	assert.Equal(t, 2, s.CountToday())
}

func TestAppendLogEntryMovesCorruptLogAside(t *testing.T) {
	s, _ := newTestStore(t)
	path := filepath.Join(s.Dir(), LogFile)
	require.NoError(t, os.WriteFile(path, []byte("[{broken"), 0o644))

	require.NoError(t, s.AppendLogEntry(model.SendLogEntry{Phone: "27820001111", Message: "hi", Type: model.TypeInstant, Status: model.StatusSent}))

	logs := s.LogEntries()
	require.Len(t, logs, 1)
	assert.Equal(t, "hi", logs[0].Message)

	aside, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, aside, 1)
	b, err := os.ReadFile(aside[0])
	require.NoError(t, err)
	assert.Equal(t, "[{broken", string(b))
}
