package repository

import (
	"testing"
	"time"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryKey(t *testing.T) {
	ts := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	withID := model.SendLogEntry{ID: "01JABCDEF", Timestamp: ts, Phone: "27821234567", Message: "hi"}
	assert.Equal(t, "01JABCDEF", EntryKey(withID))

	legacy := model.SendLogEntry{Timestamp: ts, Phone: "27821234567", Message: "hi"}
	k1 := EntryKey(legacy)
	assert.Len(t, k1, 26)
	assert.Equal(t, k1, EntryKey(legacy))

	// same instant in another zone is the same entry
	legacy.Timestamp = ts.In(time.FixedZone("SAST", 2*3600))
	assert.Equal(t, k1, EntryKey(legacy))

	legacy.Message = "hello"
	assert.NotEqual(t, k1, EntryKey(legacy))
}

func TestMigrationSQL(t *testing.T) {
	for _, driver := range []string{"clickhouse", "mysql"} {
		ddl, err := MigrationSQL(driver)
		require.NoError(t, err, driver)
		assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS send_log")
	}

	_, err := MigrationSQL("sqlite")
	assert.Error(t, err)
}

func TestNewSendLogRepositoryDriver(t *testing.T) {
	_, err := NewSendLogRepository(nil, "postgres")
	assert.Error(t, err)

	r, err := NewSendLogRepository(nil, "mysql")
	require.NoError(t, err)
	n, err := r.InsertBatch(t.Context(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
