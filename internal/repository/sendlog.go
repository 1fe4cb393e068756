package repository

import (
	"context"
	"crypto/sha1"
	"embed"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/jmehdipour/wa-assistant/internal/model"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrations embed.FS

const insertChunk = 500

// SendLogRepository mirrors the local send log into a SQL sink (send_log table).
type SendLogRepository interface {
	Migrate(ctx context.Context) error
	// InsertBatch writes entries not yet present in the sink and reports how many it wrote.
	InsertBatch(ctx context.Context, entries []model.SendLogEntry) (int, error)
	List(ctx context.Context, phone string, status model.MessageStatus, limit, offset int) ([]model.SendLogEntry, error)
}

type SendLogRepositoryImpl struct {
	db     *sqlx.DB
	driver string
}

func NewSendLogRepository(db *sqlx.DB, driver string) (*SendLogRepositoryImpl, error) {
	if _, ok := insertQueries[driver]; !ok {
		return nil, fmt.Errorf("send_log: unsupported driver %q", driver)
	}
	return &SendLogRepositoryImpl{db: db, driver: driver}, nil
}

var _ SendLogRepository = (*SendLogRepositoryImpl)(nil)

var insertQueries = map[string]string{
	// ReplacingMergeTree collapses re-exported rows on merge
	"clickhouse": `INSERT INTO send_log (id, ts, phone, message, type, status, error)`,
	"mysql": `
		INSERT IGNORE INTO send_log (id, ts, phone, message, type, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
}

func (r *SendLogRepositoryImpl) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	t, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}
	return t.Commit()
}

// Migrate creates the send_log table for the connected driver.
func (r *SendLogRepositoryImpl) Migrate(ctx context.Context) error {
	ddl, err := MigrationSQL(r.driver)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create send_log: %w", err)
	}
	return nil
}

// MigrationSQL returns the send_log DDL for driver.
func MigrationSQL(driver string) (string, error) {
	b, err := migrations.ReadFile("migrations/" + driver + ".sql")
	if err != nil {
		return "", fmt.Errorf("send_log: no migration for driver %q", driver)
	}
	return string(b), nil
}

// EntryKey is the sink primary key of e. Entries written before ids were assigned get
// a stable content hash so repeated exports stay idempotent.
func EntryKey(e model.SendLogEntry) string {
	if e.ID != "" {
		return e.ID
	}
	h := sha1.New()
	h.Write([]byte(e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000")))
	h.Write([]byte{0})
	h.Write([]byte(e.Phone))
	h.Write([]byte{0})
	h.Write([]byte(e.Message))
	return "h" + hex.EncodeToString(h.Sum(nil))[:25]
}

func (r *SendLogRepositoryImpl) existingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	query, args, err := sqlx.In(`SELECT id FROM send_log WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var found []string
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(found))
	for _, id := range found {
		out[id] = true
	}
	return out, nil
}

func (r *SendLogRepositoryImpl) InsertBatch(ctx context.Context, entries []model.SendLogEntry) (int, error) {
	written := 0
	for start := 0; start < len(entries); start += insertChunk {
		chunk := entries[start:min(start+insertChunk, len(entries))]

		ids := make([]string, len(chunk))
		for i, e := range chunk {
			ids[i] = EntryKey(e)
		}
		seen, err := r.existingIDs(ctx, ids)
		if err != nil {
			return written, fmt.Errorf("send_log lookup: %w", err)
		}

		n := 0
		err = r.withTx(ctx, func(tx *sqlx.Tx) error {
			stmt, err := tx.PreparexContext(ctx, insertQueries[r.driver])
			if err != nil {
				return err
			}
			defer stmt.Close()

			for i, e := range chunk {
				if seen[ids[i]] {
					continue
				}
				seen[ids[i]] = true
				if _, err := stmt.ExecContext(ctx,
					ids[i], e.Timestamp.UTC(), e.Phone, e.Message, e.Type.String(), e.Status.String(), e.Error,
				); err != nil {
					return fmt.Errorf("entry %s: %w", ids[i], err)
				}
				n++
			}
			return nil
		})
		if err != nil {
			return written, fmt.Errorf("send_log insert: %w", err)
		}
		written += n
	}
	return written, nil
}

// List returns sink rows newest first.
func (r *SendLogRepositoryImpl) List(ctx context.Context, phone string, status model.MessageStatus, limit, offset int) ([]model.SendLogEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT id, ts AS timestamp, phone, message, type, status, error
		FROM send_log
		WHERE 1 = 1
	`
	var args []any

	if status != "" {
		q += " AND status = ?"
		args = append(args, status.String())
	}
	if phone != "" {
		q += " AND phone = ?"
		args = append(args, phone)
	}

	q += " ORDER BY ts DESC LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(offset)

	var rows []model.SendLogEntry
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
