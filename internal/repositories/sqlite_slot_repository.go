package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobcard-backend/internal/models"
	"jobcard-backend/internal/store"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS storage_slots (
	slot_key   TEXT PRIMARY KEY,
	payload    TEXT NOT NULL DEFAULT '[]',
	version    INTEGER NOT NULL DEFAULT 1,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS slot_backups (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	slot_key   TEXT NOT NULL,
	object_key TEXT NOT NULL,
	records    INTEGER NOT NULL,
	size_bytes INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
`

// OpenSQLite opens a single-file database and creates the slot tables.
// path may be ":memory:".
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one connection: writes serialise and :memory: stays a single database
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return db, nil
}

// fixed width so that text order is time order
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteSlotRepository stores slots in a local SQLite file.
type SQLiteSlotRepository struct {
	DB *sql.DB
}

func NewSQLiteSlotRepository(db *sql.DB) *SQLiteSlotRepository {
	return &SQLiteSlotRepository{DB: db}
}

func (r *SQLiteSlotRepository) Load(ctx context.Context, key string) ([]byte, int64, error) {
	var payload string
	var version int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT payload, version FROM storage_slots WHERE slot_key = ?`, key,
	).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return []byte(payload), version, nil
}

func (r *SQLiteSlotRepository) Save(ctx context.Context, key string, payload []byte, expected int64) (int64, error) {
	now := time.Now().UTC().Format(sqliteTimeLayout)
	var res sql.Result
	var err error
	if expected == 0 {
		res, err = r.DB.ExecContext(ctx,
			`INSERT OR IGNORE INTO storage_slots (slot_key, payload, version, updated_at) VALUES (?, ?, 1, ?)`,
			key, string(payload), now)
	} else {
		res, err = r.DB.ExecContext(ctx,
			`UPDATE storage_slots SET payload = ?, version = version + 1, updated_at = ?
			 WHERE slot_key = ? AND version = ?`,
			string(payload), now, key, expected)
	}
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, store.ErrVersionConflict
	}
	return expected + 1, nil
}

// SQLiteBackupRepository is the SQLite twin of BackupRepository.
type SQLiteBackupRepository struct {
	DB *sql.DB
}

func NewSQLiteBackupRepository(db *sql.DB) *SQLiteBackupRepository {
	return &SQLiteBackupRepository{DB: db}
}

func (r *SQLiteBackupRepository) Create(ctx context.Context, b *models.BackupRecord) error {
	created := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO slot_backups (slot_key, object_key, records, size_bytes, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.SlotKey, b.ObjectKey, b.Records, b.SizeBytes, created.Format(sqliteTimeLayout))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	b.CreatedAt = created
	return nil
}

func (r *SQLiteBackupRepository) List(ctx context.Context, limit int) ([]*models.BackupRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, slot_key, object_key, records, size_bytes, created_at
		 FROM slot_backups ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backups []*models.BackupRecord
	for rows.Next() {
		var b models.BackupRecord
		var created string
		if err := rows.Scan(&b.ID, &b.SlotKey, &b.ObjectKey, &b.Records, &b.SizeBytes, &created); err != nil {
			return nil, err
		}
		b.CreatedAt, _ = time.Parse(sqliteTimeLayout, created)
		backups = append(backups, &b)
	}
	return backups, rows.Err()
}
