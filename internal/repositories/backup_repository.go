package repositories

import (
	"context"

	"jobcard-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BackupRepository struct {
	DB *pgxpool.Pool
}

func NewBackupRepository(db *pgxpool.Pool) *BackupRepository {
	return &BackupRepository{DB: db}
}

func (r *BackupRepository) Create(ctx context.Context, b *models.BackupRecord) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO slot_backups (slot_key, object_key, records, size_bytes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		b.SlotKey, b.ObjectKey, b.Records, b.SizeBytes,
	).Scan(&b.ID, &b.CreatedAt)
}

// List returns the latest backups first.
func (r *BackupRepository) List(ctx context.Context, limit int) ([]*models.BackupRecord, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, slot_key, object_key, records, size_bytes, created_at
		 FROM slot_backups ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backups []*models.BackupRecord
	for rows.Next() {
		var b models.BackupRecord
		if err := rows.Scan(&b.ID, &b.SlotKey, &b.ObjectKey, &b.Records, &b.SizeBytes, &b.CreatedAt); err != nil {
			return nil, err
		}
		backups = append(backups, &b)
	}
	return backups, rows.Err()
}
