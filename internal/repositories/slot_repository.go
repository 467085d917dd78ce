package repositories

import (
	"context"
	"errors"

	"jobcard-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SlotRepository stores slots in the storage_slots table.
type SlotRepository struct {
	DB *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{DB: db}
}

func (r *SlotRepository) Load(ctx context.Context, key string) ([]byte, int64, error) {
	var payload string
	var version int64
	err := r.DB.QueryRow(ctx,
		`SELECT payload, version FROM storage_slots WHERE slot_key=$1`, key,
	).Scan(&payload, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return []byte(payload), version, nil
}

// Save writes payload if the stored version still equals expected. A slot
// that does not exist yet has version 0.
func (r *SlotRepository) Save(ctx context.Context, key string, payload []byte, expected int64) (int64, error) {
	var version int64
	var err error
	if expected == 0 {
		err = r.DB.QueryRow(ctx,
			`INSERT INTO storage_slots (slot_key, payload, version, updated_at)
			 VALUES ($1, $2, 1, NOW())
			 ON CONFLICT (slot_key) DO NOTHING
			 RETURNING version`,
			key, string(payload),
		).Scan(&version)
	} else {
		err = r.DB.QueryRow(ctx,
			`UPDATE storage_slots
			 SET payload=$2, version=version+1, updated_at=NOW()
			 WHERE slot_key=$1 AND version=$3
			 RETURNING version`,
			key, string(payload), expected,
		).Scan(&version)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, store.ErrVersionConflict
	}
	return version, err
}
