package models

import "time"

// BackupRecord notes one JSON export pushed to object storage.
type BackupRecord struct {
	ID        int64     `json:"id"`
	SlotKey   string    `json:"slotKey"`
	ObjectKey string    `json:"objectKey"`
	Records   int       `json:"records"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}
