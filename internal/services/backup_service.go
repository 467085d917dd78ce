package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"jobcard-backend/internal/config"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/timeutil"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client used for backups.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// BackupLog records uploaded backups. Implemented by the Postgres and
// SQLite backup repositories.
type BackupLog interface {
	Create(ctx context.Context, b *models.BackupRecord) error
	List(ctx context.Context, limit int) ([]*models.BackupRecord, error)
}

// BackupService uploads the JSON export of the job card list to
// S3-compatible storage.
type BackupService struct {
	JobCards *JobCardService
	Client   ObjectPutter
	Log      BackupLog
	Bucket   string
	Prefix   string

	now func() time.Time
}

// NewBackupService returns a service whose Run fails with
// config.ErrBackupNotConfigured when client is nil.
func NewBackupService(jobCards *JobCardService, client ObjectPutter, backupLog BackupLog, bucket, prefix string) *BackupService {
	return &BackupService{
		JobCards: jobCards,
		Client:   client,
		Log:      backupLog,
		Bucket:   bucket,
		Prefix:   prefix,
		now:      time.Now,
	}
}

func (s *BackupService) objectKey(t time.Time) string {
	return s.Prefix + "manufacturing-job-cards-" + timeutil.ToIST(t).Format("2006-01-02-150405") + ".json"
}

// Run uploads one backup and records it.
func (s *BackupService) Run(ctx context.Context) (*models.BackupRecord, error) {
	if s.Client == nil {
		return nil, config.ErrBackupNotConfigured
	}
	data, _, err := s.JobCards.Export(ctx)
	if err != nil {
		return nil, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("count export records: %w", err)
	}

	now := s.now()
	key := s.objectKey(now)
	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("upload backup: %w", err)
	}

	rec := &models.BackupRecord{
		SlotKey:   s.JobCards.Store.Key(),
		ObjectKey: key,
		Records:   len(records),
		SizeBytes: int64(len(data)),
		CreatedAt: now.UTC(),
	}
	if s.Log != nil {
		if err := s.Log.Create(ctx, rec); err != nil {
			log.Printf("[Backup] Uploaded %s but failed to record it: %v", key, err)
		}
	}
	log.Printf("[Backup] Uploaded %d job cards to %s (%d bytes)", rec.Records, key, rec.SizeBytes)
	return rec, nil
}

func (s *BackupService) History(ctx context.Context, limit int) ([]*models.BackupRecord, error) {
	if s.Log == nil {
		return []*models.BackupRecord{}, nil
	}
	return s.Log.List(ctx, limit)
}
