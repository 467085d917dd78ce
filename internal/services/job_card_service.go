package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/store"
	"jobcard-backend/internal/timeutil"

	"github.com/google/uuid"
)

var ErrInvalidImport = errors.New("import must be a JSON array of job cards")

// JobCardService owns the manufacturingJobCards list.
type JobCardService struct {
	Store  *store.Store[models.JobCard]
	Header jobcard.Header

	now   func() time.Time
	newID func() string
}

func NewJobCardService(st *store.Store[models.JobCard], header jobcard.Header) *JobCardService {
	return &JobCardService{
		Store:  st,
		Header: header,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
}

// List returns every card matching query in stored order. The query is
// matched against customer, charge no, SQF no and part names.
func (s *JobCardService) List(ctx context.Context, query string) ([]models.JobCardView, error) {
	cards, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]models.JobCardView, 0, len(cards))
	for _, c := range cards {
		if !matchesCard(c, query) {
			continue
		}
		views = append(views, jobcard.View(c))
	}
	return views, nil
}

func matchesCard(c models.JobCard, query string) bool {
	fields := []string{c.CustomerName, c.ChargeNo, c.SqfNo}
	for _, p := range c.Parts {
		fields = append(fields, p.PartName)
	}
	return containsFold(query, fields...)
}

func (s *JobCardService) Get(ctx context.Context, id string) (models.JobCardView, error) {
	c, err := s.Store.Get(ctx, id)
	if err != nil {
		return models.JobCardView{}, err
	}
	return jobcard.View(c), nil
}

// Create stores a card posted whole rather than built through a draft.
func (s *JobCardService) Create(ctx context.Context, card models.JobCard) (models.JobCard, error) {
	card = s.normalize(card)
	if err := jobcard.Validate(card); err != nil {
		return models.JobCard{}, err
	}
	card.ID = s.newID()
	card.CreatedAt = s.now()
	card.IsCompleted = false
	card.Sections = nil
	card.Sections = jobcard.DeriveSections(card)
	if err := s.insert(ctx, card); err != nil {
		return models.JobCard{}, err
	}
	return card, nil
}

// Update replaces the editable content of a card. Id, createdAt and the
// completion flag always come from the stored record.
func (s *JobCardService) Update(ctx context.Context, id string, card models.JobCard) (models.JobCard, error) {
	card = s.normalize(card)
	if err := jobcard.Validate(card); err != nil {
		return models.JobCard{}, err
	}
	var out models.JobCard
	err := retryOnConflict(ctx, func() error {
		var err error
		out, err = s.Store.Modify(ctx, id, func(existing *models.JobCard) error {
			next := card.Clone()
			next.ID = existing.ID
			next.CreatedAt = existing.CreatedAt
			next.IsCompleted = existing.IsCompleted
			next.Sections = existing.Sections
			next.Sections = jobcard.DeriveSections(next)
			*existing = next
			return nil
		})
		return err
	})
	return out, err
}

// SaveSubmitted stores a card produced by a draft submit, inserting or
// replacing depending on whether the draft edited an existing card. An
// edit takes id, createdAt and the completion flag from the stored record,
// not from the snapshot the draft was opened with, and keeps its sections.
func (s *JobCardService) SaveSubmitted(ctx context.Context, card models.JobCard, editing bool) (models.JobCard, error) {
	if !editing {
		if err := s.insert(ctx, card); err != nil {
			return models.JobCard{}, err
		}
		return card, nil
	}
	var out models.JobCard
	err := retryOnConflict(ctx, func() error {
		var err error
		out, err = s.Store.Modify(ctx, card.ID, func(existing *models.JobCard) error {
			next := card.Clone()
			next.ID = existing.ID
			next.CreatedAt = existing.CreatedAt
			next.IsCompleted = existing.IsCompleted
			next.Sections = mergeSections(existing.Sections, card.Sections)
			next.Sections = jobcard.DeriveSections(next)
			*existing = next
			return nil
		})
		return err
	})
	return out, err
}

func mergeSections(a, b []models.WorkSection) []models.WorkSection {
	out := append([]models.WorkSection(nil), a...)
	for _, sec := range b {
		found := false
		for _, have := range out {
			if have == sec {
				found = true
				break
			}
		}
		if !found {
			out = append(out, sec)
		}
	}
	return out
}

func (s *JobCardService) insert(ctx context.Context, card models.JobCard) error {
	return retryOnConflict(ctx, func() error {
		_, err := s.Store.Create(ctx, card)
		return err
	})
}

func (s *JobCardService) Delete(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	return retryOnConflict(ctx, func() error {
		_, err := s.Store.Delete(ctx, id)
		return err
	})
}

// Clear removes every job card.
func (s *JobCardService) Clear(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	return retryOnConflict(ctx, func() error {
		return s.Store.Clear(ctx)
	})
}

// SetCompletion is the only way a card's isCompleted flag changes.
func (s *JobCardService) SetCompletion(ctx context.Context, id string, completed bool) (models.JobCard, error) {
	var out models.JobCard
	err := retryOnConflict(ctx, func() error {
		var err error
		out, err = s.Store.Modify(ctx, id, func(c *models.JobCard) error {
			c.IsCompleted = completed
			return nil
		})
		return err
	})
	return out, err
}

// Export renders the whole list as indented JSON with its download name.
func (s *JobCardService) Export(ctx context.Context) ([]byte, string, error) {
	cards, err := s.Store.List(ctx)
	if err != nil {
		return nil, "", err
	}
	data, err := json.MarshalIndent(cards, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode export: %w", err)
	}
	return data, ExportFilename(s.now()), nil
}

func ExportFilename(t time.Time) string {
	return "manufacturing-job-cards-" + timeutil.DateOf(t) + ".json"
}

// Import replaces the whole list with data. Nothing is written unless the
// top level is an array and every element decodes.
func (s *JobCardService) Import(ctx context.Context, data []byte) (int, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return 0, ErrInvalidImport
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	cards := make([]models.JobCard, 0, len(raw))
	for i, r := range raw {
		var c models.JobCard
		if err := json.Unmarshal(r, &c); err != nil {
			return 0, fmt.Errorf("%w: record %d: %v", ErrInvalidImport, i, err)
		}
		cards = append(cards, s.normalizeImported(c))
	}
	err := retryOnConflict(ctx, func() error {
		_, err := s.Store.ReplaceAll(ctx, cards)
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(cards), nil
}

// normalize prepares posted content: parts trimmed to named rows with
// recomputed totals, the eight stages in order, header stamped.
func (s *JobCardService) normalize(c models.JobCard) models.JobCard {
	c = c.Clone()
	parts := []models.PartEntry{}
	for _, p := range c.Parts {
		if strings.TrimSpace(p.PartName) == "" {
			continue
		}
		parts = append(parts, p)
	}
	c.Parts = jobcard.RecomputeParts(parts)
	c.HeatTreatmentProcess = jobcard.NormalizeStageTimings(c.HeatTreatmentProcess)
	c.CompanyName = s.Header.CompanyName
	c.CompanyAddress = s.Header.CompanyAddress
	c.FormatNo = s.Header.FormatNo
	c.RevNo = s.Header.RevNo
	c.RevDate = s.Header.RevDate
	return c
}

// normalizeImported repairs a record from an export file without touching
// what it already carries, so exporting an import gives the same file.
func (s *JobCardService) normalizeImported(c models.JobCard) models.JobCard {
	if c.ID == "" {
		c.ID = s.newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	if c.Parts == nil {
		c.Parts = []models.PartEntry{}
	}
	c.Parts = jobcard.RecomputeParts(c.Parts)
	c.HeatTreatmentProcess = jobcard.NormalizeStageTimings(c.HeatTreatmentProcess)
	c.Sections = jobcard.DeriveSections(c)
	return c
}
