package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/metrics"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/timeutil"

	"github.com/google/uuid"
)

var ErrDraftNotFound = errors.New("draft not found or expired")

// FieldUpdate is one path/value pair of a draft PATCH.
type FieldUpdate struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

type Draft struct {
	ID string `json:"id"`
	jobcard.DraftState
}

type draftEntry struct {
	form    *jobcard.Form
	touched time.Time
}

// DraftService keeps job card forms in memory between requests. Drafts
// that sit untouched longer than the idle window are dropped.
type DraftService struct {
	JobCards *JobCardService

	header jobcard.Header
	idle   time.Duration
	now    func() time.Time
	newID  func() string

	mu     sync.Mutex
	drafts map[string]*draftEntry
}

func NewDraftService(jobCards *JobCardService, header jobcard.Header, idle time.Duration) *DraftService {
	return &DraftService{
		JobCards: jobCards,
		header:   header,
		idle:     idle,
		now:      time.Now,
		newID:    uuid.NewString,
		drafts:   make(map[string]*draftEntry),
	}
}

// Open starts a new empty draft dated today in IST.
func (s *DraftService) Open() Draft {
	form := jobcard.NewForm(s.header)
	form.StartNew(timeutil.ToIST(s.now()))
	return s.add(form)
}

// OpenEdit starts a draft pre-filled from a stored card.
func (s *DraftService) OpenEdit(ctx context.Context, cardID string) (Draft, error) {
	card, err := s.JobCards.Store.Get(ctx, cardID)
	if err != nil {
		return Draft{}, err
	}
	form := jobcard.NewForm(s.header)
	form.StartEdit(card)
	return s.add(form), nil
}

func (s *DraftService) add(form *jobcard.Form) Draft {
	id := s.newID()
	s.mu.Lock()
	s.drafts[id] = &draftEntry{form: form, touched: s.now()}
	metrics.ActiveDrafts.Set(float64(len(s.drafts)))
	s.mu.Unlock()
	return Draft{ID: id, DraftState: form.State()}
}

// with runs fn on the draft under the service lock.
func (s *DraftService) with(id string, fn func(*jobcard.Form) error) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.drafts[id]
	if !ok || s.expired(e) {
		return Draft{}, ErrDraftNotFound
	}
	e.touched = s.now()
	if err := fn(e.form); err != nil {
		return Draft{}, err
	}
	return Draft{ID: id, DraftState: e.form.State()}, nil
}

func (s *DraftService) expired(e *draftEntry) bool {
	return s.idle > 0 && s.now().Sub(e.touched) > s.idle
}

func (s *DraftService) Get(id string) (Draft, error) {
	return s.with(id, func(*jobcard.Form) error { return nil })
}

func (s *DraftService) Discard(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return ErrDraftNotFound
	}
	delete(s.drafts, id)
	metrics.ActiveDrafts.Set(float64(len(s.drafts)))
	return nil
}

// AddPart appends a part row and returns its row number with the draft.
func (s *DraftService) AddPart(id string) (int, Draft, error) {
	var row int
	d, err := s.with(id, func(f *jobcard.Form) error {
		row = f.AddPartRow()
		return nil
	})
	return row, d, err
}

func (s *DraftService) RemovePart(id string, row int) (Draft, error) {
	return s.with(id, func(f *jobcard.Form) error {
		return f.RemovePartRow(row)
	})
}

// UpdateFields applies updates in order and stops at the first failure;
// updates before it stay applied.
func (s *DraftService) UpdateFields(id string, updates []FieldUpdate) (Draft, error) {
	return s.with(id, func(f *jobcard.Form) error {
		for _, u := range updates {
			if err := f.UpdateField(u.Path, u.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *DraftService) Preview(id string) (jobcard.Preview, error) {
	d, err := s.Get(id)
	if err != nil {
		return jobcard.Preview{}, err
	}
	return d.Preview, nil
}

// Submit validates and stores the draft. The draft is discarded only once
// the card is saved.
func (s *DraftService) Submit(ctx context.Context, id string) (models.JobCard, error) {
	var card models.JobCard
	var editing bool
	if _, err := s.with(id, func(f *jobcard.Form) error {
		var err error
		_, editing = f.EditingID()
		card, err = f.Submit(s.now().UTC(), s.newID())
		return err
	}); err != nil {
		return models.JobCard{}, err
	}

	saved, err := s.JobCards.SaveSubmitted(ctx, card, editing)
	if err != nil {
		return models.JobCard{}, err
	}
	s.Discard(id)
	log.Printf("[Drafts] Draft %s saved as job card %s", id, saved.ID)
	return saved, nil
}

// Sweep drops expired drafts and reports how many went.
func (s *DraftService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.drafts {
		if s.expired(e) {
			delete(s.drafts, id)
			n++
		}
	}
	metrics.ActiveDrafts.Set(float64(len(s.drafts)))
	return n
}

// StartJanitor sweeps expired drafts every interval until ctx ends.
func (s *DraftService) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.Printf("[Drafts] Expired %d idle draft(s)", n)
				}
			}
		}
	}()
}
