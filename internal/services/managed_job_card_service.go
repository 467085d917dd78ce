package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/store"
	"jobcard-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrManagedValidation = errors.New("invalid managed job card")
	ErrUnknownStage      = errors.New("unknown process stage")
)

// ManagedJobCardService owns the jobCardMaster list.
type ManagedJobCardService struct {
	Store    *store.Store[models.ManagedJobCard]
	FormatNo string

	now   func() time.Time
	newID func() string
}

func NewManagedJobCardService(st *store.Store[models.ManagedJobCard], formatNo string) *ManagedJobCardService {
	return &ManagedJobCardService{
		Store:    st,
		FormatNo: formatNo,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// List filters by free text and status. An empty status or "all" keeps
// every status. Results are newest first.
func (s *ManagedJobCardService) List(ctx context.Context, search, status string) ([]models.ManagedJobCard, error) {
	var want models.JobStatus
	if status != "" && status != "all" {
		st, err := jobcard.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		want = st
	}
	cards, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ManagedJobCard, 0, len(cards))
	for _, c := range cards {
		if want != "" && c.Status != want {
			continue
		}
		if !containsFold(search, c.JCNumber, c.JobTitle, c.CustomerName, c.PartName, c.ChargeNumber, c.AssignedTo) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// SortByPriority orders cards urgent first, keeping the existing order
// within a priority.
func SortByPriority(cards []models.ManagedJobCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		return jobcard.PriorityRank(cards[i].Priority) > jobcard.PriorityRank(cards[j].Priority)
	})
}

func (s *ManagedJobCardService) Get(ctx context.Context, id string) (models.ManagedJobCard, error) {
	return s.Store.Get(ctx, id)
}

// NextNumber previews the number the next created card will get.
func (s *ManagedJobCardService) NextNumber(ctx context.Context) (string, error) {
	cards, err := s.Store.List(ctx)
	if err != nil {
		return "", err
	}
	return s.nextNumber(cards), nil
}

func (s *ManagedJobCardService) nextNumber(cards []models.ManagedJobCard) string {
	numbers := make([]string, len(cards))
	for i, c := range cards {
		numbers[i] = c.JCNumber
	}
	return jobcard.NextJCNumber(numbers, timeutil.ToIST(s.now()).Year())
}

func validateManaged(req models.ManagedJobCardRequest) error {
	var missing []string
	if strings.TrimSpace(req.JobTitle) == "" {
		missing = append(missing, "jobTitle")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		missing = append(missing, "customerName")
	}
	if strings.TrimSpace(req.ChargeNumber) == "" {
		missing = append(missing, "chargeNumber")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrManagedValidation, strings.Join(missing, ", "))
	}
	if req.Weight < 0 || req.Quantity < 0 || req.FixtureWeight < 0 {
		return fmt.Errorf("%w: weights and quantity cannot be negative", ErrManagedValidation)
	}
	if req.EstimatedHours < 0 || req.ActualHours < 0 {
		return fmt.Errorf("%w: hours cannot be negative", ErrManagedValidation)
	}
	if req.Priority != "" {
		if _, err := jobcard.ParsePriority(string(req.Priority)); err != nil {
			return err
		}
	}
	if req.Status != "" {
		if _, err := jobcard.ParseStatus(string(req.Status)); err != nil {
			return err
		}
	}
	for _, st := range req.HeatTreatmentProcess {
		if st.Status == "" {
			continue
		}
		if _, err := jobcard.ParseStageStatus(string(st.Status)); err != nil {
			return err
		}
	}
	return nil
}

// lineWeight is weight times quantity at KGS precision.
func lineWeight(weight float64, quantity int) float64 {
	return decimal.NewFromFloat(weight).Mul(decimal.NewFromInt(int64(quantity))).Round(jobcard.KGSPlaces).InexactFloat64()
}

func applyRequest(c *models.ManagedJobCard, req models.ManagedJobCardRequest) {
	c.ChargeNumber = req.ChargeNumber
	c.JobTitle = req.JobTitle
	c.JobDescription = req.JobDescription
	c.CustomerID = req.CustomerID
	c.CustomerName = req.CustomerName
	c.PartID = req.PartID
	c.PartName = req.PartName
	c.PartNumber = req.PartNumber
	c.PONumber = req.PONumber
	c.SQFNumber = req.SQFNumber
	c.Weight = req.Weight
	c.Quantity = req.Quantity
	c.TotalWeight = lineWeight(req.Weight, req.Quantity)
	c.FixtureWeight = req.FixtureWeight
	c.AssignedTo = req.AssignedTo
	c.StartDate = req.StartDate
	c.EndDate = req.EndDate
	if req.Priority != "" {
		c.Priority = req.Priority
	}
	c.EstimatedHours = req.EstimatedHours
	c.ActualHours = req.ActualHours
	c.Notes = req.Notes
	c.IncomingInspection = req.IncomingInspection
	if len(req.HeatTreatmentProcess) > 0 {
		c.HeatTreatmentProcess = append([]models.ProcessStep(nil), req.HeatTreatmentProcess...)
		for i := range c.HeatTreatmentProcess {
			if c.HeatTreatmentProcess[i].Status == "" {
				c.HeatTreatmentProcess[i].Status = models.StageStatusPending
			}
		}
	}
	c.FinalInspection = req.FinalInspection
	if req.FormatNumber != "" {
		c.FormatNumber = req.FormatNumber
	}
	c.RevisionNumber = req.RevisionNumber
	c.RevisionDate = req.RevisionDate
}

// Create numbers and stores a new card. A requested status other than
// pending is recorded in the audit trail.
func (s *ManagedJobCardService) Create(ctx context.Context, req models.ManagedJobCardRequest, by string) (models.ManagedJobCard, error) {
	if err := validateManaged(req); err != nil {
		return models.ManagedJobCard{}, err
	}
	var out models.ManagedJobCard
	err := retryOnConflict(ctx, func() error {
		cards, err := s.Store.List(ctx)
		if err != nil {
			return err
		}
		now := s.now()
		c := models.ManagedJobCard{
			ID:                   s.newID(),
			JCNumber:             s.nextNumber(cards),
			Status:               models.JobStatusPending,
			Priority:             models.PriorityHigh,
			FormatNumber:         s.FormatNo,
			HeatTreatmentProcess: jobcard.DefaultProcessSteps(),
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		applyRequest(&c, req)
		if req.Status != "" {
			if _, err := jobcard.ApplyStatus(&c, req.Status, by, now); err != nil {
				return err
			}
		}
		if _, err := s.Store.Create(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// Update replaces the editable fields; id, jcNumber and createdAt are kept.
func (s *ManagedJobCardService) Update(ctx context.Context, id string, req models.ManagedJobCardRequest, by string) (models.ManagedJobCard, error) {
	if err := validateManaged(req); err != nil {
		return models.ManagedJobCard{}, err
	}
	return s.modify(ctx, id, func(c *models.ManagedJobCard, now time.Time) error {
		applyRequest(c, req)
		if req.Status != "" {
			if _, err := jobcard.ApplyStatus(c, req.Status, by, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ManagedJobCardService) SetStatus(ctx context.Context, id string, status models.JobStatus, by string) (models.ManagedJobCard, error) {
	if _, err := jobcard.ParseStatus(string(status)); err != nil {
		return models.ManagedJobCard{}, err
	}
	return s.modify(ctx, id, func(c *models.ManagedJobCard, now time.Time) error {
		from := c.Status
		changed, err := jobcard.ApplyStatus(c, status, by, now)
		if changed && jobcard.IsTerminal(from) && !jobcard.IsTerminal(status) {
			log.Printf("[Managed] %s reopened from %s by %q", c.JCNumber, from, by)
		}
		return err
	})
}

// UpdateStage patches one process step; nil request fields stay as they are.
func (s *ManagedJobCardService) UpdateStage(ctx context.Context, id, stageID string, req models.StageUpdateRequest) (models.ManagedJobCard, error) {
	if req.Status != nil {
		if _, err := jobcard.ParseStageStatus(string(*req.Status)); err != nil {
			return models.ManagedJobCard{}, err
		}
	}
	return s.modify(ctx, id, func(c *models.ManagedJobCard, _ time.Time) error {
		for i := range c.HeatTreatmentProcess {
			st := &c.HeatTreatmentProcess[i]
			if st.ID != stageID {
				continue
			}
			if req.InTime != nil {
				st.InTime = *req.InTime
			}
			if req.OutTime != nil {
				st.OutTime = *req.OutTime
			}
			if req.OperatorSign != nil {
				st.OperatorSign = *req.OperatorSign
			}
			if req.Remarks != nil {
				st.Remarks = *req.Remarks
			}
			if req.Status != nil {
				st.Status = *req.Status
			}
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnknownStage, stageID)
	})
}

func (s *ManagedJobCardService) modify(ctx context.Context, id string, fn func(*models.ManagedJobCard, time.Time) error) (models.ManagedJobCard, error) {
	var out models.ManagedJobCard
	err := retryOnConflict(ctx, func() error {
		var err error
		out, err = s.Store.Modify(ctx, id, func(c *models.ManagedJobCard) error {
			now := s.now()
			if err := fn(c, now); err != nil {
				return err
			}
			c.UpdatedAt = now
			return nil
		})
		return err
	})
	return out, err
}

func (s *ManagedJobCardService) Delete(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	return retryOnConflict(ctx, func() error {
		_, err := s.Store.Delete(ctx, id)
		return err
	})
}

func (s *ManagedJobCardService) Progress(ctx context.Context, id string) (models.ProgressResponse, error) {
	c, err := s.Store.Get(ctx, id)
	if err != nil {
		return models.ProgressResponse{}, err
	}
	pct, err := jobcard.Progress(c.ActualHours, c.EstimatedHours)
	if err != nil {
		return models.ProgressResponse{}, err
	}
	return models.ProgressResponse{
		ID:             c.ID,
		JCNumber:       c.JCNumber,
		EstimatedHours: c.EstimatedHours,
		ActualHours:    c.ActualHours,
		Percent:        pct,
	}, nil
}
