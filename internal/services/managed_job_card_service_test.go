package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/store"
)

func newManagedService(t *testing.T) *ManagedJobCardService {
	t.Helper()
	st := store.New[models.ManagedJobCard](store.NewMemorySlot(), "jobCardMaster")
	svc := NewManagedJobCardService(st, "JHTPL/PROD/F/13")
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("m-%d", n)
	}
	clock := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func managedRequest(title string) models.ManagedJobCardRequest {
	return models.ManagedJobCardRequest{
		JobTitle:     title,
		CustomerName: "Acme",
		ChargeNumber: "CH-7",
		Weight:       1.2345,
		Quantity:     3,
	}
}

func TestManagedCreateDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newManagedService(t)

	c, err := svc.Create(ctx, managedRequest("Carburise gears"), "asha")
	if err != nil {
		t.Fatal(err)
	}
	if c.JCNumber != "JC-2024-001" {
		t.Errorf("jcNumber = %q", c.JCNumber)
	}
	if c.Status != models.JobStatusPending || c.Priority != models.PriorityHigh {
		t.Errorf("defaults = %s / %s", c.Status, c.Priority)
	}
	if c.TotalWeight != 3.704 {
		t.Errorf("totalWeight = %v", c.TotalWeight)
	}
	if c.FormatNumber != "JHTPL/PROD/F/13" || len(c.HeatTreatmentProcess) != 8 {
		t.Errorf("format/process = %q / %d", c.FormatNumber, len(c.HeatTreatmentProcess))
	}
	if len(c.StatusHistory) != 0 {
		t.Errorf("unexpected audit: %+v", c.StatusHistory)
	}

	_, err = svc.Create(ctx, models.ManagedJobCardRequest{JobTitle: "x"}, "asha")
	if !errors.Is(err, ErrManagedValidation) {
		t.Errorf("err = %v", err)
	}
}

func TestManagedNumbering(t *testing.T) {
	ctx := context.Background()
	svc := newManagedService(t)
	a, _ := svc.Create(ctx, managedRequest("a"), "")
	b, _ := svc.Create(ctx, managedRequest("b"), "")
	c, _ := svc.Create(ctx, managedRequest("c"), "")
	if a.JCNumber != "JC-2024-001" || b.JCNumber != "JC-2024-002" || c.JCNumber != "JC-2024-003" {
		t.Fatalf("numbers = %s %s %s", a.JCNumber, b.JCNumber, c.JCNumber)
	}
	if err := svc.Delete(ctx, b.ID, true); err != nil {
		t.Fatal(err)
	}
	next, _ := svc.NextNumber(ctx)
	if next != "JC-2024-004" {
		t.Errorf("next = %s", next)
	}
}

func TestManagedUpdateKeepsNumber(t *testing.T) {
	ctx := context.Background()
	svc := newManagedService(t)
	orig, _ := svc.Create(ctx, managedRequest("a"), "")

	req := managedRequest("renamed")
	req.Priority = models.PriorityLow
	got, err := svc.Update(ctx, orig.ID, req, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.JCNumber != orig.JCNumber || !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("identity changed: %+v", got)
	}
	if got.JobTitle != "renamed" || got.Priority != models.PriorityLow {
		t.Errorf("update not applied: %+v", got)
	}
	if !got.UpdatedAt.After(orig.UpdatedAt) {
		t.Errorf("updatedAt not advanced")
	}
}

func TestManagedStatusAudit(t *testing.T) {
	ctx := context.Background()
	svc := newManagedService(t)
	c, _ := svc.Create(ctx, managedRequest("a"), "")

	c, err := svc.SetStatus(ctx, c.ID, models.JobStatusInProgress, "ravi")
	if err != nil {
		t.Fatal(err)
	}
	c, _ = svc.SetStatus(ctx, c.ID, models.JobStatusInProgress, "ravi")
	if len(c.StatusHistory) != 1 {
		t.Fatalf("history = %+v", c.StatusHistory)
	}
	h := c.StatusHistory[0]
	if h.From != models.JobStatusPending || h.To != models.JobStatusInProgress || h.ChangedBy != "ravi" {
		t.Errorf("entry = %+v", h)
	}
	if _, err := svc.SetStatus(ctx, c.ID, "done", "ravi"); !errors.Is(err, jobcard.ErrInvalidStatus) {
		t.Errorf("err = %v", err)
	}
}

func TestManagedStageUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newManagedService(t)
	c, _ := svc.Create(ctx, managedRequest("a"), "")

	in := "09:30"
	done := models.StageStatusCompleted
	got, err := svc.UpdateStage(ctx, c.ID, "4", models.StageUpdateRequest{InTime: &in, Status: &done})
	if err != nil {
		t.Fatal(err)
	}
	st := got.HeatTreatmentProcess[3]
	if st.ProcessName != "CHT" || st.InTime != "09:30" || st.Status != models.StageStatusCompleted {
		t.Errorf("stage = %+v", st)
	}
	if _, err := svc.UpdateStage(ctx, c.ID, "99", models.StageUpdateRequest{InTime: &in}); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("err = %v", err)
	}
}

func TestManagedProgress(t *testing.T) {
	ctx := context.Background()
	svc := newManagedService(t)
	req := managedRequest("a")
	req.EstimatedHours = 8
	req.ActualHours = 2
	c, _ := svc.Create(ctx, req, "")

	p, err := svc.Progress(ctx, c.ID)
	if err != nil || p.Percent != 25 {
		t.Errorf("progress = %+v, %v", p, err)
	}

	none, _ := svc.Create(ctx, managedRequest("b"), "")
	if _, err := svc.Progress(ctx, none.ID); !errors.Is(err, jobcard.ErrNoEstimate) {
		t.Errorf("err = %v", err)
	}
}

func TestManagedListFilter(t *testing.T) {
	ctx := context.Background()
	svc := newManagedService(t)
	a, _ := svc.Create(ctx, managedRequest("Nitriding"), "")
	svc.Create(ctx, managedRequest("Hardening"), "")
	svc.SetStatus(ctx, a.ID, models.JobStatusCompleted, "")

	list, _ := svc.List(ctx, "", "")
	if len(list) != 2 || list[0].JobTitle != "Hardening" {
		t.Errorf("newest first expected: %+v", list)
	}
	list, _ = svc.List(ctx, "", "completed")
	if len(list) != 1 || list[0].ID != a.ID {
		t.Errorf("status filter = %+v", list)
	}
	list, _ = svc.List(ctx, "hard", "all")
	if len(list) != 1 {
		t.Errorf("search = %+v", list)
	}
	if _, err := svc.List(ctx, "", "bogus"); !errors.Is(err, jobcard.ErrInvalidStatus) {
		t.Errorf("err = %v", err)
	}
}

func TestSortByPriority(t *testing.T) {
	cards := []models.ManagedJobCard{
		{JCNumber: "a", Priority: models.PriorityLow},
		{JCNumber: "b", Priority: models.PriorityUrgent},
		{JCNumber: "c", Priority: models.PriorityHigh},
		{JCNumber: "d", Priority: models.PriorityUrgent},
	}
	SortByPriority(cards)
	var got string
	for _, c := range cards {
		got += c.JCNumber
	}
	if got != "bdca" {
		t.Errorf("order = %s, want bdca", got)
	}
}
