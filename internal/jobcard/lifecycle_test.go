package jobcard

import (
	"errors"
	"testing"
	"time"

	"jobcard-backend/internal/models"
)

func TestNextJCNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		year     int
		want     string
	}{
		{"first of year", nil, 2024, "JC-2024-001"},
		{"gap is not refilled", []string{"JC-2024-001", "JC-2024-003"}, 2024, "JC-2024-004"},
		{"other years ignored", []string{"JC-2023-041", "JC-2024-002"}, 2024, "JC-2024-003"},
		{"junk ignored", []string{"JC-2024-abc", "", "X-2024-009"}, 2024, "JC-2024-001"},
		{"past three digits", []string{"JC-2024-999"}, 2024, "JC-2024-1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextJCNumber(tt.existing, tt.year); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		actual, estimated, want float64
	}{
		{4, 8, 50},
		{12, 8, 100},
		{0, 8, 0},
		{-1, 8, 0},
	}
	for _, tt := range tests {
		got, err := Progress(tt.actual, tt.estimated)
		if err != nil || got != tt.want {
			t.Errorf("Progress(%v, %v) = %v, %v; want %v", tt.actual, tt.estimated, got, err, tt.want)
		}
	}
	if _, err := Progress(3, 0); !errors.Is(err, ErrNoEstimate) {
		t.Errorf("zero estimate err = %v", err)
	}
}

func TestApplyStatusAudits(t *testing.T) {
	card := models.ManagedJobCard{Status: models.JobStatusPending}
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	changed, err := ApplyStatus(&card, models.JobStatusInProgress, "ravi", at)
	if err != nil || !changed {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	// any status may follow any other
	if _, err := ApplyStatus(&card, models.JobStatusPending, "ravi", at); err != nil {
		t.Fatal(err)
	}
	changed, err = ApplyStatus(&card, models.JobStatusPending, "ravi", at)
	if err != nil || changed {
		t.Errorf("same status: changed=%v err=%v", changed, err)
	}
	if len(card.StatusHistory) != 2 {
		t.Fatalf("history = %+v", card.StatusHistory)
	}
	h := card.StatusHistory[0]
	if h.From != models.JobStatusPending || h.To != models.JobStatusInProgress || h.ChangedBy != "ravi" {
		t.Errorf("entry = %+v", h)
	}

	if _, err := ApplyStatus(&card, "finished", "ravi", at); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("invalid status err = %v", err)
	}
	if card.Status != models.JobStatusPending {
		t.Errorf("status changed on error: %q", card.Status)
	}
}

func TestParseVocabulary(t *testing.T) {
	if _, err := ParsePriority("urgent"); err != nil {
		t.Error(err)
	}
	if _, err := ParsePriority("asap"); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("err = %v", err)
	}
	if _, err := ParseStageStatus("on-hold"); !errors.Is(err, ErrInvalidStageStatus) {
		t.Errorf("err = %v", err)
	}
	if PriorityRank(models.PriorityUrgent) <= PriorityRank(models.PriorityLow) {
		t.Error("urgent should rank above low")
	}
	if !IsTerminal(models.JobStatusCancelled) || IsTerminal(models.JobStatusOnHold) {
		t.Error("terminal statuses wrong")
	}
}

func TestDefaultProcessSteps(t *testing.T) {
	steps := DefaultProcessSteps()
	if len(steps) != 8 || steps[0].ID != "1" || steps[7].ProcessName != "Shot Blasting" {
		t.Errorf("steps = %+v", steps)
	}
	for _, s := range steps {
		if s.Status != models.StageStatusPending {
			t.Errorf("step %s status = %q", s.ID, s.Status)
		}
	}
}

func TestNormalizeStageTimings(t *testing.T) {
	got := NormalizeStageTimings([]models.StageTiming{
		{Stage: models.StageTempering, In: "14:00"},
		{Stage: "quench", In: "x"},
	})
	if len(got) != len(models.ProcessStages) {
		t.Fatalf("len = %d", len(got))
	}
	for i, st := range got {
		if st.Stage != models.ProcessStages[i] {
			t.Errorf("row %d stage = %q", i, st.Stage)
		}
	}
	if st, _ := (models.JobCard{HeatTreatmentProcess: got}).Stage(models.StageTempering); st.In != "14:00" {
		t.Errorf("tempering = %+v", st)
	}
}

func TestDeriveSectionsIsSticky(t *testing.T) {
	card := models.JobCard{QMSignature: "QM", Sections: []models.WorkSection{models.SectionHeatTreatment}}
	got := DeriveSections(card)
	want := []models.WorkSection{models.SectionHeatTreatment, models.SectionQuality}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("sections = %v, want %v", got, want)
	}
}
