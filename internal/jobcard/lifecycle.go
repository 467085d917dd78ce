package jobcard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"jobcard-backend/internal/models"
)

var (
	ErrInvalidStatus      = errors.New("invalid job status")
	ErrInvalidPriority    = errors.New("invalid job priority")
	ErrInvalidStageStatus = errors.New("invalid stage status")
	ErrNoEstimate         = errors.New("estimated hours must be greater than zero")
)

var statuses = []models.JobStatus{
	models.JobStatusPending,
	models.JobStatusInProgress,
	models.JobStatusCompleted,
	models.JobStatusOnHold,
	models.JobStatusCancelled,
}

var priorities = []models.JobPriority{
	models.PriorityLow,
	models.PriorityMedium,
	models.PriorityHigh,
	models.PriorityUrgent,
}

func ParseStatus(s string) (models.JobStatus, error) {
	for _, st := range statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func ParsePriority(s string) (models.JobPriority, error) {
	for _, p := range priorities {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

func ParseStageStatus(s string) (models.StageStatus, error) {
	switch models.StageStatus(s) {
	case models.StageStatusPending, models.StageStatusInProgress, models.StageStatusCompleted:
		return models.StageStatus(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStageStatus, s)
}

// IsTerminal reports whether a status ends the workflow.
func IsTerminal(s models.JobStatus) bool {
	return s == models.JobStatusCompleted || s == models.JobStatusCancelled
}

// PriorityRank orders priorities for display; it drives no workflow.
func PriorityRank(p models.JobPriority) int {
	for i, have := range priorities {
		if have == p {
			return i
		}
	}
	return -1
}

// ApplyStatus sets a new status on the card. Any status may follow any
// other; each real change is appended to the audit trail. Setting the
// current status again changes nothing and reports false.
func ApplyStatus(card *models.ManagedJobCard, to models.JobStatus, by string, at time.Time) (bool, error) {
	if _, err := ParseStatus(string(to)); err != nil {
		return false, err
	}
	if card.Status == to {
		return false, nil
	}
	card.StatusHistory = append(card.StatusHistory, models.StatusChange{
		From:      card.Status,
		To:        to,
		ChangedBy: by,
		ChangedAt: at,
	})
	card.Status = to
	return true, nil
}

const jcPrefix = "JC-"

// NextJCNumber returns JC-<year>-<NNN> where NNN is one past the highest
// number already used in that year. Gaps are never refilled.
func NextJCNumber(existing []string, year int) string {
	prefix := fmt.Sprintf("%s%d-", jcPrefix, year)
	max := 0
	for _, jc := range existing {
		if !strings.HasPrefix(jc, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(jc, prefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}

// Progress is actual over estimated hours as a percentage, capped at 100.
func Progress(actualHours, estimatedHours float64) (float64, error) {
	if estimatedHours <= 0 || math.IsNaN(estimatedHours) {
		return 0, ErrNoEstimate
	}
	if actualHours < 0 || math.IsNaN(actualHours) {
		actualHours = 0
	}
	return math.Min(actualHours/estimatedHours, 1) * 100, nil
}

// DefaultProcessNames is the heat treatment route printed on every managed card.
var DefaultProcessNames = []string{
	"Charge Preparation",
	"Pre Washing",
	"Pre Heating",
	"CHT",
	"Post Washing",
	"As Quench Hardness",
	"Tempering",
	"Shot Blasting",
}

func DefaultProcessSteps() []models.ProcessStep {
	steps := make([]models.ProcessStep, len(DefaultProcessNames))
	for i, name := range DefaultProcessNames {
		steps[i] = models.ProcessStep{
			ID:          strconv.Itoa(i + 1),
			ProcessName: name,
			Status:      models.StageStatusPending,
		}
	}
	return steps
}

// DefaultStageTimings returns the eight heat treatment rows of a job card, empty.
func DefaultStageTimings() []models.StageTiming {
	rows := make([]models.StageTiming, len(models.ProcessStages))
	for i, st := range models.ProcessStages {
		rows[i] = models.StageTiming{Stage: st}
	}
	return rows
}

// NormalizeStageTimings returns the eight stages in canonical order, keeping
// any values recorded under a known stage and dropping unknown ones.
func NormalizeStageTimings(in []models.StageTiming) []models.StageTiming {
	out := DefaultStageTimings()
	for _, st := range in {
		for i := range out {
			if out[i].Stage == st.Stage {
				out[i] = st
			}
		}
	}
	return out
}

// DeriveSections lists the work sections a card has reached judging by its
// operator and sign-off fields, merged with sections already recorded.
func DeriveSections(card models.JobCard) []models.WorkSection {
	var out []models.WorkSection
	add := func(s models.WorkSection, reached bool) {
		if reached || card.HasSection(s) {
			out = append(out, s)
		}
	}
	add(models.SectionHeatTreatment, strings.TrimSpace(card.HeatTreatmentOperator) != "")
	add(models.SectionInspection, strings.TrimSpace(card.IncomingOperator) != "")
	add(models.SectionQuality, strings.TrimSpace(card.QMSignature) != "")
	return out
}
