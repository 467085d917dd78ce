package jobcard

import (
	"testing"
	"time"

	"jobcard-backend/internal/models"
)

func sectioned(customer, date string, sections ...models.WorkSection) models.JobCard {
	return models.JobCard{CustomerName: customer, JobDate: date, Sections: sections}
}

func TestCountBySectionOverlaps(t *testing.T) {
	cards := []models.JobCard{
		sectioned("A", "", models.SectionHeatTreatment, models.SectionInspection, models.SectionQuality),
		sectioned("B", "", models.SectionInspection),
		sectioned("C", ""),
	}
	got := CountBySection(cards)
	want := SectionCounts{HeatTreatment: 1, Inspection: 2, Quality: 1}
	if got != want {
		t.Errorf("counts = %+v, want %+v", got, want)
	}
}

func TestMonthlyHistogram(t *testing.T) {
	cards := []models.JobCard{
		sectioned("A", "2024-01-15"),
		sectioned("A", "2024-01-31"),
		sectioned("A", "2024-12-01"),
		sectioned("A", "2023-01-10"),
		sectioned("A", "15/01/2024"),
		sectioned("A", ""),
	}
	got := MonthlyHistogram(cards, 2024)
	if got[0] != 2 || got[11] != 1 {
		t.Errorf("histogram = %v", got)
	}
	sum := 0
	for _, n := range got {
		sum += n
	}
	if sum != 3 {
		t.Errorf("counted %d cards, want 3", sum)
	}
}

func TestTopCustomersStableTies(t *testing.T) {
	cards := []models.JobCard{
		sectioned("Beta", ""),
		sectioned("Alpha", ""),
		sectioned("", ""),
		sectioned("Alpha", ""),
		sectioned("Beta", ""),
		sectioned("", ""),
		sectioned("Gamma", ""),
		sectioned("Gamma ", ""),
		sectioned("  ", ""),
	}
	got := TopCustomers(cards, 6)
	want := []CustomerCount{{"Beta", 2}, {"Alpha", 2}, {"Unknown", 2}, {"Gamma", 1}, {"Gamma ", 1}, {"  ", 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStatsAndRecent(t *testing.T) {
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	cards := make([]models.JobCard, 12)
	for i := range cards {
		cards[i] = models.JobCard{
			ID:          string(rune('a' + i)),
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
			IsCompleted: i%3 == 0,
			Parts:       []models.PartEntry{{PartName: "P", TotalWeight: 1.5}},
		}
	}
	s := ComputeStats(cards)
	if s.Total != 12 || s.Completed != 4 || s.Pending != 8 || s.TotalWeight != 18 {
		t.Errorf("stats = %+v", s)
	}
	cards[0], cards[11] = cards[11], cards[0]
	recent := Recent(cards, 0)
	if len(recent) != DefaultRecentJobs || recent[0].ID != "l" || recent[9].ID != "j" {
		t.Errorf("recent = %d, first %q, last %q", len(recent), recent[0].ID, recent[9].ID)
	}
	recent[0].ID = "changed"
	if cards[0].ID != "l" {
		t.Error("Recent shares its backing array with the input")
	}
}

func TestSummarizeSectionJobs(t *testing.T) {
	cards := []models.JobCard{
		{ID: "1", Sections: []models.WorkSection{models.SectionQuality}},
		{ID: "2", Sections: []models.WorkSection{models.SectionQuality}},
		{ID: "3", Sections: []models.WorkSection{models.SectionQuality}},
		{ID: "4", Sections: []models.WorkSection{models.SectionQuality}},
	}
	s := Summarize(cards, 2024)
	if got := s.SectionJobs[models.SectionQuality]; len(got) != 3 || got[2].ID != "3" {
		t.Errorf("quality jobs = %+v", got)
	}
	if got := s.SectionJobs[models.SectionInspection]; got == nil || len(got) != 0 {
		t.Errorf("inspection jobs = %#v", got)
	}
}
