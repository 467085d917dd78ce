package jobcard

import (
	"sort"
	"strings"
	"time"

	"jobcard-backend/internal/models"
)

const (
	DefaultTopCustomers = 8
	DefaultSectionJobs  = 3
	DefaultRecentJobs   = 10
	unknownCustomer     = "Unknown"
)

// SectionCounts are independent counts: a card that has reached several
// sections is counted in each.
type SectionCounts struct {
	HeatTreatment int `json:"heatTreatment"`
	Inspection    int `json:"inspection"`
	Quality       int `json:"quality"`
}

type CustomerCount struct {
	Customer string `json:"customer"`
	Count    int    `json:"count"`
}

type Stats struct {
	Total       int     `json:"total"`
	Pending     int     `json:"pending"`
	Completed   int     `json:"completed"`
	TotalWeight float64 `json:"totalWeight"`
}

func CountBySection(cards []models.JobCard) SectionCounts {
	var c SectionCounts
	for _, card := range cards {
		if card.HasSection(models.SectionHeatTreatment) {
			c.HeatTreatment++
		}
		if card.HasSection(models.SectionInspection) {
			c.Inspection++
		}
		if card.HasSection(models.SectionQuality) {
			c.Quality++
		}
	}
	return c
}

// MonthlyHistogram counts cards per calendar month of year by jobDate.
// Cards with a missing or unparsable date are skipped.
func MonthlyHistogram(cards []models.JobCard, year int) [12]int {
	var months [12]int
	for _, card := range cards {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(card.JobDate))
		if err != nil || d.Year() != year {
			continue
		}
		months[d.Month()-1]++
	}
	return months
}

// TopCustomers ranks customers by card count. Ties keep first-seen order;
// empty names are grouped under "Unknown". Names are compared exactly, so
// "Acme " and "Acme" are different customers.
func TopCustomers(cards []models.JobCard, limit int) []CustomerCount {
	if limit <= 0 {
		limit = DefaultTopCustomers
	}
	index := make(map[string]int)
	var out []CustomerCount
	for _, card := range cards {
		name := card.CustomerName
		if name == "" {
			name = unknownCustomer
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CustomerCount{Customer: name})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TotalWeightOf sums the derived total weight over cards.
func TotalWeightOf(cards []models.JobCard) float64 {
	parts := make([]models.PartEntry, 0, len(cards))
	for _, card := range cards {
		parts = append(parts, models.PartEntry{TotalWeight: TotalWeight(card)})
	}
	return ComputeTotalWeight(parts)
}

func ComputeStats(cards []models.JobCard) Stats {
	s := Stats{Total: len(cards), TotalWeight: TotalWeightOf(cards)}
	for _, card := range cards {
		if card.IsCompleted {
			s.Completed++
		} else {
			s.Pending++
		}
	}
	return s
}

// SectionJobs returns the first limit cards that have reached section.
func SectionJobs(cards []models.JobCard, section models.WorkSection, limit int) []models.JobCard {
	if limit <= 0 {
		limit = DefaultSectionJobs
	}
	var out []models.JobCard
	for _, card := range cards {
		if len(out) == limit {
			break
		}
		if card.HasSection(section) {
			out = append(out, card)
		}
	}
	return out
}

// Recent returns the first limit cards in stored order.
func Recent(cards []models.JobCard, limit int) []models.JobCard {
	if limit <= 0 {
		limit = DefaultRecentJobs
	}
	if len(cards) > limit {
		cards = cards[:limit]
	}
	return append([]models.JobCard(nil), cards...)
}

// Summary is everything the dashboard page shows.
type Summary struct {
	Year         int                                     `json:"year"`
	Stats        Stats                                   `json:"stats"`
	Sections     SectionCounts                           `json:"sections"`
	Monthly      [12]int                                 `json:"monthly"`
	TopCustomers []CustomerCount                         `json:"topCustomers"`
	SectionJobs  map[models.WorkSection][]models.JobCard `json:"sectionJobs"`
	Recent       []models.JobCard                        `json:"recent"`
}

func Summarize(cards []models.JobCard, year int) Summary {
	s := Summary{
		Year:         year,
		Stats:        ComputeStats(cards),
		Sections:     CountBySection(cards),
		Monthly:      MonthlyHistogram(cards, year),
		TopCustomers: TopCustomers(cards, DefaultTopCustomers),
		SectionJobs:  make(map[models.WorkSection][]models.JobCard),
		Recent:       Recent(cards, DefaultRecentJobs),
	}
	for _, sec := range []models.WorkSection{models.SectionHeatTreatment, models.SectionInspection, models.SectionQuality} {
		jobs := SectionJobs(cards, sec, DefaultSectionJobs)
		if jobs == nil {
			jobs = []models.JobCard{}
		}
		s.SectionJobs[sec] = jobs
	}
	if s.TopCustomers == nil {
		s.TopCustomers = []CustomerCount{}
	}
	if s.Recent == nil {
		s.Recent = []models.JobCard{}
	}
	return s
}
