// Package jobcard holds the job card domain rules: weight aggregation, the
// draft form controller, the status vocabulary and the dashboard figures.
// Everything here is pure; persistence lives in the store package.
package jobcard

import (
	"math"
	"strconv"
	"strings"

	"jobcard-backend/internal/models"

	"github.com/shopspring/decimal"
)

// KGSPlaces is the weighing precision used for every KGS figure.
const KGSPlaces = 3

// ExtractNumericQuantity returns the first run of decimal digits in text as
// an integer. "56 NOS" is 56; text without digits is 0.
func ExtractNumericQuantity(text string) int {
	start := strings.IndexFunc(text, isDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(text) && isDigit(rune(text[end])) {
		end++
	}
	n, err := strconv.Atoi(text[start:end])
	if err != nil {
		// A run too long for int reads as 0, like any other unusable
		// quantity, rather than a huge count.
		return 0
	}
	return n
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// ComputeLineTotal is weight times the numeric quantity, rounded to KGS precision.
func ComputeLineTotal(weight float64, quantityText string) float64 {
	if !finite(weight) {
		return 0
	}
	qty := ExtractNumericQuantity(quantityText)
	total := decimal.NewFromFloat(weight).Mul(decimal.NewFromInt(int64(qty)))
	return total.Round(KGSPlaces).InexactFloat64()
}

// ComputeTotalWeight sums the part totals. Non-finite values count as 0.
func ComputeTotalWeight(parts []models.PartEntry) float64 {
	sum := decimal.Zero
	for _, p := range parts {
		if !finite(p.TotalWeight) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(p.TotalWeight))
	}
	return sum.InexactFloat64()
}

// ParseWeight reads a KGS input field. Unparsable input is 0.
func ParseWeight(text string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || !finite(v) {
		return 0
	}
	return v
}

// FormatKGS renders a weight with three decimals.
func FormatKGS(v float64) string {
	if !finite(v) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(KGSPlaces)
}

// RecomputeParts rewrites every part's total from its weight and quantity.
func RecomputeParts(parts []models.PartEntry) []models.PartEntry {
	out := make([]models.PartEntry, len(parts))
	for i, p := range parts {
		p.TotalWeight = ComputeLineTotal(p.Weight, p.Quantity)
		out[i] = p
	}
	return out
}

// TotalWeight is the derived total weight of a job card.
func TotalWeight(card models.JobCard) float64 {
	return ComputeTotalWeight(card.Parts)
}

// View attaches the derived totals to a card.
func View(card models.JobCard) models.JobCardView {
	return models.JobCardView{
		JobCard:     card,
		TotalWeight: TotalWeight(card),
		PartCount:   len(card.Parts),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
