package jobcard

import (
	"math"
	"testing"

	"jobcard-backend/internal/models"
)

func TestExtractNumericQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"56 NOS", 56},
		{"NOS", 0},
		{"", 0},
		{"12 + 8", 12},
		{"qty: 007 pcs", 7},
		{"99999999999999999999999", 0},
	}
	for _, tt := range tests {
		if got := ExtractNumericQuantity(tt.in); got != tt.want {
			t.Errorf("ExtractNumericQuantity(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestComputeLineTotal(t *testing.T) {
	tests := []struct {
		weight float64
		qty    string
		want   float64
	}{
		{0.25, "56 NOS", 14},
		{1.1, "3", 3.3},
		{0.1234, "10 pcs", 1.234},
		{2.5, "NOS", 0},
		{math.NaN(), "4", 0},
		{math.Inf(1), "4", 0},
	}
	for _, tt := range tests {
		if got := ComputeLineTotal(tt.weight, tt.qty); got != tt.want {
			t.Errorf("ComputeLineTotal(%v, %q) = %v, want %v", tt.weight, tt.qty, got, tt.want)
		}
	}
}

func TestComputeTotalWeight(t *testing.T) {
	if got := ComputeTotalWeight(nil); got != 0 {
		t.Errorf("empty parts total = %v, want 0", got)
	}

	parts := []models.PartEntry{
		{PartName: "Gear", TotalWeight: 14},
		{PartName: "Shaft", TotalWeight: 3.3},
		{PartName: "Bad", TotalWeight: math.NaN()},
	}
	if got := ComputeTotalWeight(parts); got != 17.3 {
		t.Errorf("total = %v, want 17.3", got)
	}
}

func TestParseWeightFailsSoft(t *testing.T) {
	tests := map[string]float64{
		"1.5":   1.5,
		" 2 ":   2,
		"abc":   0,
		"":      0,
		"NaN":   0,
		"1e400": 0,
	}
	for in, want := range tests {
		if got := ParseWeight(in); got != want {
			t.Errorf("ParseWeight(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatKGS(t *testing.T) {
	if got := FormatKGS(17.3); got != "17.300" {
		t.Errorf("FormatKGS(17.3) = %q", got)
	}
	if got := FormatKGS(math.NaN()); got != "0.000" {
		t.Errorf("FormatKGS(NaN) = %q", got)
	}
}

func TestViewCarriesDerivedTotals(t *testing.T) {
	card := models.JobCard{Parts: []models.PartEntry{
		{PartName: "A", TotalWeight: 1.5},
		{PartName: "B", TotalWeight: 2.25},
	}}
	v := View(card)
	if v.TotalWeight != 3.75 || v.PartCount != 2 {
		t.Errorf("View = %+v", v)
	}
}
