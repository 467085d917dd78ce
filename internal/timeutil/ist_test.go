package timeutil

import (
	"testing"
	"time"
)

func TestDateOfCrossesMidnightInIST(t *testing.T) {
	// 20:00 UTC is 01:30 the next day in IST
	utc := time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC)
	if got := DateOf(utc); got != "2024-04-01" {
		t.Errorf("DateOf = %q", got)
	}
}

func TestDisplay(t *testing.T) {
	if Display(time.Time{}) != "" {
		t.Error("zero time should display empty")
	}
	ts := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	if got := Display(ts); got != "05 Jan 2024, 02:30 PM" {
		t.Errorf("Display = %q", got)
	}
}
