package timeutil

import "time"

// IST is the Indian Standard Time location (UTC+5:30). The shop floor
// dates job cards in IST regardless of where the server runs.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// Today is the IST calendar date as YYYY-MM-DD.
func Today() string {
	return Now().Format(DateLayout)
}

// DateOf formats t as an IST calendar date.
func DateOf(t time.Time) string {
	return t.In(IST).Format(DateLayout)
}

// Display renders t for printed documents, or "" for the zero time.
func Display(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(IST).Format(DisplayLayout)
}
