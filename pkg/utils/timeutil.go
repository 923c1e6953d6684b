package utils

import "time"

// JST is the Japan Standard Time location (UTC+9).
var JST = loadJST()

func loadJST() *time.Location {
	if loc, err := time.LoadLocation("Asia/Tokyo"); err == nil {
		return loc
	}
	// No tz database on the host. JST has no DST, so a fixed zone is exact.
	return time.FixedZone("JST", 9*60*60)
}

// NowJST returns the current time in JST.
func NowJST() time.Time {
	return time.Now().In(JST)
}

// ToJST converts a time.Time to JST.
func ToJST(t time.Time) time.Time {
	return t.In(JST)
}

// ParseDateJST parses a date string in "2006-01-02" format and returns it in JST.
func ParseDateJST(dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, JST)
}

// FormatDateJST formats a time.Time to "2006-01-02" in JST.
func FormatDateJST(t time.Time) string {
	return t.In(JST).Format("2006-01-02")
}

// FormatDateTimeJST formats a time.Time to "2006-01-02 15:04:05 JST".
func FormatDateTimeJST(t time.Time) string {
	return t.In(JST).Format("2006-01-02 15:04:05 JST")
}
