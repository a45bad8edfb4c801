package entity

import "time"

// Layouts used by every persisted date and time field.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
// time.Parse performs the range check, so 2024-02-30 is rejected.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a 24h HH:MM time.
func ValidTime(s string) bool {
	if len(s) != len(TimeLayout) {
		return false
	}
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}
