// Package period holds the calendar arithmetic behind billing periods.
// Reference periods and due dates are always YYYY-MM-DD strings.
package period

import (
	"fmt"
	"time"
)

// ISO is the layout every stored date uses.
const ISO = "2006-01-02"

// Month returns the YYYY-MM key of t.
func Month(t time.Time) string {
	return t.Format("2006-01")
}

// Year returns the YYYY key of t.
func Year(t time.Time) string {
	return t.Format("2006")
}

// FirstOfMonth returns the reference period of the month containing t.
func FirstOfMonth(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-01", t.Year(), int(t.Month()))
}

// FirstOfYear returns the reference period of an annual charge.
func FirstOfYear(year int) string {
	return fmt.Sprintf("%04d-01-01", year)
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClipDay reduces day to the last day of the month when it overflows and
// raises it to 1 when it is not positive.
func ClipDay(year int, month time.Month, day int) int {
	if day < 1 {
		return 1
	}
	if last := DaysIn(year, month); day > last {
		return last
	}
	return day
}

// DueDate returns the date in t's month falling on the clipped day.
func DueDate(t time.Time, day int) string {
	d := ClipDay(t.Year(), t.Month(), day)
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), d)
}

// ParseISO parses a YYYY-MM-DD date.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(ISO, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// MonthLabel formats t as MM/YYYY for human-facing descriptions.
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%02d/%04d", int(t.Month()), t.Year())
}
