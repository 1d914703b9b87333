package schedule

import "time"

// Pay dates are the 15th and the last day of every month. All date math
// here works on midnight-local values so comparisons are day-granular.

// lastDayOfMonth returns the final calendar day of t's month.
func lastDayOfMonth(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// IsPayDate reports whether t falls on the 15th or the last day of its
// month.
func IsPayDate(t time.Time) bool {
	return t.Day() == 15 || t.Day() == lastDayOfMonth(t).Day()
}

// PayDates enumerates every pay date in [from, to], inclusive on both
// ends. from and to are truncated to their calendar dates.
func PayDates(from, to time.Time) []time.Time {
	from = midnight(from)
	to = midnight(to)

	var dates []time.Time
	cursor := from
	for !cursor.After(to) {
		next := nextOnOrAfter(cursor)
		if next.After(to) {
			break
		}
		dates = append(dates, next)
		cursor = next.AddDate(0, 0, 1)
	}
	return dates
}

// NextPayDate returns the first pay date strictly after t's date.
func NextPayDate(t time.Time) time.Time {
	return nextOnOrAfter(midnight(t).AddDate(0, 0, 1))
}

// nextOnOrAfter jumps to the next pay date on or after t (midnight).
func nextOnOrAfter(t time.Time) time.Time {
	for {
		last := lastDayOfMonth(t)
		fifteenth := time.Date(t.Year(), t.Month(), 15, 0, 0, 0, 0, t.Location())
		switch {
		case !t.After(fifteenth):
			return fifteenth
		case !t.After(last):
			return last
		default:
			t = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
		}
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
