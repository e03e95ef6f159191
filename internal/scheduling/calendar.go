package scheduling

import (
	"strings"
	"time"
)

// Workdays expands [start, end] into the dates on which exams may be held,
// skipping any date whose weekday matches one of the excluded tags. Tags are
// compared on their first three letters, so "Sat", "SATURDAY" and "sat" are
// equivalent.
func Workdays(start, end time.Time, excluded []string) []time.Time {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil
	}

	skip := make(map[string]struct{}, len(excluded))
	for _, tag := range excluded {
		if key := weekdayKey(tag); key != "" {
			skip[key] = struct{}{}
		}
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if _, ok := skip[weekdayKey(d.Weekday().String())]; ok {
			continue
		}
		days = append(days, d)
	}
	return days
}

func weekdayKey(tag string) string {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if len(tag) < 3 {
		return ""
	}
	return tag[:3]
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
