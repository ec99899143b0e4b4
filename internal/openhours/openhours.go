// Package openhours answers open/closed questions against Google-style weekday hours text,
// e.g. "Tuesday: 9:00 AM – 5:00 PM" or "Sunday: Closed".
//
// Missing or unparseable data is treated as open so a venue is never hidden for lack of
// information. Spans past midnight are not modelled: the closing hour is an exclusive
// bound on the same calendar day.
package openhours

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const closedMarker = "closed"

var intervalPattern = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*([AP]M)\s*-\s*(\d{1,2}):(\d{2})\s*([AP]M)$`)

// Interval is a same-day opening window in whole 24h hours, close exclusive.
type Interval struct {
	Open  int
	Close int
}

// Contains reports whether hour24 falls inside the window.
func (i Interval) Contains(hour24 int) bool {
	return i.Open <= hour24 && hour24 < i.Close
}

// IsOpenAt reports whether the venue is open on the day now+dayOffset at hour24.
func IsOpenAt(hours []string, now time.Time, dayOffset, hour24 int) bool {
	body, ok := entryFor(hours, targetWeekday(now, dayOffset))
	if !ok {
		return true
	}
	if isClosed(body) {
		return false
	}
	interval, ok := ParseInterval(body)
	if !ok {
		return true
	}
	return interval.Contains(clampHour(hour24))
}

// ClosingTimeLabel returns today's closing time text (for example "5:00 PM") when the venue
// is open now and today is not marked closed.
func ClosingTimeLabel(hours []string, now time.Time, isOpenNow bool) (string, bool) {
	if !isOpenNow {
		return "", false
	}
	body, ok := entryFor(hours, now.Weekday())
	if !ok || isClosed(body) {
		return "", false
	}
	idx := strings.LastIndex(body, "-")
	if idx < 0 {
		return "", false
	}
	label := strings.TrimSpace(body[idx+1:])
	if label == "" {
		return "", false
	}
	return label, true
}

// ParseInterval parses "H:MM AM - H:MM PM" into whole hours. Minutes are ignored.
func ParseInterval(body string) (Interval, bool) {
	m := intervalPattern.FindStringSubmatch(strings.TrimSpace(body))
	if m == nil {
		return Interval{}, false
	}
	open, ok := to24(m[1], m[3])
	if !ok {
		return Interval{}, false
	}
	closing, ok := to24(m[4], m[6])
	if !ok {
		return Interval{}, false
	}
	return Interval{Open: open, Close: closing}, true
}

func to24(hourText, meridiem string) (int, bool) {
	h, err := strconv.Atoi(hourText)
	if err != nil || h < 1 || h > 12 {
		return 0, false
	}
	h %= 12
	if strings.EqualFold(meridiem, "PM") {
		h += 12
	}
	return h, true
}

func targetWeekday(now time.Time, dayOffset int) time.Weekday {
	return now.AddDate(0, 0, dayOffset).Weekday()
}

// entryFor finds the line for a weekday and returns the normalised text after "<Weekday>:".
func entryFor(hours []string, day time.Weekday) (string, bool) {
	prefix := strings.ToLower(day.String()) + ":"
	for _, line := range hours {
		norm := normalize(line)
		if strings.HasPrefix(strings.ToLower(norm), prefix) {
			return strings.TrimSpace(norm[len(prefix):]), true
		}
	}
	return "", false
}

func isClosed(body string) bool {
	return strings.EqualFold(strings.TrimSpace(body), closedMarker)
}

func clampHour(h int) int {
	return min(max(h, 0), 23)
}

// hoursReplacer maps the unicode spaces and dashes Google puts in hours text to ASCII.
var hoursReplacer = strings.NewReplacer(
	"\u202F", " ", // narrow no-break space
	"\u00A0", " ",
	"\u2009", " ", // thin space
	"\u200A", " ",
	"\u2002", " ",
	"\u2003", " ",
	"\uFEFF", "",
	"\u200B", "",
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2212", "-",
)

func normalize(s string) string {
	out := strings.TrimSpace(hoursReplacer.Replace(s))
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return out
}
