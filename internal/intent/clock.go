package intent

import (
	"fmt"
	"strings"
	"time"
)

// datetimeLayouts are the shapes the extraction service is allowed to return.
// Offsets win when present; naive timestamps are anchored in the configured
// location.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Canonicalize turns the service's datetime string into an absolute instant
// anchored to ref. A result up to a week before ref is taken as a weekday the
// model pinned to the current week ("monday at 10" said on a Wednesday) and
// rolls forward to the next occurrence strictly after ref.
func Canonicalize(raw string, ref time.Time, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}

	var t time.Time
	var err error
	for _, layout := range datetimeLayouts {
		t, err = time.ParseInLocation(layout, raw, loc)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized datetime %q", raw)
	}

	return rollForward(t, ref), nil
}

// rollForward advances t by whole weeks until it is strictly after ref, but
// only when the deficit is less than one week. Older instants are genuinely
// in the past and are left for validation to reject.
func rollForward(t, ref time.Time) time.Time {
	if t.After(ref) {
		return t
	}
	if ref.Sub(t) >= 7*24*time.Hour {
		return t
	}
	for !t.After(ref) {
		t = t.AddDate(0, 0, 7)
	}
	return t
}
