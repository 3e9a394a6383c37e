// Package timeutil normalizes the timestamp representations found in field
// data. Collection documents carry times as epoch seconds, epoch
// milliseconds, or a handful of string layouts depending on which app
// version wrote them; everything downstream works in a single fixed clinic
// offset.
package timeutil

import (
	"strconv"
	"strings"
	"time"
)

// Clinic is the fixed UTC+5:30 offset all normalized timestamps are
// expressed in. Device clocks upload epoch values in UTC; reports are read
// in local clinic time.
var Clinic = time.FixedZone("UTC+05:30", 5*3600+30*60)

// epochMillisThreshold separates second-resolution epoch values from
// millisecond-resolution ones. Values at or below it are seconds.
const epochMillisThreshold = 1e12

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// Normalize converts a raw timestamp value of unknown dynamic type into
// clinic-local time. The second return is false when the value is absent or
// unparseable; callers treat that as "no timestamp", never as an error.
func Normalize(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.In(Clinic), true
	case int:
		return fromEpoch(float64(t))
	case int32:
		return fromEpoch(float64(t))
	case int64:
		return fromEpoch(float64(t))
	case float32:
		return fromEpoch(float64(t))
	case float64:
		return fromEpoch(t)
	case string:
		return fromString(t)
	default:
		return time.Time{}, false
	}
}

func fromEpoch(v float64) (time.Time, bool) {
	if v <= 0 {
		return time.Time{}, false
	}
	var sec, nsec int64
	if v > epochMillisThreshold {
		ms := int64(v)
		sec = ms / 1000
		nsec = (ms % 1000) * int64(time.Millisecond)
	} else {
		sec = int64(v)
		nsec = int64((v - float64(sec)) * float64(time.Second))
	}
	return time.Unix(sec, nsec).In(Clinic), true
}

func fromString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// Numeric strings are epoch values that lost their type in transit.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f)
	}
	for _, layout := range stringLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// Date-only layouts have no zone; pin them to the clinic offset
			// instead of shifting the wall clock.
			if t.Location() == time.UTC && !strings.Contains(layout, "Z07") {
				t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), Clinic)
				return t, true
			}
			return t.In(Clinic), true
		}
	}
	return time.Time{}, false
}

// HoursBetween returns the signed difference to - from in hours.
func HoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}

// DateKey formats a normalized timestamp as a YYYY-MM-DD calendar day in
// clinic time. Used to bucket per-day observations.
func DateKey(t time.Time) string {
	return t.In(Clinic).Format("2006-01-02")
}

// SameClinicDay reports whether two timestamps fall on the same clinic-local
// calendar day.
func SameClinicDay(a, b time.Time) bool {
	ay, am, ad := a.In(Clinic).Date()
	by, bm, bd := b.In(Clinic).Date()
	return ay == by && am == bm && ad == bd
}

// StartOfClinicDay truncates a timestamp to midnight clinic time.
func StartOfClinicDay(t time.Time) time.Time {
	y, m, d := t.In(Clinic).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Clinic)
}
