package records

import (
	"sort"
	"strings"
	"time"

	"github.com/firstembrace/kmc/internal/platform/timeutil"
)

// Timeline reconciles the two record generations into one per-day view.
// Current-shape babies are built from the flat day and session collections;
// legacy babies from the embedded observation-day list. A day's KMC total is
// the maximum of the recorded daily total and the sum of its session
// durations — the same sessions often back both numbers, so adding them
// would double count.
func Timeline(b *Baby) []TimelineDay {
	if len(b.Days) > 0 {
		return timelineFromDays(b)
	}
	return timelineFromLegacy(b)
}

func timelineFromDays(b *Baby) []TimelineDay {
	out := make([]TimelineDay, 0, len(b.Days))
	for _, da := range b.Days {
		td := TimelineDay{
			DayNumber:  da.DayNumber,
			Date:       da.Date,
			KMCMinutes: da.KMCMinutes,
			Verdict:    dayVerdict(da.VerificationStatus, da.VerificationNotes),
			Comment:    da.VerificationNotes,
		}
		if da.Date != nil {
			var sessionTotal float64
			for _, s := range b.Sessions {
				if s.Start == nil || !timeutil.SameClinicDay(*s.Start, *da.Date) {
					continue
				}
				td.Sessions = append(td.Sessions, s)
				if s.DurationMinutes != nil {
					sessionTotal += *s.DurationMinutes
				}
			}
			if sessionTotal > td.KMCMinutes {
				td.KMCMinutes = sessionTotal
			}
		}
		out = append(out, td)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out
}

func timelineFromLegacy(b *Baby) []TimelineDay {
	out := make([]TimelineDay, 0, len(b.LegacyDays))
	for _, ld := range b.LegacyDays {
		td := TimelineDay{
			DayNumber:  ld.DayNumber,
			Date:       ld.Date,
			KMCMinutes: ld.KMCMinutes,
			Sessions:   ld.Sessions,
			Verdict:    legacyVerdict(ld),
			Comment:    ld.Comment,
		}
		var sessionTotal float64
		for _, s := range ld.Sessions {
			if s.DurationMinutes != nil {
				sessionTotal += *s.DurationMinutes
			}
		}
		if sessionTotal > td.KMCMinutes {
			td.KMCMinutes = sessionTotal
		}
		out = append(out, td)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out
}

// dayVerdict classifies a current-shape day. A reviewer note always marks
// the day incorrect, whatever the status flag says.
func dayVerdict(status, notes string) VerificationVerdict {
	if strings.TrimSpace(notes) != "" {
		return VerdictIncorrect
	}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "correct":
		return VerdictCorrect
	case "incorrect":
		return VerdictIncorrect
	}
	if strings.Contains(strings.ToLower(status), "unable") {
		return VerdictUnableToVerify
	}
	return VerdictNotVerified
}

// legacyVerdict classifies a legacy observation day. Precedence: reviewer
// comment, then the explicit flags, then the free-text verification field.
func legacyVerdict(ld LegacyDay) VerificationVerdict {
	if strings.TrimSpace(ld.Comment) != "" {
		return VerdictIncorrect
	}
	if ld.FilledCorrectly != nil {
		if *ld.FilledCorrectly {
			return VerdictCorrect
		}
		return VerdictIncorrect
	}
	if ld.KMCFilledCorrectly != nil {
		if *ld.KMCFilledCorrectly {
			return VerdictCorrect
		}
		return VerdictIncorrect
	}
	raw := strings.ToLower(ld.RawVerification)
	switch {
	case strings.Contains(raw, "unable"):
		return VerdictUnableToVerify
	case strings.Contains(raw, "incorrect") || strings.Contains(raw, "false"):
		return VerdictIncorrect
	case strings.Contains(raw, "correct") || strings.Contains(raw, "true"):
		return VerdictCorrect
	}
	return VerdictNotVerified
}

// FirstKMC returns the timestamp of the baby's first skin-to-skin contact,
// derived in priority order: earliest flat session start, then the earliest
// flat day with KMC recorded, then the earliest legacy day with KMC (dated
// from the birth date plus the day number).
func FirstKMC(b *Baby) *time.Time {
	var first *time.Time
	for _, s := range b.Sessions {
		if s.Start == nil {
			continue
		}
		if first == nil || s.Start.Before(*first) {
			first = s.Start
		}
	}
	if first != nil {
		return first
	}

	best := -1
	for i, da := range b.Days {
		if da.KMCMinutes <= 0 {
			continue
		}
		if best < 0 || da.DayNumber < b.Days[best].DayNumber {
			best = i
		}
	}
	if best >= 0 {
		da := b.Days[best]
		if da.Date != nil {
			return da.Date
		}
		if b.BirthDate != nil {
			t := b.BirthDate.AddDate(0, 0, da.DayNumber)
			return &t
		}
	}

	if b.BirthDate == nil {
		return nil
	}
	bestDay := -1
	for _, ld := range b.LegacyDays {
		if ld.KMCMinutes <= 0 {
			continue
		}
		if bestDay < 0 || ld.DayNumber < bestDay {
			bestDay = ld.DayNumber
		}
	}
	if bestDay >= 0 {
		t := b.BirthDate.AddDate(0, 0, bestDay)
		return &t
	}
	return nil
}

// TotalKMCMinutes sums the reconciled per-day KMC totals.
func TotalKMCMinutes(b *Baby) float64 {
	var total float64
	for _, td := range Timeline(b) {
		total += td.KMCMinutes
	}
	return total
}

// HasAnyKMC reports whether the baby has at least one day with KMC recorded.
func HasAnyKMC(b *Baby) bool {
	for _, td := range Timeline(b) {
		if td.KMCMinutes > 0 {
			return true
		}
	}
	return false
}

// DailyKMCMinutes buckets the baby's KMC minutes by clinic calendar day.
// Session durations accumulate; recorded daily totals then take the maximum
// with the accumulated value for their day.
func DailyKMCMinutes(b *Baby) map[string]float64 {
	out := make(map[string]float64)
	for _, s := range b.Sessions {
		if s.Start == nil || s.DurationMinutes == nil {
			continue
		}
		out[timeutil.DateKey(*s.Start)] += *s.DurationMinutes
	}
	for _, ld := range b.LegacyDays {
		for _, s := range ld.Sessions {
			if s.Start == nil || s.DurationMinutes == nil {
				continue
			}
			out[timeutil.DateKey(*s.Start)] += *s.DurationMinutes
		}
	}
	for _, da := range b.Days {
		if da.Date == nil {
			continue
		}
		k := timeutil.DateKey(*da.Date)
		if da.KMCMinutes > out[k] {
			out[k] = da.KMCMinutes
		}
	}
	if len(b.Days) == 0 {
		for _, ld := range b.LegacyDays {
			if ld.Date == nil {
				continue
			}
			k := timeutil.DateKey(*ld.Date)
			if ld.KMCMinutes > out[k] {
				out[k] = ld.KMCMinutes
			}
		}
	}
	return out
}
