package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/firstembrace/kmc/internal/domain/records"
)

// Program eligibility thresholds: low birth weight or prematurity qualifies
// a baby even when it was never formally enrolled.
const (
	eligibleWeightGrams      = 2500
	eligibleGestationalWeeks = 36
)

// Eligible reports whether a baby belongs in the program denominator:
// enrolled, under the weight threshold, or at or under the gestational-age
// threshold. Unparseable values qualify nothing.
func Eligible(b *records.Baby) bool {
	if b.InProgram {
		return true
	}
	if b.BirthWeight != nil {
		if w, err := strconv.ParseFloat(strings.TrimSpace(*b.BirthWeight), 64); err == nil && w < eligibleWeightGrams {
			return true
		}
	}
	if b.GestationalAge != nil {
		if ga, err := strconv.ParseFloat(strings.TrimSpace(*b.GestationalAge), 64); err == nil && ga <= eligibleGestationalWeeks {
			return true
		}
	}
	return false
}

func eligibleBabies(ds *Dataset) []*records.Baby {
	var out []*records.Baby
	dedup := records.NewDeduper()
	for i := range ds.Babies {
		b := &ds.Babies[i]
		if !dedup.First(b.UID) || !Eligible(b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// stayEnd is when a baby stopped accruing facility days: its discharge
// date, or the anchor time while still admitted.
func stayEnd(b *records.Baby, now time.Time) time.Time {
	if b.Discharged && b.LastDischargeDate != nil {
		return *b.LastDischargeDate
	}
	return now
}

// babyDays counts whole facility days from birth to discharge-or-now, never
// less than one: a baby admitted and discharged the same day still spent a
// day under care.
func babyDays(b *records.Baby, now time.Time) int {
	if b.BirthDate == nil {
		return 0
	}
	days := int(stayEnd(b, now).Sub(*b.BirthDate).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}
