package metrics

import (
	"github.com/firstembrace/kmc/internal/domain/records"
	"github.com/firstembrace/kmc/internal/platform/timeutil"
)

// InitiationStats summarizes time-to-first-KMC for one group of babies.
type InitiationStats struct {
	Count        int     `json:"count"`
	AvgTimeHours float64 `json:"avg_time_hours"`
	Within24h    int     `json:"within_24h"`
	Within48h    int     `json:"within_48h"`
	Pct24h       float64 `json:"pct_24h"`
	Pct48h       float64 `json:"pct_48h"`
}

// KMCInitiation is the initiation bundle: the whole cohort plus the
// inborn/outborn split.
type KMCInitiation struct {
	Overall InitiationStats `json:"overall"`
	Inborn  InitiationStats `json:"inborn"`
	Outborn InitiationStats `json:"outborn"`
}

// Initiation computes time from birth to first skin-to-skin contact. Babies
// without a UID, a birth date, or any recorded KMC contribute nothing.
func Initiation(ds *Dataset) KMCInitiation {
	var all, inborn, outborn []float64

	for i := range ds.Babies {
		b := &ds.Babies[i]
		if b.UID == "" || b.BirthDate == nil {
			continue
		}
		first := records.FirstKMC(b)
		if first == nil {
			continue
		}
		hours := timeutil.HoursBetween(*b.BirthDate, *first)
		all = append(all, hours)
		if records.Inborn(b) {
			inborn = append(inborn, hours)
		} else {
			outborn = append(outborn, hours)
		}
	}

	return KMCInitiation{
		Overall: initiationStats(all),
		Inborn:  initiationStats(inborn),
		Outborn: initiationStats(outborn),
	}
}

func initiationStats(hours []float64) InitiationStats {
	var s InitiationStats
	s.Count = len(hours)
	if s.Count == 0 {
		return s
	}
	var total float64
	for _, h := range hours {
		total += h
		if h <= 24 {
			s.Within24h++
		}
		if h <= 48 {
			s.Within48h++
		}
	}
	s.AvgTimeHours = round2(total / float64(s.Count))
	s.Pct24h = pct(s.Within24h, s.Count)
	s.Pct48h = pct(s.Within48h, s.Count)
	return s
}
