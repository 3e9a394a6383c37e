package metrics

import (
	"github.com/firstembrace/kmc/internal/domain/records"
	"github.com/firstembrace/kmc/internal/platform/timeutil"
)

// RegistrationTimeliness measures how quickly inborn babies were entered
// into the system after birth. Outborn babies are excluded: their birth
// happened outside the facility, so the gap says nothing about ward
// workflow.
type RegistrationTimeliness struct {
	TotalInborn   int     `json:"total_inborn"`
	WithTimes     int     `json:"with_times"`
	Within12h     int     `json:"within_12h"`
	Within24h     int     `json:"within_24h"`
	Pct12h        float64 `json:"pct_12h"`
	Pct24h        float64 `json:"pct_24h"`
	AvgDelayHours float64 `json:"avg_delay_hours"`
}

// Registration computes registration timeliness over the resolved babies.
// Negative delays (registration clocked before birth) stay in the counts:
// they are clock-skew signals the dashboard should surface, not discard.
func Registration(ds *Dataset) RegistrationTimeliness {
	var out RegistrationTimeliness
	var totalDelay float64

	for i := range ds.Babies {
		b := &ds.Babies[i]
		if !records.Inborn(b) {
			continue
		}
		out.TotalInborn++
		if b.BirthDate == nil || b.RegisteredAt == nil {
			continue
		}
		out.WithTimes++
		diff := timeutil.HoursBetween(*b.BirthDate, *b.RegisteredAt)
		totalDelay += diff
		if diff <= 24 {
			out.Within24h++
		}
		if diff <= 12 {
			out.Within12h++
		}
	}

	out.Pct12h = pct(out.Within12h, out.TotalInborn)
	out.Pct24h = pct(out.Within24h, out.TotalInborn)
	if out.WithTimes > 0 {
		out.AvgDelayHours = round2(totalDelay / float64(out.WithTimes))
	}
	return out
}
