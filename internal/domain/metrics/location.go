package metrics

import (
	"sort"
	"time"

	"github.com/firstembrace/kmc/internal/domain/records"
	"github.com/firstembrace/kmc/internal/platform/timeutil"
)

// LocationKMC is the average KMC practice for one hospital ward.
type LocationKMC struct {
	Hospital        string  `json:"hospital"`
	Location        string  `json:"location"`
	Babies          int     `json:"babies"`
	ObservationDays int     `json:"observation_days"`
	TotalMinutes    float64 `json:"total_minutes"`
	AvgHoursPerDay  float64 `json:"avg_hours_per_day"`
	AvgHoursPerBaby float64 `json:"avg_hours_per_baby"`
}

// AverageKMCByLocation sums the positive per-day KMC minutes falling inside
// the window for each hospital/ward pair. Wards with no observed days are
// omitted.
func AverageKMCByLocation(ds *Dataset, from, to *time.Time) []LocationKMC {
	type acc struct {
		babies  int
		days    int
		minutes float64
	}
	groups := make(map[[2]string]*acc)

	for i := range ds.Babies {
		b := &ds.Babies[i]
		if b.UID == "" {
			continue
		}
		var days int
		var minutes float64
		for dateKey, m := range records.DailyKMCMinutes(b) {
			if m <= 0 {
				continue
			}
			if !dateKeyInWindow(dateKey, from, to) {
				continue
			}
			days++
			minutes += m
		}
		if days == 0 {
			continue
		}
		key := [2]string{b.Hospital, locationOf(b)}
		g := groups[key]
		if g == nil {
			g = &acc{}
			groups[key] = g
		}
		g.babies++
		g.days += days
		g.minutes += minutes
	}

	out := make([]LocationKMC, 0, len(groups))
	for key, g := range groups {
		out = append(out, LocationKMC{
			Hospital:        key[0],
			Location:        key[1],
			Babies:          g.babies,
			ObservationDays: g.days,
			TotalMinutes:    round1(g.minutes),
			AvgHoursPerDay:  round2(safeDiv(g.minutes, float64(g.days)) / 60),
			AvgHoursPerBaby: round2(safeDiv(g.minutes, float64(g.babies)) / 60),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hospital != out[j].Hospital {
			return out[i].Hospital < out[j].Hospital
		}
		return out[i].Location < out[j].Location
	})
	return out
}

// DailyKMCCell is one date/hospital/ward cell of the recent-practice grid.
type DailyKMCCell struct {
	Date     string  `json:"date"`
	Hospital string  `json:"hospital"`
	Location string  `json:"location"`
	Babies   int     `json:"babies"`
	AvgHours float64 `json:"avg_hours"`
}

// DailyKMCWindowDays is how far back the daily practice grid looks.
const DailyKMCWindowDays = 7

// DailyKMC builds the per-day KMC practice grid for the last week ending at
// the dataset anchor time.
func DailyKMC(ds *Dataset) []DailyKMCCell {
	end := timeutil.StartOfClinicDay(ds.Now)
	dates := make([]string, 0, DailyKMCWindowDays)
	for i := DailyKMCWindowDays - 1; i >= 0; i-- {
		dates = append(dates, timeutil.DateKey(end.AddDate(0, 0, -i)))
	}

	type acc struct {
		babies  int
		minutes float64
	}
	cells := make(map[[3]string]*acc)

	for i := range ds.Babies {
		b := &ds.Babies[i]
		if b.UID == "" {
			continue
		}
		daily := records.DailyKMCMinutes(b)
		for _, date := range dates {
			m, ok := daily[date]
			if !ok || m <= 0 {
				continue
			}
			key := [3]string{date, b.Hospital, locationOf(b)}
			g := cells[key]
			if g == nil {
				g = &acc{}
				cells[key] = g
			}
			g.babies++
			g.minutes += m
		}
	}

	out := make([]DailyKMCCell, 0, len(cells))
	for key, g := range cells {
		out = append(out, DailyKMCCell{
			Date:     key[0],
			Hospital: key[1],
			Location: key[2],
			Babies:   g.babies,
			AvgHours: round1(safeDiv(g.minutes, float64(g.babies)) / 60),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Hospital != out[j].Hospital {
			return out[i].Hospital < out[j].Hospital
		}
		return out[i].Location < out[j].Location
	})
	return out
}

// dateKeyInWindow compares a YYYY-MM-DD key against the window bounds by
// their clinic calendar days.
func dateKeyInWindow(key string, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if from != nil && key < timeutil.DateKey(*from) {
		return false
	}
	if to != nil && key > timeutil.DateKey(*to) {
		return false
	}
	return true
}
