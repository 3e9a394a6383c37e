package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/firstembrace/kmc/internal/domain/records"
)

// StayStats summarizes stay durations for one ward, or for one ward within
// one hospital when Hospital is set.
type StayStats struct {
	Location     string  `json:"location"`
	Hospital     string  `json:"hospital,omitempty"`
	Babies       int     `json:"babies"`
	AvgDays      float64 `json:"avg_days"`
	MinDays      float64 `json:"min_days"`
	MaxDays      float64 `json:"max_days"`
	AvgFormatted string  `json:"avg_formatted"`
}

// HospitalStayReport is the stay-duration bundle.
type HospitalStayReport struct {
	Overall            StayStats   `json:"overall"`
	ByLocation         []StayStats `json:"by_location"`
	ByLocationHospital []StayStats `json:"by_location_hospital"`
}

// HospitalStay computes stay durations from birth to the record's own
// discharge date. Records whose discharge does not come after birth are
// excluded: a non-positive stay is a data error, not a short admission.
func HospitalStay(ds *Dataset) HospitalStayReport {
	type locHosp struct{ location, hospital string }
	var all []float64
	byLoc := make(map[string][]float64)
	byLocHosp := make(map[locHosp][]float64)

	dedup := records.NewDeduper()
	for i := range ds.Babies {
		b := &ds.Babies[i]
		if !dedup.First(b.UID) {
			continue
		}
		if b.BirthDate == nil || b.LastDischargeDate == nil {
			continue
		}
		if !b.LastDischargeDate.After(*b.BirthDate) {
			continue
		}
		days := b.LastDischargeDate.Sub(*b.BirthDate).Hours() / 24
		all = append(all, days)
		loc := locationOf(b)
		byLoc[loc] = append(byLoc[loc], days)
		key := locHosp{location: loc, hospital: b.Hospital}
		byLocHosp[key] = append(byLocHosp[key], days)
	}

	out := HospitalStayReport{Overall: stayStats("all", all)}
	for loc, days := range byLoc {
		out.ByLocation = append(out.ByLocation, stayStats(loc, days))
	}
	sort.Slice(out.ByLocation, func(i, j int) bool {
		return out.ByLocation[i].Location < out.ByLocation[j].Location
	})
	for key, days := range byLocHosp {
		s := stayStats(key.location, days)
		s.Hospital = key.hospital
		out.ByLocationHospital = append(out.ByLocationHospital, s)
	}
	sort.Slice(out.ByLocationHospital, func(i, j int) bool {
		a, b := out.ByLocationHospital[i], out.ByLocationHospital[j]
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.Hospital < b.Hospital
	})
	return out
}

func stayStats(location string, days []float64) StayStats {
	s := StayStats{Location: location, Babies: len(days)}
	if len(days) == 0 {
		s.AvgFormatted = FormatStay(0)
		return s
	}
	s.MinDays = days[0]
	s.MaxDays = days[0]
	var total float64
	for _, d := range days {
		total += d
		if d < s.MinDays {
			s.MinDays = d
		}
		if d > s.MaxDays {
			s.MaxDays = d
		}
	}
	avg := total / float64(len(days))
	s.AvgDays = round2(avg)
	s.MinDays = round2(s.MinDays)
	s.MaxDays = round2(s.MaxDays)
	s.AvgFormatted = FormatStay(avg)
	return s
}

// FormatStay renders a fractional day count as "D days H hours".
func FormatStay(days float64) string {
	whole := int(days)
	hours := int(math.Round((days - float64(whole)) * 24))
	if hours == 24 {
		whole++
		hours = 0
	}
	return fmt.Sprintf("%d days %d hours", whole, hours)
}
