package metrics

import (
	"sort"

	"github.com/firstembrace/kmc/internal/domain/records"
)

// FollowUpSchedule lists the post-discharge visit days the program tracks.
var FollowUpSchedule = []int{2, 7, 14, 28}

// FollowUpCell is one hospital/visit-day completion cell.
type FollowUpCell struct {
	Eligible  int     `json:"eligible"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}

// FollowUpCompletion is the visit-completion bundle.
type FollowUpCompletion struct {
	// ByHospital maps hospital -> visit day -> completion.
	ByHospital map[string]map[int]FollowUpCell `json:"by_hospital"`
	Overall    FollowUpCell                    `json:"overall"`
}

// Completion computes follow-up completion. Every living baby is eligible
// for every scheduled visit; a visit counts as completed when any follow-up
// record with that visit number exists for the baby. Presence of the record
// is the signal; its status is not consulted here.
func Completion(ds *Dataset) FollowUpCompletion {
	done := make(map[string]map[int]struct{}) // uid -> visit numbers seen
	for _, f := range ds.Bundle.FollowUps {
		if f.UID == "" {
			continue
		}
		m := done[f.UID]
		if m == nil {
			m = make(map[int]struct{})
			done[f.UID] = m
		}
		m[f.Number] = struct{}{}
	}

	out := FollowUpCompletion{ByHospital: make(map[string]map[int]FollowUpCell)}
	type acc struct{ eligible, completed int }
	cells := make(map[string]map[int]*acc)

	dedup := records.NewDeduper()
	var totalEligible, totalCompleted int

	for i := range ds.Babies {
		b := &ds.Babies[i]
		if !dedup.First(b.UID) || b.Dead {
			continue
		}
		hosp := cells[b.Hospital]
		if hosp == nil {
			hosp = make(map[int]*acc)
			cells[b.Hospital] = hosp
		}
		for _, day := range FollowUpSchedule {
			c := hosp[day]
			if c == nil {
				c = &acc{}
				hosp[day] = c
			}
			c.eligible++
			totalEligible++
			if _, ok := done[b.UID][day]; ok {
				c.completed++
				totalCompleted++
			}
		}
	}

	for h, days := range cells {
		out.ByHospital[h] = make(map[int]FollowUpCell, len(days))
		for day, c := range days {
			out.ByHospital[h][day] = FollowUpCell{
				Eligible:  c.eligible,
				Completed: c.completed,
				Rate:      pct(c.completed, c.eligible),
			}
		}
	}
	out.Overall = FollowUpCell{
		Eligible:  totalEligible,
		Completed: totalCompleted,
		Rate:      pct(totalCompleted, totalEligible),
	}
	return out
}

// skinContactFinalVisit is the one visit excluded from the skin-contact
// metric; contact counting stops at the day-28 visit.
const skinContactFinalVisit = 28

// SkinContactReport summarizes reported skin-to-skin contacts during early
// follow-up visits.
type SkinContactReport struct {
	Contacts       int     `json:"contacts"`
	BabiesWithData int     `json:"babies_with_data"`
	Avg            float64 `json:"avg"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
}

// SkinContact aggregates reported skin-contact counts from every follow-up
// visit before the final one. Any recorded count feeds the stats, zero
// included; only an absent value is skipped.
func SkinContact(ds *Dataset) SkinContactReport {
	var values []float64
	babies := make(map[string]struct{})

	for _, f := range ds.Bundle.FollowUps {
		if f.Number == skinContactFinalVisit {
			continue
		}
		if f.SkinContacts == nil {
			continue
		}
		values = append(values, *f.SkinContacts)
		if f.UID != "" {
			babies[f.UID] = struct{}{}
		}
	}

	out := SkinContactReport{Contacts: len(values), BabiesWithData: len(babies)}
	if len(values) == 0 {
		return out
	}
	sort.Float64s(values)
	out.Min = values[0]
	out.Max = values[len(values)-1]
	var total float64
	for _, v := range values {
		total += v
	}
	out.Avg = round2(total / float64(len(values)))
	return out
}

// nurseActivityVisits are the follow-up numbers counted toward nurse
// workload; anything else is a data-entry artifact.
var nurseActivityVisits = map[int]struct{}{1: {}, 2: {}, 3: {}, 7: {}, 14: {}, 28: {}}
