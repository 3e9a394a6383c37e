package metrics

import (
	"sort"
	"time"

	"github.com/firstembrace/kmc/internal/domain/records"
)

// neonatalPeriodDays is the cutoff between a neonatal and an infant death.
const neonatalPeriodDays = 28

// GroupDeaths is a total/deaths/rate triple for one cohort slice.
type GroupDeaths struct {
	Total  int     `json:"total"`
	Deaths int     `json:"deaths"`
	Rate   float64 `json:"rate"`
}

func groupDeaths(total, deaths int) GroupDeaths {
	return GroupDeaths{Total: total, Deaths: deaths, Rate: pct(deaths, total)}
}

// HospitalDeaths is a hospital's slice of the mortality report.
type HospitalDeaths struct {
	Hospital string  `json:"hospital"`
	Total    int     `json:"total"`
	Deaths   int     `json:"deaths"`
	Rate     float64 `json:"rate"`
}

// DeathRates is the mortality overview bundle.
type DeathRates struct {
	Overall      GroupDeaths                       `json:"overall"`
	ByHospital   []HospitalDeaths                  `json:"by_hospital"`
	Inborn       GroupDeaths                       `json:"inborn"`
	Outborn      GroupDeaths                       `json:"outborn"`
	ByLocation   map[string]GroupDeaths            `json:"by_location"`
	DeadStable   int                               `json:"dead_kmc_stable"`
	DeadUnstable int                               `json:"dead_kmc_unstable"`
	Neonatal     int                               `json:"neonatal_deaths"`
	Infant       int                               `json:"infant_deaths"`
	DeadOutcomes map[records.DischargeCategory]int `json:"dead_discharge_outcomes"`
}

// Mortality computes the death-rate overview in one pass over the resolved
// babies, then classifies the dead babies' discharge outcomes with the
// collection-priority walk.
func Mortality(ds *Dataset) DeathRates {
	out := DeathRates{
		ByLocation:   make(map[string]GroupDeaths),
		DeadOutcomes: emptyCategoryCounts(),
	}

	type hospAcc struct{ total, deaths int }
	hospitals := make(map[string]*hospAcc)
	type locAcc struct{ total, deaths int }
	locations := make(map[string]*locAcc)

	var total, deaths, inbornTotal, inbornDeaths, outbornTotal, outbornDeaths int
	deadUIDs := make(map[string]struct{})

	for i := range ds.Babies {
		b := &ds.Babies[i]
		total++
		h := hospitals[b.Hospital]
		if h == nil {
			h = &hospAcc{}
			hospitals[b.Hospital] = h
		}
		h.total++
		loc := locations[locationOf(b)]
		if loc == nil {
			loc = &locAcc{}
			locations[locationOf(b)] = loc
		}
		loc.total++

		isInborn := records.Inborn(b)
		if isInborn {
			inbornTotal++
		} else {
			outbornTotal++
		}

		if !b.Dead {
			continue
		}
		deaths++
		h.deaths++
		loc.deaths++
		deadUIDs[b.UID] = struct{}{}
		if isInborn {
			inbornDeaths++
		} else {
			outbornDeaths++
		}
		if records.Stable(b) {
			out.DeadStable++
		} else {
			out.DeadUnstable++
		}
		if b.BirthDate != nil && b.DeathDate != nil {
			ageDays := b.DeathDate.Sub(*b.BirthDate).Hours() / 24
			if ageDays <= neonatalPeriodDays {
				out.Neonatal++
			} else {
				out.Infant++
			}
		}
	}

	out.Overall = groupDeaths(total, deaths)
	out.Inborn = groupDeaths(inbornTotal, inbornDeaths)
	out.Outborn = groupDeaths(outbornTotal, outbornDeaths)
	for l, a := range locations {
		out.ByLocation[l] = groupDeaths(a.total, a.deaths)
	}

	names := make([]string, 0, len(hospitals))
	for h := range hospitals {
		names = append(names, h)
	}
	sort.Strings(names)
	for _, h := range names {
		a := hospitals[h]
		out.ByHospital = append(out.ByHospital, HospitalDeaths{
			Hospital: h, Total: a.total, Deaths: a.deaths, Rate: pct(a.deaths, a.total),
		})
	}

	walkDischarges(ds, func(uid string) bool {
		_, ok := deadUIDs[uid]
		return ok
	}, func(uid string, pool dischargePool, d *records.Discharge, b *records.Baby) {
		if d != nil {
			out.DeadOutcomes[records.CategorizeDischarge(d)]++
		} else {
			out.DeadOutcomes[records.CategorizeBaby(b)]++
		}
	})

	return out
}

// HospitalMortality is one hospital's full mortality breakdown.
type HospitalMortality struct {
	Hospital     string                            `json:"hospital"`
	TotalBabies  int                               `json:"total_babies"`
	TotalDeaths  int                               `json:"total_deaths"`
	DeadInborn   int                               `json:"dead_inborn"`
	DeadOutborn  int                               `json:"dead_outborn"`
	DeadStable   int                               `json:"dead_kmc_stable"`
	DeadUnstable int                               `json:"dead_kmc_unstable"`
	Outcomes     map[records.DischargeCategory]int `json:"discharge_categories"`
}

// MortalityByHospital builds the per-hospital mortality breakdown, sorted
// by hospital name.
func MortalityByHospital(ds *Dataset) []HospitalMortality {
	rows := make(map[string]*HospitalMortality)
	deadHospital := make(map[string]string) // dead UID -> hospital

	for i := range ds.Babies {
		b := &ds.Babies[i]
		r := rows[b.Hospital]
		if r == nil {
			r = &HospitalMortality{Hospital: b.Hospital, Outcomes: emptyCategoryCounts()}
			rows[b.Hospital] = r
		}
		r.TotalBabies++
		if !b.Dead {
			continue
		}
		r.TotalDeaths++
		deadHospital[b.UID] = b.Hospital
		if records.Inborn(b) {
			r.DeadInborn++
		} else {
			r.DeadOutborn++
		}
		if records.Stable(b) {
			r.DeadStable++
		} else {
			r.DeadUnstable++
		}
	}

	walkDischarges(ds, func(uid string) bool {
		_, ok := deadHospital[uid]
		return ok
	}, func(uid string, pool dischargePool, d *records.Discharge, b *records.Baby) {
		r := rows[deadHospital[uid]]
		if r == nil {
			return
		}
		if d != nil {
			r.Outcomes[records.CategorizeDischarge(d)]++
		} else {
			r.Outcomes[records.CategorizeBaby(b)]++
		}
	})

	out := make([]HospitalMortality, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hospital < out[j].Hospital })
	return out
}

// DeathDetail is one dead baby's full review row.
type DeathDetail struct {
	UID             string                    `json:"uid"`
	Hospital        string                    `json:"hospital"`
	Location        string                    `json:"location"`
	BirthDate       *time.Time                `json:"birth_date,omitempty"`
	DeathDate       *time.Time                `json:"death_date,omitempty"`
	AgeAtDeathDays  *float64                  `json:"age_at_death_days,omitempty"`
	Inborn          bool                      `json:"inborn"`
	Stable          bool                      `json:"kmc_stable"`
	TotalKMCMinutes float64                   `json:"total_kmc_minutes"`
	FirstKMC        *time.Time                `json:"first_kmc,omitempty"`
	StayDays        *float64                  `json:"stay_days,omitempty"`
	Category        records.DischargeCategory `json:"discharge_category"`
	CauseOfDeath    string                    `json:"cause_of_death"`
	Weight          string                    `json:"weight"`
	Temperature     string                    `json:"temperature"`
	RespiratoryRate string                    `json:"respiratory_rate"`
	FeedMode        string                    `json:"feed_mode"`
	HealthStatus    string                    `json:"health_status"`
}

// MortalityList builds a review row per dead baby, resolving clinical
// detail fields through the discharge-record-then-baby-record chain.
func MortalityList(ds *Dataset) []DeathDetail {
	dischargeFor := make(map[string]*records.Discharge)
	for i := range ds.Bundle.Discharges {
		d := &ds.Bundle.Discharges[i]
		if d.UID != "" {
			if _, ok := dischargeFor[d.UID]; !ok {
				dischargeFor[d.UID] = d
			}
		}
	}

	var out []DeathDetail
	for i := range ds.Babies {
		b := &ds.Babies[i]
		if !b.Dead || b.UID == "" {
			continue
		}
		d := dischargeFor[b.UID]

		row := DeathDetail{
			UID:             b.UID,
			Hospital:        b.Hospital,
			Location:        locationOf(b),
			BirthDate:       b.BirthDate,
			DeathDate:       b.DeathDate,
			Inborn:          records.Inborn(b),
			Stable:          records.Stable(b),
			TotalKMCMinutes: round1(records.TotalKMCMinutes(b)),
			FirstKMC:        records.FirstKMC(b),
			CauseOfDeath:    records.CauseOfDeath(d, b),
			Weight:          records.ResolveField(records.FieldWeight, d, b),
			Temperature:     records.ResolveField(records.FieldTemperature, d, b),
			RespiratoryRate: records.ResolveField(records.FieldRespiratoryRate, d, b),
			FeedMode:        records.ResolveField(records.FieldFeedMode, d, b),
			HealthStatus:    records.ResolveField(records.FieldHealthStatus, d, b),
		}

		if b.BirthDate != nil && b.DeathDate != nil {
			age := round1(b.DeathDate.Sub(*b.BirthDate).Hours() / 24)
			row.AgeAtDeathDays = &age
		}
		if end := records.HierarchicalDischargeDate(d, b); end != nil && b.BirthDate != nil && end.After(*b.BirthDate) {
			stay := round1(end.Sub(*b.BirthDate).Hours() / 24)
			row.StayDays = &stay
		}
		if d != nil {
			row.Category = records.CategorizeDischarge(d)
		} else {
			row.Category = records.CategorizeBaby(b)
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].DeathDate, out[j].DeathDate
		switch {
		case ti == nil && tj == nil:
			return out[i].UID < out[j].UID
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.Before(*tj)
		}
	})
	return out
}
