package metrics

import (
	"sort"
	"strings"

	"github.com/firstembrace/kmc/internal/domain/records"
)

// DischargeOutcomes counts discharge collection records per category,
// scoped to the resolved baby set.
type DischargeOutcomes struct {
	Categories map[records.DischargeCategory]int `json:"categories"`
	Total      int                               `json:"total"`
}

// Outcomes tallies discharge outcomes. Only the first discharge record per
// UID counts; records for babies outside the selection are ignored.
func Outcomes(ds *Dataset) DischargeOutcomes {
	out := DischargeOutcomes{Categories: emptyCategoryCounts()}
	selected := ds.UIDSet()
	dedup := records.NewDeduper()

	for i := range ds.Bundle.Discharges {
		d := &ds.Bundle.Discharges[i]
		if _, ok := selected[d.UID]; !ok {
			continue
		}
		if !dedup.First(d.UID) {
			continue
		}
		out.Categories[records.CategorizeDischarge(d)]++
		out.Total++
	}
	return out
}

func emptyCategoryCounts() map[records.DischargeCategory]int {
	m := make(map[records.DischargeCategory]int, 5)
	for _, c := range records.Categories() {
		m[c] = 0
	}
	return m
}

// ReasonCount is one critical-discharge reason with its frequency.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// CriticalReasonsReport lists why discharges were marked critical.
type CriticalReasonsReport struct {
	Reasons          []ReasonCount `json:"reasons"`
	BabiesWithReason int           `json:"babies_with_reason"`
}

// CriticalReasons aggregates the recorded critical-discharge reasons over
// the selected babies' discharge records.
func CriticalReasons(ds *Dataset) CriticalReasonsReport {
	selected := ds.UIDSet()
	dedup := records.NewDeduper()
	counts := make(map[string]int)
	babies := 0

	for i := range ds.Bundle.Discharges {
		d := &ds.Bundle.Discharges[i]
		if _, ok := selected[d.UID]; !ok {
			continue
		}
		if !dedup.First(d.UID) {
			continue
		}
		reasons := records.CriticalReasons(d)
		if len(reasons) == 0 {
			continue
		}
		babies++
		for _, r := range reasons {
			counts[strings.TrimSpace(r)]++
		}
	}

	out := CriticalReasonsReport{BabiesWithReason: babies}
	for r, n := range counts {
		out.Reasons = append(out.Reasons, ReasonCount{Reason: r, Count: n})
	}
	sort.Slice(out.Reasons, func(i, j int) bool {
		if out.Reasons[i].Count != out.Reasons[j].Count {
			return out.Reasons[i].Count > out.Reasons[j].Count
		}
		return out.Reasons[i].Reason < out.Reasons[j].Reason
	})
	return out
}

// HospitalKMCGap reports discharged babies who never had KMC recorded, per
// hospital.
type HospitalKMCGap struct {
	Hospital   string  `json:"hospital"`
	Discharged int     `json:"discharged"`
	WithoutKMC int     `json:"without_kmc"`
	PctWithout float64 `json:"pct_without"`
}

// DischargedWithoutKMC finds babies who left the facility without a single
// recorded skin-to-skin session. A baby counts as discharged when a
// discharge collection record exists or its own record is flagged.
func DischargedWithoutKMC(ds *Dataset) []HospitalKMCGap {
	dischargedUIDs := make(map[string]struct{}, len(ds.Bundle.Discharges))
	for _, d := range ds.Bundle.Discharges {
		if d.UID != "" {
			dischargedUIDs[d.UID] = struct{}{}
		}
	}

	type acc struct{ discharged, without int }
	groups := make(map[string]*acc)

	for i := range ds.Babies {
		b := &ds.Babies[i]
		_, inColl := dischargedUIDs[b.UID]
		if !inColl && !b.Discharged {
			continue
		}
		g := groups[b.Hospital]
		if g == nil {
			g = &acc{}
			groups[b.Hospital] = g
		}
		g.discharged++
		if !records.HasAnyKMC(b) {
			g.without++
		}
	}

	out := make([]HospitalKMCGap, 0, len(groups))
	for h, g := range groups {
		out = append(out, HospitalKMCGap{
			Hospital:   h,
			Discharged: g.discharged,
			WithoutKMC: g.without,
			PctWithout: pct(g.without, g.discharged),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hospital < out[j].Hospital })
	return out
}
