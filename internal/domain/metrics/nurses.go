package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/firstembrace/kmc/internal/domain/records"
)

// NurseActivityRow is one nurse's workload at one hospital over the window.
type NurseActivityRow struct {
	Nurse         string `json:"nurse"`
	Hospital      string `json:"hospital"`
	FollowUps     int    `json:"follow_ups"`
	Discharges    int    `json:"discharges"`
	Registrations int    `json:"registrations"`
}

// NurseActivityReport is the workload bundle plus a breakdown of which
// record pool attributed each discharge.
type NurseActivityReport struct {
	Rows            []NurseActivityRow `json:"rows"`
	DischargeCounts map[string]int     `json:"discharge_counts"`
}

// notSpecifiedNurse is the placeholder the app writes when no nurse was
// recorded; it is never a workload row.
const notSpecifiedNurse = "not specified"

func usableNurse(n *string) (string, bool) {
	if n == nil {
		return "", false
	}
	s := strings.TrimSpace(*n)
	if s == "" || strings.EqualFold(s, notSpecifiedNurse) {
		return "", false
	}
	return s, true
}

// NurseActivity counts follow-ups, registrations, and discharges per nurse
// and hospital inside the window. Discharges resolve through the
// collection-priority walk; a discharge with no date still counts, so that
// legacy records without timestamps are not silently dropped from workload.
func NurseActivity(ds *Dataset, from, to *time.Time, hospitals []string) NurseActivityReport {
	hospFilter := make(map[string]struct{}, len(hospitals))
	for _, h := range hospitals {
		hospFilter[h] = struct{}{}
	}
	inScope := func(h string) bool {
		if len(hospFilter) == 0 {
			return true
		}
		_, ok := hospFilter[h]
		return ok
	}

	type key struct{ nurse, hospital string }
	rows := make(map[key]*NurseActivityRow)
	row := func(nurse, hospital string) *NurseActivityRow {
		k := key{nurse, hospital}
		r := rows[k]
		if r == nil {
			r = &NurseActivityRow{Nurse: nurse, Hospital: hospital}
			rows[k] = r
		}
		return r
	}

	for _, f := range ds.Bundle.FollowUps {
		if _, ok := nurseActivityVisits[f.Number]; !ok {
			continue
		}
		if !inWindow(f.Date, from, to) || !inScope(f.Hospital) {
			continue
		}
		if nurse, ok := usableNurse(f.Nurse); ok {
			row(nurse, f.Hospital).FollowUps++
		}
	}

	for i := range ds.Babies {
		b := &ds.Babies[i]
		if !inWindow(b.RegisteredAt, from, to) || !inScope(b.Hospital) {
			continue
		}
		if nurse, ok := usableNurse(b.Nurse); ok {
			row(nurse, b.Hospital).Registrations++
		}
	}

	counts := map[string]int{
		string(poolCollection): 0,
		string(poolPrimary):    0,
		string(poolBackup):     0,
	}
	selected := ds.UIDSet()
	walkDischarges(ds, func(uid string) bool {
		_, ok := selected[uid]
		return ok
	}, func(uid string, pool dischargePool, d *records.Discharge, b *records.Baby) {
		var nurse string
		var hospital string
		var date *time.Time
		var ok bool
		if d != nil {
			nurse, ok = usableNurse(d.Nurse)
			hospital = d.Hospital
			date = d.Date
		} else {
			nurse, ok = usableNurse(b.Nurse)
			hospital = b.Hospital
			date = b.LastDischargeDate
		}
		if !ok || !inScope(hospital) {
			return
		}
		// Dated discharges must fall in the window; undated ones pass.
		if date != nil && !inWindow(date, from, to) {
			return
		}
		counts[string(pool)]++
		row(nurse, hospital).Discharges++
	})

	out := NurseActivityReport{DischargeCounts: counts}
	for _, r := range rows {
		out.Rows = append(out.Rows, *r)
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		if out.Rows[i].Hospital != out.Rows[j].Hospital {
			return out.Rows[i].Hospital < out.Rows[j].Hospital
		}
		return out.Rows[i].Nurse < out.Rows[j].Nurse
	})
	return out
}
