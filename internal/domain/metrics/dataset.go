// Package metrics computes the dashboard indicator bundles from resolved
// record datasets. Every aggregator is a pure function over a Dataset:
// malformed or missing data shrinks a count or yields a zero, it never
// produces an error.
package metrics

import (
	"math"
	"time"

	"github.com/firstembrace/kmc/internal/domain/records"
)

// Dataset is one loaded snapshot the aggregators run over. Babies is the
// entity-resolved view; the Bundle keeps the discharge and follow-up
// collections the aggregators scope by UID membership.
type Dataset struct {
	Bundle *records.Bundle
	Babies []records.Baby
	Now    time.Time
}

// NewDataset resolves a bundle into a dataset anchored at now.
func NewDataset(b *records.Bundle, now time.Time) *Dataset {
	return &Dataset{Bundle: b, Babies: b.Resolved(), Now: now}
}

// UIDSet returns the set of resolved baby UIDs. Aggregations over the
// discharge and follow-up collections scope themselves to it.
func (ds *Dataset) UIDSet() map[string]struct{} {
	out := make(map[string]struct{}, len(ds.Babies))
	for _, b := range ds.Babies {
		out[b.UID] = struct{}{}
	}
	return out
}

// BabyByUID indexes the resolved babies.
func (ds *Dataset) BabyByUID() map[string]*records.Baby {
	out := make(map[string]*records.Baby, len(ds.Babies))
	for i := range ds.Babies {
		out[ds.Babies[i].UID] = &ds.Babies[i]
	}
	return out
}

// Ratio is a numerator/denominator pair with its percentage, the shape
// every indicator reports. A zero denominator yields a zero percentage.
type Ratio struct {
	Num int     `json:"num"`
	Den int     `json:"den"`
	Pct float64 `json:"pct"`
}

// NewRatio builds a Ratio with the percentage rounded to one decimal.
func NewRatio(num, den int) Ratio {
	return Ratio{Num: num, Den: den, Pct: pct(num, den)}
}

func pct(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return round1(float64(num) / float64(den) * 100)
}

func pctf(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round1(num / den * 100)
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func locationOf(b *records.Baby) string {
	if b.Location != nil && *b.Location != "" {
		return *b.Location
	}
	return "Unknown"
}

// dischargePool identifies which record pool classified a UID during a
// collection-priority walk.
type dischargePool string

const (
	poolCollection dischargePool = "discharges"
	poolPrimary    dischargePool = "baby"
	poolBackup     dischargePool = "babyBackUp"
)

// walkDischarges visits each in-scope UID at most once, consulting the
// discharge collection first and then the embedded discharge fields of the
// entity-resolved babies, primary-sourced before backup-sourced. Embedded
// fields only count on records marked discharged, and a backup record
// superseded during entity resolution never classifies a UID. The visit
// callback receives whichever record classified the UID; the other pointer
// is nil.
func walkDischarges(ds *Dataset, include func(uid string) bool,
	visit func(uid string, pool dischargePool, d *records.Discharge, b *records.Baby)) {

	dedup := records.NewDeduper()

	for i := range ds.Bundle.Discharges {
		d := &ds.Bundle.Discharges[i]
		if !include(d.UID) {
			continue
		}
		if dedup.First(d.UID) {
			visit(d.UID, poolCollection, d, nil)
		}
	}
	// Resolved order is primary-then-backup, so the pool precedence holds
	// within a single pass.
	for i := range ds.Babies {
		b := &ds.Babies[i]
		if !b.Discharged || !include(b.UID) {
			continue
		}
		if dedup.First(b.UID) {
			pool := poolPrimary
			if b.Source == records.SourceBackup {
				pool = poolBackup
			}
			visit(b.UID, pool, nil, b)
		}
	}
}

// inWindow reports whether t falls inside [from, to]; a nil bound is open.
func inWindow(t *time.Time, from, to *time.Time) bool {
	if t == nil {
		return false
	}
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}
