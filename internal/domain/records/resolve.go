package records

import (
	"sort"
	"strings"
)

// Deduper tracks UIDs so each aggregation counts an entity once. Records
// with no UID are never admitted.
type Deduper struct {
	seen map[string]struct{}
}

// NewDeduper creates an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// First reports whether uid is non-empty and has not been seen before, and
// marks it seen. First-seen-wins: later records for the same UID lose.
func (d *Deduper) First(uid string) bool {
	if uid == "" {
		return false
	}
	if _, ok := d.seen[uid]; ok {
		return false
	}
	d.seen[uid] = struct{}{}
	return true
}

// Resolve merges the primary and backup record families into one entity per
// UID. A primary record always supersedes a backup record for the same UID;
// there is no field-level merge. Records without a UID are dropped. The
// result preserves primary-then-backup order.
func Resolve(primary, backup []Baby) []Baby {
	dedup := NewDeduper()
	out := make([]Baby, 0, len(primary)+len(backup))
	for _, b := range primary {
		if dedup.First(b.UID) {
			out = append(out, b)
		}
	}
	for _, b := range backup {
		if dedup.First(b.UID) {
			out = append(out, b)
		}
	}
	return out
}

// Attach joins the flat per-day and session collections onto resolved
// babies by UID. Inputs are not mutated; each baby gets fresh slices.
func Attach(babies []Baby, days []DayAggregate, sessions []KMCSession) []Baby {
	dayIdx := make(map[string][]DayAggregate)
	for _, d := range days {
		if d.BabyUID != "" {
			dayIdx[d.BabyUID] = append(dayIdx[d.BabyUID], d)
		}
	}
	sessIdx := make(map[string][]KMCSession)
	for _, s := range sessions {
		if s.BabyUID != "" {
			sessIdx[s.BabyUID] = append(sessIdx[s.BabyUID], s)
		}
	}

	out := make([]Baby, len(babies))
	for i, b := range babies {
		if ds := dayIdx[b.UID]; len(ds) > 0 {
			b.Days = append([]DayAggregate(nil), ds...)
			sort.Slice(b.Days, func(i, j int) bool { return b.Days[i].DayNumber < b.Days[j].DayNumber })
		}
		if ss := sessIdx[b.UID]; len(ss) > 0 {
			b.Sessions = append([]KMCSession(nil), ss...)
		}
		out[i] = b
	}
	return out
}

// inbornLabels are the exact delivery-place values that mark an inborn
// baby. Field staff record the place in Hindi or English.
var inbornLabels = map[string]struct{}{
	"यह अस्पताल":    {},
	"this hospital": {},
}

// Inborn reports whether the baby was delivered at the recording hospital.
// A missing place of delivery is not inborn.
func Inborn(b *Baby) bool {
	if b.PlaceOfDelivery == nil {
		return false
	}
	p := strings.ToLower(strings.TrimSpace(*b.PlaceOfDelivery))
	_, ok := inbornLabels[p]
	return ok
}

// InbornAssumed is the lenient variant used by program-eligibility metrics:
// an absent or placeholder place of delivery counts as inborn, as does any
// value naming a hospital.
func InbornAssumed(b *Baby) bool {
	if b.PlaceOfDelivery == nil {
		return true
	}
	p := strings.ToLower(strings.TrimSpace(*b.PlaceOfDelivery))
	switch p {
	case "", "nan", "none", "null":
		return true
	}
	if _, ok := inbornLabels[p]; ok {
		return true
	}
	return strings.Contains(p, "hospital")
}
