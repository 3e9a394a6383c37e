package records

import (
	"context"
	"time"
)

// Query scopes a bundle load. A nil bound leaves that side of the birth
// window open; empty slices mean no hospital or UID restriction.
type Query struct {
	From      *time.Time
	To        *time.Time
	Hospitals []string
	UIDs      []string
}

// Bundle is one consistent load of every collection the aggregators read.
// Discharges and follow-ups are not pre-filtered to the baby selection;
// aggregators scope them by UID membership.
type Bundle struct {
	Primary      []Baby
	Backup       []Baby
	Days         []DayAggregate
	Sessions     []KMCSession
	Observations []Observation
	Discharges   []Discharge
	FollowUps    []FollowUp
}

// Resolved returns the entity-resolved babies with the flat collections
// attached.
func (bn *Bundle) Resolved() []Baby {
	return Attach(Resolve(bn.Primary, bn.Backup), bn.Days, bn.Sessions)
}

// Repository loads record bundles from the document store.
type Repository interface {
	LoadBundle(ctx context.Context, q Query) (*Bundle, error)
	CollectionCounts(ctx context.Context) (map[string]int64, error)
}
