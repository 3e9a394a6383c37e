package metrics

import (
	"testing"
	"time"

	"github.com/firstembrace/kmc/internal/domain/records"
	"github.com/firstembrace/kmc/internal/platform/timeutil"
)

const hour = time.Hour

func strp(s string) *string { return &s }

func timep(t time.Time) *time.Time { return &t }

func floatp(f float64) *float64 { return &f }

func boolp(b bool) *bool { return &b }

// clin builds a clinic-zone timestamp for fixtures.
func clin(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, timeutil.Clinic)
}

func TestNewRatio(t *testing.T) {
	r := NewRatio(1, 3)
	if r.Num != 1 || r.Den != 3 || r.Pct != 33.3 {
		t.Errorf("got %+v", r)
	}
	if z := NewRatio(0, 0); z.Pct != 0 {
		t.Errorf("zero denominator must yield zero pct, got %v", z.Pct)
	}
}

func TestWalkDischarges_PoolPriority(t *testing.T) {
	ds := NewDataset(&records.Bundle{
		Discharges: []records.Discharge{{UID: "a"}},
		Primary: []records.Baby{
			{UID: "a", Discharged: true, Source: records.SourcePrimary}, // already claimed by the collection
			{UID: "b", Discharged: true, Source: records.SourcePrimary},
			{UID: "d", Discharged: false, Source: records.SourcePrimary}, // never discharged, not visited
		},
		Backup: []records.Baby{
			{UID: "b", Discharged: true, Source: records.SourceBackup}, // superseded by the primary record
			{UID: "c", Discharged: true, Source: records.SourceBackup},
			{UID: "e", Discharged: false, Source: records.SourceBackup}, // never discharged, not visited
		},
	}, time.Now())

	pools := make(map[string]dischargePool)
	walkDischarges(ds, func(string) bool { return true },
		func(uid string, pool dischargePool, d *records.Discharge, b *records.Baby) {
			if _, seen := pools[uid]; seen {
				t.Errorf("uid %q visited twice", uid)
			}
			pools[uid] = pool
		})

	want := map[string]dischargePool{
		"a": poolCollection,
		"b": poolPrimary,
		"c": poolBackup,
	}
	if len(pools) != len(want) {
		t.Fatalf("visited %v, want %v", pools, want)
	}
	for uid, pool := range want {
		if pools[uid] != pool {
			t.Errorf("uid %q: pool %q, want %q", uid, pools[uid], pool)
		}
	}
}

func TestWalkDischarges_IncludeFilter(t *testing.T) {
	ds := NewDataset(&records.Bundle{
		Discharges: []records.Discharge{{UID: "a"}, {UID: "b"}},
	}, time.Now())
	var visited []string
	walkDischarges(ds, func(uid string) bool { return uid == "b" },
		func(uid string, pool dischargePool, d *records.Discharge, b *records.Baby) {
			visited = append(visited, uid)
		})
	if len(visited) != 1 || visited[0] != "b" {
		t.Errorf("got %v, want [b]", visited)
	}
}

func TestWalkDischarges_SupersededBackup(t *testing.T) {
	// A stale backup record must never classify a UID whose authoritative
	// primary record was not discharged.
	ds := NewDataset(&records.Bundle{
		Primary: []records.Baby{
			{UID: "a", Discharged: false, Source: records.SourcePrimary},
		},
		Backup: []records.Baby{
			{UID: "a", Discharged: true, Source: records.SourceBackup,
				LastDischargeStatus: strp("stable"), LastDischargeType: strp("home")},
		},
	}, time.Now())

	walkDischarges(ds, func(string) bool { return true },
		func(uid string, pool dischargePool, d *records.Discharge, b *records.Baby) {
			t.Errorf("uid %q classified from pool %q, want no visit", uid, pool)
		})
}

func TestInWindow(t *testing.T) {
	from := clin(2024, 3, 1, 0, 0)
	to := clin(2024, 3, 10, 0, 0)
	inside := clin(2024, 3, 5, 12, 0)
	outside := clin(2024, 4, 1, 0, 0)

	if !inWindow(&inside, &from, &to) {
		t.Error("inside the window")
	}
	if inWindow(&outside, &from, &to) {
		t.Error("outside the window")
	}
	if !inWindow(&outside, &from, nil) {
		t.Error("nil upper bound is open")
	}
	if inWindow(nil, nil, nil) {
		t.Error("a missing timestamp never falls in a window")
	}
}
