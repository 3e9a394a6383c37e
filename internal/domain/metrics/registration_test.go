package metrics

import (
	"testing"

	"github.com/firstembrace/kmc/internal/domain/records"
)

func TestRegistration(t *testing.T) {
	birth := clin(2024, 3, 1, 8, 0)
	inborn := strp("this hospital")

	ds := &Dataset{Babies: []records.Baby{
		{UID: "a", PlaceOfDelivery: inborn, BirthDate: timep(birth), RegisteredAt: timep(birth.Add(6 * hour))},
		{UID: "b", PlaceOfDelivery: inborn, BirthDate: timep(birth), RegisteredAt: timep(birth.Add(20 * hour))},
		{UID: "c", PlaceOfDelivery: inborn, BirthDate: timep(birth), RegisteredAt: timep(birth.Add(30 * hour))},
		// Registration clocked before birth: kept as a skew signal.
		{UID: "d", PlaceOfDelivery: inborn, BirthDate: timep(birth), RegisteredAt: timep(birth.Add(-2 * hour))},
		// No registration time: counted inborn but not timed.
		{UID: "e", PlaceOfDelivery: inborn, BirthDate: timep(birth)},
		// Outborn: excluded entirely.
		{UID: "f", PlaceOfDelivery: strp("home"), BirthDate: timep(birth), RegisteredAt: timep(birth.Add(1 * hour))},
	}}

	got := Registration(ds)
	if got.TotalInborn != 5 {
		t.Errorf("TotalInborn = %d, want 5", got.TotalInborn)
	}
	if got.WithTimes != 4 {
		t.Errorf("WithTimes = %d, want 4", got.WithTimes)
	}
	if got.Within12h != 2 || got.Within24h != 3 {
		t.Errorf("Within12h = %d, Within24h = %d, want 2 and 3", got.Within12h, got.Within24h)
	}
	if got.Pct12h != 40.0 || got.Pct24h != 60.0 {
		t.Errorf("Pct12h = %v, Pct24h = %v, want 40 and 60", got.Pct12h, got.Pct24h)
	}
	// (6 + 20 + 30 - 2) / 4
	if got.AvgDelayHours != 13.5 {
		t.Errorf("AvgDelayHours = %v, want 13.5", got.AvgDelayHours)
	}
}

func TestRegistration_Empty(t *testing.T) {
	got := Registration(&Dataset{})
	if got.TotalInborn != 0 || got.AvgDelayHours != 0 || got.Pct24h != 0 {
		t.Errorf("empty dataset should yield zeros: %+v", got)
	}
}
