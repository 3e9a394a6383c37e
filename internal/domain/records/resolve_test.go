package records

import (
	"testing"
	"time"
)

func strp(s string) *string { return &s }

func timep(t time.Time) *time.Time { return &t }

func floatp(f float64) *float64 { return &f }

func TestResolve_PrimaryWins(t *testing.T) {
	primary := []Baby{
		{UID: "a", Source: SourcePrimary, Hospital: "H1"},
		{UID: "b", Source: SourcePrimary, Hospital: "H1"},
	}
	backup := []Baby{
		{UID: "a", Source: SourceBackup, Hospital: "H2"}, // loses to primary
		{UID: "c", Source: SourceBackup, Hospital: "H2"},
		{UID: "", Source: SourceBackup, Hospital: "H2"}, // no UID, dropped
	}
	got := Resolve(primary, backup)
	if len(got) != 3 {
		t.Fatalf("expected 3 resolved babies, got %d", len(got))
	}
	if got[0].UID != "a" || got[0].Source != SourcePrimary {
		t.Errorf("primary record for a should win: %+v", got[0])
	}
	if got[2].UID != "c" || got[2].Source != SourceBackup {
		t.Errorf("backup-only record should survive: %+v", got[2])
	}
}

func TestResolve_NoFieldMerge(t *testing.T) {
	primary := []Baby{{UID: "a", Source: SourcePrimary}}
	backup := []Baby{{UID: "a", Source: SourceBackup, Nurse: strp("asha")}}
	got := Resolve(primary, backup)
	if len(got) != 1 {
		t.Fatalf("expected 1, got %d", len(got))
	}
	if got[0].Nurse != nil {
		t.Error("winning record must not inherit fields from the loser")
	}
}

func TestDeduper(t *testing.T) {
	d := NewDeduper()
	if !d.First("x") {
		t.Error("first occurrence should pass")
	}
	if d.First("x") {
		t.Error("second occurrence should fail")
	}
	if d.First("") {
		t.Error("empty UID should never pass")
	}
}

func TestAttach_DoesNotMutateInputs(t *testing.T) {
	babies := []Baby{{UID: "a"}}
	days := []DayAggregate{{BabyUID: "a", DayNumber: 1, KMCMinutes: 60}}
	sessions := []KMCSession{{BabyUID: "a", DurationMinutes: floatp(30)}}

	got := Attach(babies, days, sessions)
	if len(got[0].Days) != 1 || len(got[0].Sessions) != 1 {
		t.Fatalf("attach failed: %+v", got[0])
	}
	if babies[0].Days != nil || babies[0].Sessions != nil {
		t.Error("input slice must stay untouched")
	}
}

func TestAttach_SortsDaysByNumber(t *testing.T) {
	got := Attach(
		[]Baby{{UID: "a"}},
		[]DayAggregate{
			{BabyUID: "a", DayNumber: 5},
			{BabyUID: "a", DayNumber: 2},
			{BabyUID: "b", DayNumber: 1},
		},
		nil,
	)
	if len(got[0].Days) != 2 {
		t.Fatalf("expected 2 days for a, got %d", len(got[0].Days))
	}
	if got[0].Days[0].DayNumber != 2 {
		t.Error("days should sort by day number")
	}
}

func TestInborn(t *testing.T) {
	cases := []struct {
		name  string
		place *string
		want  bool
	}{
		{"hindi label", strp("यह अस्पताल"), true},
		{"english label", strp("this hospital"), true},
		{"mixed case", strp("This Hospital"), true},
		{"other place", strp("home"), false},
		{"referral hospital", strp("district hospital"), false},
		{"missing", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Baby{PlaceOfDelivery: tc.place}
			if got := Inborn(&b); got != tc.want {
				t.Errorf("Inborn = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInbornAssumed(t *testing.T) {
	cases := []struct {
		name  string
		place *string
		want  bool
	}{
		{"missing assumed inborn", nil, true},
		{"empty assumed inborn", strp("  "), true},
		{"nan placeholder", strp("NaN"), true},
		{"named hospital", strp("District Hospital"), true},
		{"home", strp("home"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := Baby{PlaceOfDelivery: tc.place}
			if got := InbornAssumed(&b); got != tc.want {
				t.Errorf("InbornAssumed = %v, want %v", got, tc.want)
			}
		})
	}
}
