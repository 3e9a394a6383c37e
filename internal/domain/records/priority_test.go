package records

import (
	"testing"
	"time"
)

func TestResolveField_PerFieldIndependence(t *testing.T) {
	d := Discharge{
		UID:    "a",
		Weight: strp("1800"),
		// Temperature missing on the discharge record.
	}
	b := Baby{
		UID:                  "a",
		Weight:               strp("1700"),
		DischargeTemperature: strp("36.5"),
	}
	if got := ResolveField(FieldWeight, &d, &b); got != "1800" {
		t.Errorf("weight = %q, want discharge value", got)
	}
	if got := ResolveField(FieldTemperature, &d, &b); got != "36.5" {
		t.Errorf("temperature = %q, want baby fallback", got)
	}
	if got := ResolveField(FieldFeedMode, &d, &b); got != NotAvailable {
		t.Errorf("feed mode = %q, want %q", got, NotAvailable)
	}
}

func TestResolveField_SentinelNotTreatedAsValue(t *testing.T) {
	d := Discharge{UID: "a", Weight: strp("N/A")}
	b := Baby{UID: "a", Weight: strp("1700")}
	if got := ResolveField(FieldWeight, &d, &b); got != "1700" {
		t.Errorf("an N/A on the discharge record should not stop the chain, got %q", got)
	}
}

func TestResolveField_NilSources(t *testing.T) {
	if got := ResolveField(FieldWeight, nil, nil); got != NotAvailable {
		t.Errorf("got %q", got)
	}
}

func TestHierarchicalDischargeDate(t *testing.T) {
	dDate := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	bDate := time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)

	t.Run("collection record first", func(t *testing.T) {
		d := Discharge{Date: timep(dDate)}
		b := Baby{Discharged: true, LastDischargeDate: timep(bDate)}
		got := HierarchicalDischargeDate(&d, &b)
		if got == nil || !got.Equal(dDate) {
			t.Errorf("got %v", got)
		}
	})
	t.Run("baby fallback requires discharged flag", func(t *testing.T) {
		b := Baby{Discharged: false, LastDischargeDate: timep(bDate)}
		if got := HierarchicalDischargeDate(nil, &b); got != nil {
			t.Errorf("undischarged baby should not resolve a date, got %v", got)
		}
		b.Discharged = true
		if got := HierarchicalDischargeDate(nil, &b); got == nil || !got.Equal(bDate) {
			t.Errorf("got %v", got)
		}
	})
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		name   string
		status string
		dtype  string
		want   DischargeCategory
	}{
		{"critical home", "Critical", "Home", CategoryCriticalHome},
		{"stable home", "stable", "home", CategoryStableHome},
		{"critical referred", "critical", "referred", CategoryCriticalReferred},
		{"died any status", "stable", "died", CategoryDied},
		{"unknown pair", "improving", "ward", CategoryOther},
		{"empty", "", "", CategoryOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Categorize(&tc.status, &tc.dtype); got != tc.want {
				t.Errorf("Categorize(%q, %q) = %v, want %v", tc.status, tc.dtype, got, tc.want)
			}
		})
	}
	if got := Categorize(nil, nil); got != CategoryOther {
		t.Errorf("nil pair = %v", got)
	}
}

func TestStable(t *testing.T) {
	cases := []struct {
		name string
		b    Baby
		want bool
	}{
		{"no evidence", Baby{}, true},
		{"flag set", Baby{Flags: ClinicalFlags{Sepsis: true}}, false},
		{"low birth weight", Baby{BirthWeight: strp("1400")}, false},
		{"normal weight", Baby{BirthWeight: strp("2100")}, true},
		{"unparseable weight ignored", Baby{BirthWeight: strp("very low")}, true},
		{"weight fallback field", Baby{Weight: strp("1200")}, false},
		{"boundary is stable", Baby{BirthWeight: strp("1500")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Stable(&tc.b); got != tc.want {
				t.Errorf("Stable = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCriticalReasons(t *testing.T) {
	d := Discharge{CriticalReasons: []string{"sepsis", "apnea"}}
	if got := CriticalReasons(&d); len(got) != 2 {
		t.Errorf("got %v", got)
	}
	fallback := Discharge{Reason: strp("low weight")}
	if got := CriticalReasons(&fallback); len(got) != 1 || got[0] != "low weight" {
		t.Errorf("reason fallback: %v", got)
	}
	if got := CriticalReasons(&Discharge{}); got != nil {
		t.Errorf("empty: %v", got)
	}
}

func TestCauseOfDeath(t *testing.T) {
	d := Discharge{CauseOfDeath: strp("sepsis")}
	b := Baby{CauseOfDeath: strp("asphyxia")}
	if got := CauseOfDeath(&d, &b); got != "sepsis" {
		t.Errorf("got %q", got)
	}
	if got := CauseOfDeath(nil, &b); got != "asphyxia" {
		t.Errorf("got %q", got)
	}
	if got := CauseOfDeath(nil, nil); got != NotAvailable {
		t.Errorf("got %q", got)
	}
}
