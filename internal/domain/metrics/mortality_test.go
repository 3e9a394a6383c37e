package metrics

import (
	"testing"

	"github.com/firstembrace/kmc/internal/domain/records"
)

func mortalityFixture() *Dataset {
	birth := clin(2024, 3, 1, 8, 0)

	bundle := &records.Bundle{
		Primary: []records.Baby{
			{
				UID: "d1", Hospital: "H1", Location: strp("SNCU"),
				PlaceOfDelivery: strp("this hospital"),
				Dead:            true,
				BirthDate:       timep(birth),
				DeathDate:       timep(birth.AddDate(0, 0, 10)),
				BirthWeight:     strp("1600"),
			},
			{
				UID: "d2", Hospital: "H1",
				PlaceOfDelivery: strp("home"),
				Dead:            true,
				Discharged:      true,
				LastDischargeStatus: strp("critical"),
				LastDischargeType:   strp("referred"),
				Flags:               records.ClinicalFlags{Sepsis: true},
			},
			{UID: "x", Hospital: "H2", PlaceOfDelivery: strp("home")},
		},
		Discharges: []records.Discharge{
			{
				UID: "d1", Hospital: "H1",
				Status: strp("Critical"), Type: strp("Home"),
				Date:         timep(birth.AddDate(0, 0, 12)),
				Weight:       strp("1400"),
				CauseOfDeath: strp("sepsis"),
			},
		},
	}
	return NewDataset(bundle, clin(2024, 4, 1, 0, 0))
}

func TestMortality(t *testing.T) {
	got := Mortality(mortalityFixture())

	if got.Overall.Total != 3 || got.Overall.Deaths != 2 || got.Overall.Rate != 66.7 {
		t.Errorf("Overall = %+v", got.Overall)
	}
	if got.Inborn.Total != 1 || got.Inborn.Deaths != 1 {
		t.Errorf("Inborn = %+v", got.Inborn)
	}
	if got.Outborn.Total != 2 || got.Outborn.Deaths != 1 || got.Outborn.Rate != 50.0 {
		t.Errorf("Outborn = %+v", got.Outborn)
	}

	if len(got.ByHospital) != 2 || got.ByHospital[0].Hospital != "H1" {
		t.Fatalf("ByHospital = %+v", got.ByHospital)
	}
	if got.ByHospital[0].Deaths != 2 || got.ByHospital[0].Rate != 100.0 {
		t.Errorf("H1 = %+v", got.ByHospital[0])
	}
	if got.ByHospital[1].Hospital != "H2" || got.ByHospital[1].Deaths != 0 {
		t.Errorf("H2 = %+v", got.ByHospital[1])
	}

	if sncu := got.ByLocation["SNCU"]; sncu.Total != 1 || sncu.Deaths != 1 {
		t.Errorf("SNCU = %+v", sncu)
	}
	if got.DeadStable != 1 || got.DeadUnstable != 1 {
		t.Errorf("stability split = %d/%d, want 1/1", got.DeadStable, got.DeadUnstable)
	}
	if got.Neonatal != 1 || got.Infant != 0 {
		t.Errorf("neonatal/infant = %d/%d, want 1/0", got.Neonatal, got.Infant)
	}

	// d1 classified from its discharge record, d2 from its own baby record.
	if got.DeadOutcomes[records.CategoryCriticalHome] != 1 {
		t.Errorf("critical/home = %d, want 1", got.DeadOutcomes[records.CategoryCriticalHome])
	}
	if got.DeadOutcomes[records.CategoryCriticalReferred] != 1 {
		t.Errorf("critical/referred = %d, want 1", got.DeadOutcomes[records.CategoryCriticalReferred])
	}
}

func TestMortality_UndischargedDeadBaby(t *testing.T) {
	// A dead baby that was never discharged must not appear in the
	// discharge-outcome distribution, whichever family its record came from.
	ds := NewDataset(&records.Bundle{
		Backup: []records.Baby{
			{UID: "d1", Hospital: "H1", Dead: true, Discharged: false,
				Source: records.SourceBackup},
		},
	}, clin(2024, 4, 1, 0, 0))

	got := Mortality(ds)
	if got.Overall.Deaths != 1 {
		t.Fatalf("deaths = %d, want 1", got.Overall.Deaths)
	}
	for category, n := range got.DeadOutcomes {
		if n != 0 {
			t.Errorf("DeadOutcomes[%s] = %d, want 0", category, n)
		}
	}
}

func TestMortalityByHospital(t *testing.T) {
	rows := MortalityByHospital(mortalityFixture())
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	h1 := rows[0]
	if h1.Hospital != "H1" || h1.TotalBabies != 2 || h1.TotalDeaths != 2 {
		t.Errorf("H1 = %+v", h1)
	}
	if h1.DeadInborn != 1 || h1.DeadOutborn != 1 || h1.DeadStable != 1 || h1.DeadUnstable != 1 {
		t.Errorf("H1 splits = %+v", h1)
	}
	if h1.Outcomes[records.CategoryCriticalHome] != 1 || h1.Outcomes[records.CategoryCriticalReferred] != 1 {
		t.Errorf("H1 outcomes = %+v", h1.Outcomes)
	}
}

func TestMortalityList(t *testing.T) {
	rows := MortalityList(mortalityFixture())
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}

	// Sorted by death date; the undated death sorts last.
	d1, d2 := rows[0], rows[1]
	if d1.UID != "d1" || d2.UID != "d2" {
		t.Fatalf("order = %s, %s", d1.UID, d2.UID)
	}

	if d1.Category != records.CategoryCriticalHome {
		t.Errorf("d1 category = %q", d1.Category)
	}
	if d1.CauseOfDeath != "sepsis" {
		t.Errorf("d1 cause = %q", d1.CauseOfDeath)
	}
	// The discharge record's weight shadows the baby record's.
	if d1.Weight != "1400" {
		t.Errorf("d1 weight = %q", d1.Weight)
	}
	if d1.AgeAtDeathDays == nil || *d1.AgeAtDeathDays != 10.0 {
		t.Errorf("d1 age at death = %v", d1.AgeAtDeathDays)
	}
	if d1.StayDays == nil || *d1.StayDays != 12.0 {
		t.Errorf("d1 stay = %v", d1.StayDays)
	}

	if d2.Category != records.CategoryCriticalReferred {
		t.Errorf("d2 category = %q", d2.Category)
	}
	if d2.Weight != records.NotAvailable {
		t.Errorf("d2 weight = %q, want the N/A sentinel", d2.Weight)
	}
	if d2.AgeAtDeathDays != nil {
		t.Errorf("d2 has no dates, age should stay nil")
	}
}
