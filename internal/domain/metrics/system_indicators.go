package metrics

import (
	"strings"

	"github.com/firstembrace/kmc/internal/domain/records"
	"github.com/firstembrace/kmc/internal/platform/timeutil"
)

// ContactabilitySchedule lists the post-birth days on which families should
// be reachable for follow-up.
var ContactabilitySchedule = []int{7, 14, 21, 28}

// Exposure bands for daily KMC duration, in minutes.
const (
	exposureLowMax    = 120 // under 2h
	exposureMidMax    = 480 // 2h to under 8h
	exposureHighMax   = 720 // 8h to under 12h
	exposureTargetMin = 720 // 12h and above
)

// ExposureBands are the histogram keys in ascending order.
var ExposureBands = []string{"0-2h", "2-8h", "8-12h", "12h+"}

// SystemIndicators is the health-system performance panel: identification,
// enrollment, observation coverage, transfers, and family contactability
// for the eligible cohort.
type SystemIndicators struct {
	EligibleIdentified     Ratio              `json:"eligible_identified"`
	InbornEligible         Ratio              `json:"inborn_eligible"`
	EnrollmentCompleteness Ratio              `json:"enrollment_completeness"`
	ObservedDays           Ratio              `json:"observed_days"`
	FacilityCoverage       float64            `json:"facility_coverage_pct"`
	EarlyTransfers         Ratio              `json:"early_transfers"`
	Contactability         map[int]Ratio      `json:"contactability"`
	ExposureHistogram      map[string]float64 `json:"exposure_histogram"`
}

// System computes the system-performance panel.
func System(ds *Dataset) SystemIndicators {
	eligible := eligibleBabies(ds)

	out := SystemIndicators{
		EligibleIdentified: NewRatio(len(eligible), countResolved(ds)),
		// Single-facility deployments; becomes a real ratio with the
		// multi-site rollout.
		FacilityCoverage:  100.0,
		Contactability:    make(map[int]Ratio, len(ContactabilitySchedule)),
		ExposureHistogram: make(map[string]float64, len(ExposureBands)),
	}

	var inborn, enrolled int
	var analyzedDays, observedDays int
	var inbornDen, earlyTransfers int
	bandDays := make(map[string]int, len(ExposureBands))

	eligibleSet := make(map[string]struct{}, len(eligible))
	for _, b := range eligible {
		eligibleSet[b.UID] = struct{}{}
	}

	// Contactability counts scheduled follow-up records, not babies: each
	// record numbered on the schedule is one due contact.
	contactNum := make(map[int]int, len(ContactabilitySchedule))
	contactDen := make(map[int]int, len(ContactabilitySchedule))
	scheduled := make(map[int]struct{}, len(ContactabilitySchedule))
	for _, day := range ContactabilitySchedule {
		scheduled[day] = struct{}{}
	}
	for _, f := range ds.Bundle.FollowUps {
		if _, ok := eligibleSet[f.UID]; !ok {
			continue
		}
		if _, ok := scheduled[f.Number]; !ok {
			continue
		}
		contactDen[f.Number]++
		if f.Status == nil {
			continue
		}
		if _, ok := contactedStatuses[strings.ToLower(strings.TrimSpace(*f.Status))]; ok {
			contactNum[f.Number]++
		}
	}

	for _, b := range eligible {
		if records.InbornAssumed(b) {
			inborn++
			inbornDen++
			if earlyTransfer(b) {
				earlyTransfers++
			}
		}
		if b.InProgram {
			enrolled++
		}

		if b.BirthDate == nil {
			continue
		}

		// Every calendar day from birth through discharge-or-now counts as
		// one analyzed day, the bounds included.
		end := ds.Now
		if b.LastDischargeDate != nil {
			end = *b.LastDischargeDate
		}
		daily := records.DailyKMCMinutes(b)
		last := timeutil.StartOfClinicDay(end)
		for day := timeutil.StartOfClinicDay(*b.BirthDate); !day.After(last); day = day.AddDate(0, 0, 1) {
			m := daily[timeutil.DateKey(day)]
			if m > 0 {
				observedDays++
			}
			bandDays[exposureBand(m)]++
			analyzedDays++
		}
	}

	out.InbornEligible = NewRatio(inborn, len(eligible))
	out.EnrollmentCompleteness = NewRatio(enrolled, len(eligible))
	out.ObservedDays = NewRatio(observedDays, analyzedDays)
	out.EarlyTransfers = NewRatio(earlyTransfers, inbornDen)
	for _, day := range ContactabilitySchedule {
		out.Contactability[day] = NewRatio(contactNum[day], contactDen[day])
	}
	for _, band := range ExposureBands {
		out.ExposureHistogram[band] = pct(bandDays[band], analyzedDays)
	}
	return out
}

func countResolved(ds *Dataset) int {
	return len(ds.Babies)
}

func exposureBand(minutes float64) string {
	switch {
	case minutes < exposureLowMax:
		return ExposureBands[0]
	case minutes < exposureMidMax:
		return ExposureBands[1]
	case minutes < exposureHighMax:
		return ExposureBands[2]
	default:
		return ExposureBands[3]
	}
}

// earlyTransfer detects an inborn baby moved out within its first day.
func earlyTransfer(b *records.Baby) bool {
	if b.LastDischargeStatus == nil || b.BirthDate == nil || b.LastDischargeDate == nil {
		return false
	}
	status := strings.ToLower(*b.LastDischargeStatus)
	if !strings.Contains(status, "refer") && !strings.Contains(status, "transfer") {
		return false
	}
	return b.LastDischargeDate.Sub(*b.BirthDate).Hours() < 24
}

// contactedStatuses are the follow-up statuses proving the family was
// reached.
var contactedStatuses = map[string]struct{}{"completed": {}, "contacted": {}}
