package metrics

import (
	"strings"

	"github.com/firstembrace/kmc/internal/domain/records"
	"github.com/firstembrace/kmc/internal/platform/timeutil"
)

// targetDailyMinutes is the daily KMC duration the program aims for.
const targetDailyMinutes = 720

// ProgramIndicators is the clinical-practice panel for the eligible
// cohort: initiation, daily dose, discharge condition, and post-discharge
// continuation. Indicators whose source data the app does not yet capture
// report zero ratios rather than disappearing, so panels keep their shape.
type ProgramIndicators struct {
	InitiationAny       Ratio   `json:"initiation_any"`
	InitiationWithin24h Ratio   `json:"initiation_within_24h"`
	MeanDailyKMCHours   float64 `json:"mean_daily_kmc_hours"`
	DaysAtTarget        Ratio   `json:"days_at_target"`
	ExclusiveBreastmilk Ratio   `json:"exclusive_breastmilk"`
	Hypothermia         Ratio   `json:"hypothermia_on_admission"`
	DischargedCritical  Ratio   `json:"discharged_critical"`
	Counselling         Ratio   `json:"counselling_coverage"`
	Day7KMCContinuation Ratio   `json:"day7_kmc_continuation"`
	Day7CareSeeking     Ratio   `json:"day7_care_seeking"`
	Day28KMCContinuation Ratio  `json:"day28_kmc_continuation"`
	Day28CareSeeking     Ratio  `json:"day28_care_seeking"`
	AdverseEvents        Ratio  `json:"adverse_events"`
}

// followUpBucketDay maps a visit number to the day-7 or day-28 continuation
// bucket; zero means the visit feeds neither.
func followUpBucketDay(number int) int {
	switch number {
	case 1, 7:
		return 7
	case 2, 28:
		return 28
	default:
		return 0
	}
}

// Program computes the clinical-practice panel.
func Program(ds *Dataset) ProgramIndicators {
	eligible := eligibleBabies(ds)

	var anyKMC, within24 int
	var totalMinutes float64
	var totalDays, targetDays int

	for _, b := range eligible {
		if records.HasAnyKMC(b) {
			anyKMC++
		}
		if b.BirthDate != nil {
			if first := records.FirstKMC(b); first != nil {
				if timeutil.HoursBetween(*b.BirthDate, *first) <= 24 {
					within24++
				}
			}
			totalDays += babyDays(b, ds.Now)
		}
		for _, m := range records.DailyKMCMinutes(b) {
			if m <= 0 {
				continue
			}
			totalMinutes += m
			if m >= targetDailyMinutes {
				targetDays++
			}
		}
	}

	out := ProgramIndicators{
		InitiationAny:       NewRatio(anyKMC, len(eligible)),
		InitiationWithin24h: NewRatio(within24, len(eligible)),
		MeanDailyKMCHours:   round2(safeDiv(totalMinutes/60, float64(totalDays))),
		DaysAtTarget:        NewRatio(targetDays, totalDays),
		DischargedCritical:  dischargedCritical(eligible),
	}

	day7, day28 := continuation(ds, eligible)
	out.Day7KMCContinuation = day7.kmc
	out.Day7CareSeeking = day7.care
	out.Day28KMCContinuation = day28.kmc
	out.Day28CareSeeking = day28.care
	return out
}

// dischargedCritical measures the share of live, non-transferred discharges
// that left in critical condition.
func dischargedCritical(eligible []*records.Baby) Ratio {
	var den, num int
	for _, b := range eligible {
		if !b.Discharged || b.Dead {
			continue
		}
		status := ""
		if b.LastDischargeStatus != nil {
			status = strings.ToLower(*b.LastDischargeStatus)
		}
		if strings.Contains(status, "refer") || strings.Contains(status, "transfer") {
			continue
		}
		den++
		if strings.Contains(status, "critical") {
			num++
		}
	}
	return NewRatio(num, den)
}

type continuationBucket struct {
	kmc  Ratio
	care Ratio
}

// continuation derives post-discharge KMC continuation and care seeking
// from completed follow-up contacts, bucketed to day 7 and day 28.
func continuation(ds *Dataset, eligible []*records.Baby) (day7, day28 continuationBucket) {
	eligibleSet := make(map[string]struct{}, len(eligible))
	for _, b := range eligible {
		eligibleSet[b.UID] = struct{}{}
	}

	type acc struct{ den, kmc, care int }
	buckets := map[int]*acc{7: {}, 28: {}}
	seen := map[int]map[string]struct{}{7: {}, 28: {}}

	for _, f := range ds.Bundle.FollowUps {
		day := followUpBucketDay(f.Number)
		if day == 0 || f.UID == "" {
			continue
		}
		if _, ok := eligibleSet[f.UID]; !ok {
			continue
		}
		if f.Status == nil {
			continue
		}
		if _, ok := contactedStatuses[strings.ToLower(strings.TrimSpace(*f.Status))]; !ok {
			continue
		}
		if _, ok := seen[day][f.UID]; ok {
			continue
		}
		seen[day][f.UID] = struct{}{}

		b := buckets[day]
		b.den++
		if f.KMCHours != nil && *f.KMCHours > 0 {
			b.kmc++
		}
		if f.Readmitted || f.SickVisit {
			b.care++
		}
	}

	day7 = continuationBucket{
		kmc:  NewRatio(buckets[7].kmc, buckets[7].den),
		care: NewRatio(buckets[7].care, buckets[7].den),
	}
	day28 = continuationBucket{
		kmc:  NewRatio(buckets[28].kmc, buckets[28].den),
		care: NewRatio(buckets[28].care, buckets[28].den),
	}
	return day7, day28
}
