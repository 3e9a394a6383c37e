package metrics

import (
	"strings"

	"github.com/firstembrace/kmc/internal/domain/records"
)

// KMCVerification tallies observation-day verification verdicts over every
// resolved baby's reconciled timeline.
type KMCVerification struct {
	Correct        int `json:"correct"`
	Incorrect      int `json:"incorrect"`
	UnableToVerify int `json:"unable_to_verify"`
	NotVerified    int `json:"not_verified"`
	TotalDays      int `json:"total_days"`
}

// VerifyKMC computes the KMC verification monitoring stats.
func VerifyKMC(ds *Dataset) KMCVerification {
	var out KMCVerification
	for i := range ds.Babies {
		for _, td := range records.Timeline(&ds.Babies[i]) {
			out.TotalDays++
			switch td.Verdict {
			case records.VerdictCorrect:
				out.Correct++
			case records.VerdictIncorrect:
				out.Incorrect++
			case records.VerdictUnableToVerify:
				out.UnableToVerify++
			default:
				out.NotVerified++
			}
		}
	}
	return out
}

// ObservationVerification is the coarser check for the observation
// collection: a document is either flagged incorrect or presumed fine.
type ObservationVerification struct {
	CorrectOrUnchecked int `json:"correct_or_not_checked"`
	Incorrect          int `json:"incorrect"`
	Total              int `json:"total"`
}

// VerifyObservations computes the observation verification stats. A
// reviewer comment or an explicit incorrect flag marks the document.
func VerifyObservations(ds *Dataset) ObservationVerification {
	var out ObservationVerification
	for _, o := range ds.Bundle.Observations {
		out.Total++
		switch {
		case strings.TrimSpace(o.Comment) != "":
			out.Incorrect++
		case o.FilledIncorrectly != nil && *o.FilledIncorrectly:
			out.Incorrect++
		default:
			out.CorrectOrUnchecked++
		}
	}
	return out
}
