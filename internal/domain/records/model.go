// Package records holds the canonical record types the analytics engine
// works on, plus the parsing, entity-resolution, and timeline-reconciliation
// logic that turns raw collection documents into them. Two generations of
// the mobile app wrote documents in different shapes; everything past this
// package sees a single shape.
package records

import (
	"time"
)

// SourceFamily identifies which upload path produced a baby record. Primary
// records come from the current app; backup records from the legacy sync
// path. When both exist for one UID the primary record wins outright.
type SourceFamily string

const (
	SourcePrimary SourceFamily = "baby"
	SourceBackup  SourceFamily = "babyBackUp"
)

// UnknownHospital is the bucket for records with no hospital name.
const UnknownHospital = "Unknown"

// NotAvailable is the sentinel returned by hierarchical field resolution
// when neither the discharge record nor the baby record carries a value.
const NotAvailable = "N/A"

// ClinicalFlags are the instability indicators recorded on a baby. Any true
// flag marks the baby unstable for KMC.
type ClinicalFlags struct {
	OxygenTherapy         bool
	OnOxygen              bool
	MechanicalVentilation bool
	OnVentilator          bool
	Sepsis                bool
	Jaundice              bool
	Hypoglycemia          bool
	Hypothermia           bool
	Apnea                 bool
	FeedingDifficulty     bool
	Lethargy              bool
	Seizures              bool
}

// Any reports whether at least one instability flag is set.
func (f ClinicalFlags) Any() bool {
	return f.OxygenTherapy || f.OnOxygen || f.MechanicalVentilation ||
		f.OnVentilator || f.Sepsis || f.Jaundice || f.Hypoglycemia ||
		f.Hypothermia || f.Apnea || f.FeedingDifficulty || f.Lethargy ||
		f.Seizures
}

// Baby is the resolved per-infant record. Numeric-looking clinical values
// (birth weight, gestational age) stay as raw strings: field data mixes
// "1450", "1450.0", and free text, and each consumer decides how strictly
// to parse.
type Baby struct {
	UID            string
	Source         SourceFamily
	Hospital       string
	Location       *string
	Nurse          *string
	PlaceOfDelivery *string

	BirthDate      *time.Time
	RegisteredAt   *time.Time
	DeathDate      *time.Time

	Discharged          bool
	LastDischargeDate   *time.Time
	LastDischargeStatus *string
	LastDischargeType   *string

	Dead          bool
	CauseOfDeath  *string
	BirthWeight   *string
	Weight        *string
	GestationalAge *string
	InProgram     bool
	Flags         ClinicalFlags

	// Legacy embedded discharge details, fallbacks for the hierarchical
	// field resolution when no discharge collection record exists.
	DischargeTemperature *string
	DischargeRR          *string
	FeedMode             *string
	HealthStatus         *string
	DischargeReason      *string

	// Legacy shape: per-day observations embedded in the baby document.
	LegacyDays []LegacyDay

	// Current shape: flat collections joined back by UID during acquisition.
	Days     []DayAggregate
	Sessions []KMCSession
}

// LegacyDay is one entry of the embedded observation-day list written by
// the first app generation.
type LegacyDay struct {
	DayNumber  int
	Date       *time.Time
	KMCMinutes float64
	Sessions   []KMCSession

	FilledCorrectly    *bool
	KMCFilledCorrectly *bool
	RawVerification    string
	Comment            string
}

// DayAggregate is one document of the per-day collection written by the
// current app generation.
type DayAggregate struct {
	BabyUID    string
	DayNumber  int
	Date       *time.Time
	KMCMinutes float64

	VerificationStatus string
	VerificationNotes  string
}

// KMCSession is a single skin-to-skin session. In the current shape sessions
// are a flat collection; in the legacy shape they nest under a day.
type KMCSession struct {
	BabyUID         string
	Start           *time.Time
	End             *time.Time
	DurationMinutes *float64
	Provider        *string
}

// Observation is a clinical observation document; only its verification
// fields feed the monitoring metrics.
type Observation struct {
	BabyUID           string
	Comment           string
	FilledIncorrectly *bool
}

// Discharge is a document from the dedicated discharge collection. It takes
// priority over discharge fields embedded in baby records.
type Discharge struct {
	UID      string
	Hospital string
	Nurse    *string

	Date   *time.Time
	Status *string
	Type   *string

	Weight          *string
	Temperature     *string
	RespiratoryRate *string
	FeedMode        *string
	DangerSigns     *string
	CriticalReasons []string
	Reason          *string
	CauseOfDeath    *string
}

// FollowUp is a post-discharge visit record.
type FollowUp struct {
	UID      string
	Hospital string
	Nurse    *string

	Number  int
	Date    *time.Time
	DueDate *time.Time
	Status  *string

	SkinContacts *float64
	KMCHours     *float64
	Readmitted   bool
	SickVisit    bool
}

// DischargeCategory is the normalized outcome of a discharge.
type DischargeCategory string

const (
	CategoryCriticalHome     DischargeCategory = "critical_home"
	CategoryStableHome       DischargeCategory = "stable_home"
	CategoryCriticalReferred DischargeCategory = "critical_referred"
	CategoryDied             DischargeCategory = "died"
	CategoryOther            DischargeCategory = "other"
)

// Categories lists every discharge category in report order.
func Categories() []DischargeCategory {
	return []DischargeCategory{
		CategoryCriticalHome,
		CategoryStableHome,
		CategoryCriticalReferred,
		CategoryDied,
		CategoryOther,
	}
}

// VerificationVerdict is the tri-state-plus-absent outcome of observation
// day verification.
type VerificationVerdict string

const (
	VerdictCorrect        VerificationVerdict = "correct"
	VerdictIncorrect      VerificationVerdict = "incorrect"
	VerdictUnableToVerify VerificationVerdict = "unable_to_verify"
	VerdictNotVerified    VerificationVerdict = "not_verified"
)

// TimelineDay is one reconciled observation day, identical for both record
// generations once built.
type TimelineDay struct {
	DayNumber  int
	Date       *time.Time
	KMCMinutes float64
	Sessions   []KMCSession
	Verdict    VerificationVerdict
	Comment    string
}
