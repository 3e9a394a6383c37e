package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/firstembrace/kmc/internal/platform/timeutil"
)

// Doc is a raw collection document. Every accessor tolerates missing keys
// and wrong dynamic types; a field that cannot be read is simply absent.
type Doc map[string]any

// RefID extracts a document ID from a back-reference value, which is either
// a plain string ID or a structured reference whose path ends in the ID.
func RefID(v any) string {
	switch r := v.(type) {
	case string:
		if i := strings.LastIndex(r, "/"); i >= 0 {
			return r[i+1:]
		}
		return r
	case map[string]any:
		if p, ok := r["__ref__"].(string); ok {
			if i := strings.LastIndex(p, "/"); i >= 0 {
				return p[i+1:]
			}
			return p
		}
	}
	return ""
}

func (d Doc) str(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := d[k]; ok {
			if s, ok := v.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					return s, true
				}
			}
		}
	}
	return "", false
}

func (d Doc) strPtr(keys ...string) *string {
	if s, ok := d.str(keys...); ok {
		return &s
	}
	return nil
}

func (d Doc) boolVal(keys ...string) bool {
	for _, k := range keys {
		switch v := d[k].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			if strings.EqualFold(strings.TrimSpace(v), "true") {
				return true
			}
		case float64:
			if v != 0 {
				return true
			}
		case int:
			if v != 0 {
				return true
			}
		case int64:
			if v != 0 {
				return true
			}
		}
	}
	return false
}

func (d Doc) boolPtr(keys ...string) *bool {
	for _, k := range keys {
		switch v := d[k].(type) {
		case bool:
			b := v
			return &b
		case string:
			s := strings.TrimSpace(v)
			if strings.EqualFold(s, "true") {
				b := true
				return &b
			}
			if strings.EqualFold(s, "false") {
				b := false
				return &b
			}
		}
	}
	return nil
}

func (d Doc) floatVal(keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := d[k].(type) {
		case float64:
			return v, true
		case float32:
			return float64(v), true
		case int:
			return float64(v), true
		case int32:
			return float64(v), true
		case int64:
			return float64(v), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func (d Doc) floatPtr(keys ...string) *float64 {
	if f, ok := d.floatVal(keys...); ok {
		return &f
	}
	return nil
}

func (d Doc) intVal(keys ...string) (int, bool) {
	if f, ok := d.floatVal(keys...); ok {
		return int(f), true
	}
	return 0, false
}

func (d Doc) timePtr(keys ...string) *time.Time {
	for _, k := range keys {
		if v, ok := d[k]; ok {
			if t, ok := timeutil.Normalize(v); ok {
				return &t
			}
		}
	}
	return nil
}

func (d Doc) list(key string) []Doc {
	raw, ok := d[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Doc, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Doc(m))
		}
	}
	return out
}

// stringList reads a field that field data records either as a single string
// or as a list of strings.
func (d Doc) stringList(keys ...string) []string {
	for _, k := range keys {
		switch v := d[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return []string{s}
			}
		case []any:
			var out []string
			for _, item := range v {
				if s, ok := item.(string); ok {
					if s = strings.TrimSpace(s); s != "" {
						out = append(out, s)
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// ParseBaby converts a raw baby document into the canonical record. The
// source family decides which embedded discharge date field applies.
func ParseBaby(d Doc, src SourceFamily) Baby {
	uid, _ := d.str("UID", "uid")
	hospital, ok := d.str("hospitalName")
	if !ok {
		hospital = UnknownHospital
	}

	b := Baby{
		UID:             uid,
		Source:          src,
		Hospital:        hospital,
		Location:        d.strPtr("currentLocationOfTheBaby", "lastLocationBaby"),
		Nurse:           d.strPtr("nurseName"),
		PlaceOfDelivery: d.strPtr("placeOfDelivery"),
		BirthDate:       d.timePtr("dateOfBirth", "birthDate"),
		DeathDate:       d.timePtr("dateOfDeath", "deathDate"),
		Discharged:      d.boolVal("discharged"),
		Dead:            d.boolVal("deadBaby"),
		CauseOfDeath:    d.strPtr("causeofDeath", "causeOfDeath", "deathReason"),
		BirthWeight:     d.strPtr("birthWeight"),
		Weight:          d.strPtr("weight"),
		GestationalAge:  d.strPtr("gestationalAge"),
		InProgram:       d.boolVal("babyInProgram"),
		Flags: ClinicalFlags{
			OxygenTherapy:         d.boolVal("oxygenTherapy"),
			OnOxygen:              d.boolVal("onOxygen"),
			MechanicalVentilation: d.boolVal("mechanicalVentilation"),
			OnVentilator:          d.boolVal("onVentilator"),
			Sepsis:                d.boolVal("sepsis"),
			Jaundice:              d.boolVal("jaundice"),
			Hypoglycemia:          d.boolVal("hypoglycemia"),
			Hypothermia:           d.boolVal("hypothermia"),
			Apnea:                 d.boolVal("apnea"),
			FeedingDifficulty:     d.boolVal("feedingDifficulty"),
			Lethargy:              d.boolVal("lethargy"),
			Seizures:              d.boolVal("seizures"),
		},
		LastDischargeStatus: d.strPtr("lastDischargeStatus"),
		LastDischargeType:   d.strPtr("lastDischargeType"),

		DischargeTemperature: d.strPtr("babyTemperatureDischarge2"),
		DischargeRR:          d.strPtr("babyRRdischarge"),
		FeedMode:             d.strPtr("whatFeedMode"),
		HealthStatus:         d.strPtr("howsBabyHealth"),
		DischargeReason:      d.strPtr("dischargeReason"),
	}

	// Registration time may nest under the newer registration envelope.
	b.RegisteredAt = d.timePtr("registrationDate")
	if b.RegisteredAt == nil {
		if nested, ok := d["registrationDataType"].(map[string]any); ok {
			b.RegisteredAt = Doc(nested).timePtr("registrationDate")
		}
	}

	switch src {
	case SourceBackup:
		b.LastDischargeDate = d.timePtr("dischargeDate")
	default:
		b.LastDischargeDate = d.timePtr("lastDischargeDate")
	}

	for _, dayDoc := range d.list("observationDay") {
		b.LegacyDays = append(b.LegacyDays, parseLegacyDay(dayDoc))
	}
	return b
}

func parseLegacyDay(d Doc) LegacyDay {
	n, _ := d.intVal("ageDay", "ageDayNumber")
	minutes, _ := d.floatVal("totalKMCtimeDay")
	ld := LegacyDay{
		DayNumber:          n,
		Date:               d.timePtr("date"),
		KMCMinutes:         minutes,
		FilledCorrectly:    d.boolPtr("filledCorrectly"),
		KMCFilledCorrectly: d.boolPtr("kmcfilledcorrectly"),
	}
	if c, ok := d.str("mnecomment"); ok {
		ld.Comment = c
	}
	if raw, ok := d["verification"].(string); ok {
		ld.RawVerification = raw
	}
	for _, sd := range d.list("timeInKMC") {
		ld.Sessions = append(ld.Sessions, KMCSession{
			Start:           sd.timePtr("timeStartKMC"),
			End:             sd.timePtr("timeEndKMC"),
			DurationMinutes: sd.floatPtr("duration"),
			Provider:        sd.strPtr("provider"),
		})
	}
	return ld
}

// ParseDischarge converts a discharge collection document.
func ParseDischarge(d Doc) Discharge {
	uid, _ := d.str("UID", "uid")
	hospital, ok := d.str("hospitalName")
	if !ok {
		hospital = UnknownHospital
	}
	return Discharge{
		UID:             uid,
		Hospital:        hospital,
		Nurse:           d.strPtr("dischargeNurseName"),
		Date:            d.timePtr("dischargeDate"),
		Status:          d.strPtr("dischargeStatus"),
		Type:            d.strPtr("dischargeType"),
		Weight:          d.strPtr("dischargeWeight"),
		Temperature:     d.strPtr("dischargeTemperature"),
		RespiratoryRate: d.strPtr("dischargeRR"),
		FeedMode:        d.strPtr("feedMode"),
		DangerSigns:     d.strPtr("dischargeDangerSigns"),
		CriticalReasons: d.stringList("criticalReasons"),
		Reason:          d.strPtr("dischargeReason"),
		CauseOfDeath:    d.strPtr("causeOfDeath", "causeofDeath"),
	}
}

// ParseFollowUp converts a follow-up collection document. The baby UID is
// taken from the plain field or the structured back-reference.
func ParseFollowUp(d Doc) FollowUp {
	uid, ok := d.str("UID", "uid")
	if !ok {
		uid = RefID(d["idBaby"])
	}
	hospital, ok := d.str("hospitalName")
	if !ok {
		hospital = UnknownHospital
	}
	n, _ := d.intVal("followUpNumber")
	return FollowUp{
		UID:          uid,
		Hospital:     hospital,
		Nurse:        d.strPtr("nurseName"),
		Number:       n,
		Date:         d.timePtr("date", "followUpDate"),
		DueDate:      d.timePtr("followUpDueDate"),
		Status:       d.strPtr("followUpStatus"),
		SkinContacts: d.floatPtr("numberSkinContact"),
		KMCHours:     d.floatPtr("kmcHoursCount", "totalKMCTime"),
		Readmitted:   d.boolVal("readmitted"),
		SickVisit:    d.boolVal("sickVisit"),
	}
}

// ParseSession converts a flat KMC session document.
func ParseSession(d Doc) KMCSession {
	uid, ok := d.str("UID", "uid")
	if !ok {
		uid = RefID(d["idBaby"])
	}
	return KMCSession{
		BabyUID:         uid,
		Start:           d.timePtr("kmcStart", "timeStartKMC"),
		End:             d.timePtr("kmcEnd", "timeEndKMC"),
		DurationMinutes: d.floatPtr("kmcDuration", "duration"),
		Provider:        d.strPtr("kmcProvider", "provider"),
	}
}

// ParseDayAggregate converts a flat per-day document.
func ParseDayAggregate(d Doc) DayAggregate {
	uid, ok := d.str("UID", "uid")
	if !ok {
		uid = RefID(d["idBaby"])
	}
	n, _ := d.intVal("ageDayNumber", "ageDay")
	minutes, _ := d.floatVal("totalKMCToday")
	da := DayAggregate{
		BabyUID:    uid,
		DayNumber:  n,
		Date:       d.timePtr("ageDayDate"),
		KMCMinutes: minutes,
	}
	if s, ok := d.str("verificationStatus"); ok {
		da.VerificationStatus = s
	} else if nested, ok := d["verification"].(map[string]any); ok {
		da.VerificationStatus, _ = Doc(nested).str("status")
		da.VerificationNotes, _ = Doc(nested).str("notes")
	}
	if s, ok := d.str("verificationNotes"); ok {
		da.VerificationNotes = s
	}
	return da
}

// ParseObservation converts an observation document; only verification
// fields are retained.
func ParseObservation(d Doc) Observation {
	uid, ok := d.str("UID", "uid")
	if !ok {
		uid = RefID(d["idBaby"])
	}
	return Observation{
		BabyUID:           uid,
		Comment:           firstString(d, "comment", "mnecomment"),
		FilledIncorrectly: d.boolPtr("filledincorrectly", "filledIncorrectly"),
	}
}

func firstString(d Doc, keys ...string) string {
	s, _ := d.str(keys...)
	return s
}
