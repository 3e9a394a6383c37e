package records

import (
	"strconv"
	"strings"
	"time"
)

// pick returns the first usable value from the priority chain: discharge
// record field, then baby record field, then the N/A sentinel. Resolution is
// per field; one field missing on the discharge record does not stop other
// fields from resolving there.
func pick(values ...*string) string {
	for _, v := range values {
		if v == nil {
			continue
		}
		s := strings.TrimSpace(*v)
		if s == "" || s == NotAvailable {
			continue
		}
		return s
	}
	return NotAvailable
}

// FieldAccess pairs the discharge-record and baby-record sources of one
// hierarchically resolved field.
type FieldAccess struct {
	FromDischarge func(*Discharge) *string
	FromBaby      func(*Baby) *string
}

// ResolveField applies the discharge-then-baby priority chain for a field.
func ResolveField(fa FieldAccess, d *Discharge, b *Baby) string {
	var dv, bv *string
	if d != nil && fa.FromDischarge != nil {
		dv = fa.FromDischarge(d)
	}
	if b != nil && fa.FromBaby != nil {
		bv = fa.FromBaby(b)
	}
	return pick(dv, bv)
}

// The resolvable discharge detail fields. Baby-side names differ per field;
// they are the legacy embedded equivalents.
var (
	FieldWeight = FieldAccess{
		FromDischarge: func(d *Discharge) *string { return d.Weight },
		FromBaby:      func(b *Baby) *string { return b.Weight },
	}
	FieldTemperature = FieldAccess{
		FromDischarge: func(d *Discharge) *string { return d.Temperature },
		FromBaby:      func(b *Baby) *string { return b.DischargeTemperature },
	}
	FieldRespiratoryRate = FieldAccess{
		FromDischarge: func(d *Discharge) *string { return d.RespiratoryRate },
		FromBaby:      func(b *Baby) *string { return b.DischargeRR },
	}
	FieldFeedMode = FieldAccess{
		FromDischarge: func(d *Discharge) *string { return d.FeedMode },
		FromBaby:      func(b *Baby) *string { return b.FeedMode },
	}
	FieldHealthStatus = FieldAccess{
		FromDischarge: func(d *Discharge) *string { return d.DangerSigns },
		FromBaby:      func(b *Baby) *string { return b.HealthStatus },
	}
	FieldDischargeReason = FieldAccess{
		FromDischarge: func(d *Discharge) *string { return d.Reason },
		FromBaby:      func(b *Baby) *string { return b.DischargeReason },
	}
)

// HierarchicalDischargeDate resolves when a baby left the facility: the
// discharge collection date first, then the baby record's own discharge
// date when the record is flagged discharged.
func HierarchicalDischargeDate(d *Discharge, b *Baby) *time.Time {
	if d != nil && d.Date != nil {
		return d.Date
	}
	if b != nil && b.Discharged && b.LastDischargeDate != nil {
		return b.LastDischargeDate
	}
	return nil
}

// CauseOfDeath resolves the recorded cause: discharge record first, then
// the baby record's own fields.
func CauseOfDeath(d *Discharge, b *Baby) string {
	var dv *string
	if d != nil {
		dv = d.CauseOfDeath
	}
	var bv *string
	if b != nil {
		bv = b.CauseOfDeath
	}
	return pick(dv, bv)
}

// CriticalReasons resolves the reasons a discharge was marked critical,
// falling back to the free-text discharge reason.
func CriticalReasons(d *Discharge) []string {
	if d == nil {
		return nil
	}
	if len(d.CriticalReasons) > 0 {
		return d.CriticalReasons
	}
	if d.Reason != nil {
		if r := strings.TrimSpace(*d.Reason); r != "" {
			return []string{r}
		}
	}
	return nil
}

// Categorize maps a discharge status and type pair onto a category. The
// mapping is exact after lowercasing; unrecognized combinations land in
// CategoryOther rather than failing.
func Categorize(status, dischargeType *string) DischargeCategory {
	s := lowerOrEmpty(status)
	t := lowerOrEmpty(dischargeType)
	switch {
	case s == "critical" && t == "home":
		return CategoryCriticalHome
	case s == "stable" && t == "home":
		return CategoryStableHome
	case s == "critical" && t == "referred":
		return CategoryCriticalReferred
	case t == "died":
		return CategoryDied
	default:
		return CategoryOther
	}
}

// CategorizeDischarge categorizes a discharge collection record.
func CategorizeDischarge(d *Discharge) DischargeCategory {
	if d == nil {
		return CategoryOther
	}
	return Categorize(d.Status, d.Type)
}

// CategorizeBaby categorizes the discharge embedded in a baby record. Both
// record families use the same embedded field names.
func CategorizeBaby(b *Baby) DischargeCategory {
	if b == nil {
		return CategoryOther
	}
	return Categorize(b.LastDischargeStatus, b.LastDischargeType)
}

func lowerOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s))
}

// lowBirthWeightGrams marks a baby unstable on weight alone.
const lowBirthWeightGrams = 1500

// Stable reports KMC stability: unstable when any clinical flag is set or a
// parseable weight is under 1500g. An unparseable weight is no evidence
// either way.
func Stable(b *Baby) bool {
	if b == nil {
		return true
	}
	if b.Flags.Any() {
		return false
	}
	for _, w := range []*string{b.BirthWeight, b.Weight} {
		if w == nil {
			continue
		}
		if g, err := strconv.ParseFloat(strings.TrimSpace(*w), 64); err == nil {
			if g < lowBirthWeightGrams {
				return false
			}
			break
		}
	}
	return true
}
