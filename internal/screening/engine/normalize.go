package engine

import (
	"regexp"
	"strings"
	"time"

	platformstrings "veriscreen/pkg/platform/strings"
)

const isoDate = "2006-01-02"

// nonWordPattern strips everything that is not a letter, digit, underscore,
// or whitespace. No replacement space is inserted, so "John-Doe" collapses to
// "johndoe"; the existing behavior is asserted by callers and kept as is.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

// dobFormats are tried in order; the first that parses wins. Ambiguous
// day/month strings therefore resolve day-first.
var dobFormats = []string{
	isoDate,
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
}

// NormalizeName strips special characters and lower-cases the name.
// Normalization is idempotent.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToLower(nonWordPattern.ReplaceAllString(name, ""))
}

func parseDOB(raw string) (time.Time, bool) {
	for _, format := range dobFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ageAt returns age in whole years at the given instant, counting the
// birthday as not yet reached when (month, day) of now precedes (month, day)
// of the birth date.
func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// normalizedRecord is the comparison-ready form of a Record. Name fields hold
// normalized values; gender, nationality, and location stay raw because their
// comparators normalize lazily. dobSupplied stays true for an unparseable
// date so the attribute still counts as present for weighting.
type normalizedRecord struct {
	firstName   *string
	middleName  *string
	lastName    *string
	fullName    *string
	nameParts   []string
	dob         *time.Time
	dobSupplied bool
	age         *int
	gender      *string
	nationality *string
	location    *string
}

func normalizeRecord(rec Record, now time.Time) normalizedRecord {
	norm := normalizedRecord{
		gender:      rec.Gender,
		nationality: rec.Nationality,
		location:    rec.Location,
	}

	norm.firstName = normalizeNameField(rec.FirstName)
	norm.middleName = normalizeNameField(rec.MiddleName)
	norm.lastName = normalizeNameField(rec.LastName)
	norm.fullName = normalizeNameField(rec.FullName)

	var tokens []string
	for _, field := range []*string{norm.firstName, norm.middleName, norm.lastName, norm.fullName} {
		if field != nil && *field != "" {
			tokens = append(tokens, strings.Fields(*field)...)
		}
	}
	norm.nameParts = platformstrings.DedupeAndTrimLower(tokens)

	if rec.DOB != nil {
		norm.dobSupplied = true
		if parsed, ok := parseDOB(*rec.DOB); ok {
			norm.dob = &parsed
			age := ageAt(parsed, now)
			norm.age = &age
		}
	}

	return norm
}

func normalizeNameField(field *string) *string {
	if field == nil {
		return nil
	}
	normalized := NormalizeName(*field)
	return &normalized
}
