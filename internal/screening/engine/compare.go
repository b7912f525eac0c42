package engine

import (
	"strings"
	"time"

	platformstrings "veriscreen/pkg/platform/strings"
)

// genderSynonyms maps common gender representations onto a canonical form.
// Unknown values pass through unchanged and compare literally.
var genderSynonyms = map[string]string{
	"m":      "male",
	"f":      "female",
	"male":   "male",
	"female": "female",
	"man":    "male",
	"woman":  "female",
}

// compareNames scores two names by taking the best of three signals: an
// edit-distance ratio over the full string, Jaro-Winkler similarity, and the
// fraction of the first name's tokens found in the second. The token signal
// is intentionally asymmetric so compound reference names still score high
// against shorter candidate forms.
func compareNames(referenceName, candidateName string) float64 {
	if referenceName == "" || candidateName == "" {
		return 0.0
	}

	referenceName = NormalizeName(referenceName)
	candidateName = NormalizeName(candidateName)

	sequenceScore := editRatio(referenceName, candidateName)
	jaroWinklerScore := jaroWinkler(referenceName, candidateName)
	overlapScore := tokenOverlapRatio(referenceName, candidateName)

	return max(sequenceScore, jaroWinklerScore, overlapScore)
}

// tokenOverlapRatio returns |tokens(a) ∩ tokens(b)| / |tokens(a)|.
func tokenOverlapRatio(a, b string) float64 {
	aParts := platformstrings.DedupeAndTrimLower(strings.Fields(a))
	if len(aParts) == 0 {
		return 0.0
	}
	bParts := platformstrings.DedupeAndTrimLower(strings.Fields(b))

	return float64(intersectionSize(aParts, bParts)) / float64(len(aParts))
}

func intersectionSize(a, b []string) int {
	set := make(map[string]struct{}, len(b))
	for _, p := range b {
		set[p] = struct{}{}
	}
	common := 0
	for _, p := range a {
		if _, ok := set[p]; ok {
			common++
		}
	}
	return common
}

// compareDates scores two birth dates: exact match 1.0, same year 0.5,
// otherwise 0.0. Symmetric in its arguments.
func compareDates(a, b *time.Time) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	if a.Equal(*b) {
		return 1.0
	}
	if a.Year() == b.Year() {
		return 0.5
	}
	return 0.0
}

// compareLocations scores two locations with the edit-distance ratio after
// name-style normalization. No gazetteer or geocoding.
func compareLocations(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	return editRatio(NormalizeName(a), NormalizeName(b))
}

// compareNationalities scores 1.0 on exact match after normalization.
func compareNationalities(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	if NormalizeName(a) == NormalizeName(b) {
		return 1.0
	}
	return 0.0
}

// compareGenders maps both sides through the synonym table and scores 1.0 on
// exact match.
func compareGenders(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	a = strings.TrimSpace(strings.ToLower(a))
	b = strings.TrimSpace(strings.ToLower(b))

	if canonical, ok := genderSynonyms[a]; ok {
		a = canonical
	}
	if canonical, ok := genderSynonyms[b]; ok {
		b = canonical
	}

	if a == b {
		return 1.0
	}
	return 0.0
}
