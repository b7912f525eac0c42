// Package engine scores candidate identity records against a reference
// identity and classifies each candidate into a relevance tier. Scoring is
// pure and fail-soft: malformed or missing attributes degrade to zero
// contribution, never to an error.
package engine

import (
	"fmt"
	"time"
)

// Base attribute weights. They sum to 1.0 when all five attributes are
// present on both sides; otherwise the included weights are renormalized so
// the effective weights still sum to 1.0.
const (
	weightName        = 0.5
	weightDOB         = 0.2
	weightLocation    = 0.1
	weightNationality = 0.1
	weightGender      = 0.1
)

// Evaluator scores candidates against one reference identity. The reference
// is normalized once at construction and never mutated afterwards, so a
// single Evaluator is safe for concurrent use.
type Evaluator struct {
	reference normalizedRecord
	now       func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithClock overrides the time source used for age derivation.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

// NewEvaluator builds an evaluator around the reference identity.
func NewEvaluator(reference Record, opts ...Option) *Evaluator {
	e := &Evaluator{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.reference = normalizeRecord(reference, e.now())
	return e
}

// Score evaluates one candidate record against the reference identity.
func (e *Evaluator) Score(candidate Record) EvaluatedMatch {
	ref := e.reference
	cand := normalizeRecord(candidate, e.now())

	var nameScore float64
	if ref.fullName != nil && cand.fullName != nil {
		nameScore = compareNames(*ref.fullName, *cand.fullName)
	} else {
		var firstScore, lastScore, partsScore float64
		if ref.firstName != nil && cand.firstName != nil {
			firstScore = compareNames(*ref.firstName, *cand.firstName)
		}
		if ref.lastName != nil && cand.lastName != nil {
			lastScore = compareNames(*ref.lastName, *cand.lastName)
		}
		if len(ref.nameParts) > 0 && len(cand.nameParts) > 0 {
			larger := max(len(ref.nameParts), len(cand.nameParts))
			partsScore = float64(intersectionSize(ref.nameParts, cand.nameParts)) / float64(larger)
		}
		nameScore = max(firstScore, lastScore, partsScore)
	}

	dobComparable := ref.dobSupplied && cand.dobSupplied
	locationComparable := ref.location != nil && cand.location != nil
	nationalityComparable := ref.nationality != nil && cand.nationality != nil
	genderComparable := ref.gender != nil && cand.gender != nil

	var dobScore, locationScore, nationalityScore, genderScore float64
	if dobComparable {
		dobScore = compareDates(ref.dob, cand.dob)
	}
	if locationComparable {
		locationScore = compareLocations(*ref.location, *cand.location)
	}
	if nationalityComparable {
		nationalityScore = compareNationalities(*ref.nationality, *cand.nationality)
	}
	if genderComparable {
		genderScore = compareGenders(*ref.gender, *cand.gender)
	}

	// Renormalize weights over the attributes present on both sides. The
	// name weight is always included; the rest count only when comparable.
	nameWeight := float64(weightName)
	dobWeight := float64(weightDOB)
	locationWeight := float64(weightLocation)
	nationalityWeight := float64(weightNationality)
	genderWeight := float64(weightGender)

	totalWeight := nameWeight
	if dobComparable {
		totalWeight += dobWeight
	}
	if locationComparable {
		totalWeight += locationWeight
	}
	if nationalityComparable {
		totalWeight += nationalityWeight
	}
	if genderComparable {
		totalWeight += genderWeight
	}

	nameWeight = nameWeight / totalWeight
	dobWeight = includedWeight(dobWeight, totalWeight, dobComparable)
	locationWeight = includedWeight(locationWeight, totalWeight, locationComparable)
	nationalityWeight = includedWeight(nationalityWeight, totalWeight, nationalityComparable)
	genderWeight = includedWeight(genderWeight, totalWeight, genderComparable)

	relevanceScore := nameScore*nameWeight +
		dobScore*dobWeight +
		locationScore*locationWeight +
		nationalityScore*nationalityWeight +
		genderScore*genderWeight

	matchReasons := []string{}
	mismatchReasons := []string{}

	if nameScore > 0.8 {
		matchReasons = append(matchReasons, fmt.Sprintf("Name is a strong match (%.2f)", nameScore))
	} else if nameScore > 0.5 {
		matchReasons = append(matchReasons, fmt.Sprintf("Name is a partial match (%.2f)", nameScore))
	} else {
		mismatchReasons = append(mismatchReasons, fmt.Sprintf("Name is not a good match (%.2f)", nameScore))
	}

	if dobScore == 1.0 {
		matchReasons = append(matchReasons, "Date of birth matches exactly")
	} else if dobScore > 0 {
		matchReasons = append(matchReasons, "Date of birth partially matches")
	} else if dobComparable {
		mismatchReasons = append(mismatchReasons, "Date of birth does not match")
	}

	if locationScore > 0.8 {
		matchReasons = append(matchReasons, fmt.Sprintf("Location is a strong match (%.2f)", locationScore))
	} else if locationScore > 0.5 {
		matchReasons = append(matchReasons, fmt.Sprintf("Location is a partial match (%.2f)", locationScore))
	}

	if nationalityScore == 1.0 {
		matchReasons = append(matchReasons, "Nationality matches exactly")
	} else if nationalityComparable {
		mismatchReasons = append(mismatchReasons, "Nationality does not match")
	}

	if genderScore == 1.0 {
		matchReasons = append(matchReasons, "Gender matches")
	} else if genderComparable {
		mismatchReasons = append(mismatchReasons, "Gender does not match")
	}

	category, label := Classify(relevanceScore)

	return EvaluatedMatch{
		Record:          candidate,
		RelevanceScore:  relevanceScore,
		Category:        category,
		Label:           label,
		MatchReasons:    matchReasons,
		MismatchReasons: mismatchReasons,
	}
}

// ScoreBatch evaluates candidates in order.
func (e *Evaluator) ScoreBatch(candidates []Record) []EvaluatedMatch {
	out := make([]EvaluatedMatch, len(candidates))
	for i, candidate := range candidates {
		out[i] = e.Score(candidate)
	}
	return out
}

// CountByCategory tallies matches per category. The result always contains
// all four categories, zero-valued when empty.
func CountByCategory(matches []EvaluatedMatch) map[Category]int {
	counts := make(map[Category]int, len(categoryBands))
	for _, category := range Categories() {
		counts[category] = 0
	}
	for _, m := range matches {
		counts[m.Category]++
	}
	return counts
}

func includedWeight(weight, total float64, included bool) float64 {
	if !included {
		return 0.0
	}
	return weight / total
}
