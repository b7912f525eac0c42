package engine

// Category is one of the four ordered relevance tiers.
type Category string

const (
	CategoryHighRelevance   Category = "HIGH_RELEVANCE"
	CategoryMediumRelevance Category = "MEDIUM_RELEVANCE"
	CategoryLowRelevance    Category = "LOW_RELEVANCE"
	CategoryNotRelevant     Category = "NOT_RELEVANT"
)

type categoryBand struct {
	category Category
	minScore float64
	label    string
}

// categoryBands is ordered highest threshold first; classification walks it
// top down and returns the first band whose threshold the score meets.
// NOT_RELEVANT has threshold 0.0, so every score in [0,1] lands somewhere.
var categoryBands = []categoryBand{
	{CategoryHighRelevance, 0.8, "Highly Relevant Match"},
	{CategoryMediumRelevance, 0.6, "Potentially Relevant Match"},
	{CategoryLowRelevance, 0.4, "Low Relevance Match"},
	{CategoryNotRelevant, 0.0, "Not Relevant"},
}

// Classify maps a relevance score to its category and human-readable label.
func Classify(score float64) (Category, string) {
	for _, band := range categoryBands {
		if score >= band.minScore {
			return band.category, band.label
		}
	}
	last := categoryBands[len(categoryBands)-1]
	return last.category, last.label
}

// Categories returns the four categories in descending relevance order.
func Categories() []Category {
	out := make([]Category, len(categoryBands))
	for i, band := range categoryBands {
		out[i] = band.category
	}
	return out
}
