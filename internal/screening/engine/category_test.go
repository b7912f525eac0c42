package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  Category
		label string
	}{
		{name: "perfect score", score: 1.0, want: CategoryHighRelevance, label: "Highly Relevant Match"},
		{name: "high boundary is inclusive", score: 0.8, want: CategoryHighRelevance, label: "Highly Relevant Match"},
		{name: "just under high", score: 0.7999, want: CategoryMediumRelevance, label: "Potentially Relevant Match"},
		{name: "medium boundary is inclusive", score: 0.6, want: CategoryMediumRelevance, label: "Potentially Relevant Match"},
		{name: "low boundary is inclusive", score: 0.4, want: CategoryLowRelevance, label: "Low Relevance Match"},
		{name: "just under low", score: 0.3999, want: CategoryNotRelevant, label: "Not Relevant"},
		{name: "zero", score: 0.0, want: CategoryNotRelevant, label: "Not Relevant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, label := Classify(tt.score)
			assert.Equal(t, tt.want, category)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestCategoriesOrderedByRelevance(t *testing.T) {
	assert.Equal(t, []Category{
		CategoryHighRelevance,
		CategoryMediumRelevance,
		CategoryLowRelevance,
		CategoryNotRelevant,
	}, Categories())
}
