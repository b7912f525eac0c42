package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	t.Run("maps scorable strings onto fields", func(t *testing.T) {
		rec := ParseRecord(map[string]any{
			"first_name":  "John",
			"middle_name": "Q",
			"last_name":   "Doe",
			"full_name":   "John Q Doe",
			"dob":         "1990-01-01",
			"gender":      "male",
			"nationality": "US",
			"location":    "New York",
		})

		require.NotNil(t, rec.FirstName)
		assert.Equal(t, "John", *rec.FirstName)
		require.NotNil(t, rec.FullName)
		assert.Equal(t, "John Q Doe", *rec.FullName)
		require.NotNil(t, rec.DOB)
		assert.Equal(t, "1990-01-01", *rec.DOB)
		assert.Nil(t, rec.Extra)
	})

	t.Run("keeps unknown keys in extra", func(t *testing.T) {
		rec := ParseRecord(map[string]any{
			"id":         42,
			"risk_type":  "sanctions",
			"last_name":  "Doe",
			"confidence": 0.97,
		})

		assert.Equal(t, 42, rec.Extra["id"])
		assert.Equal(t, "sanctions", rec.Extra["risk_type"])
		assert.Equal(t, 0.97, rec.Extra["confidence"])
		require.NotNil(t, rec.LastName)
	})

	t.Run("null scorable values stay out of the fields", func(t *testing.T) {
		rec := ParseRecord(map[string]any{
			"first_name": "John",
			"dob":        nil,
		})

		assert.Nil(t, rec.DOB)
		assert.Contains(t, rec.Extra, "dob")
	})

	t.Run("non string scorable values pass through unscored", func(t *testing.T) {
		rec := ParseRecord(map[string]any{
			"last_name": "Doe",
			"dob":       19900101,
		})

		assert.Nil(t, rec.DOB)
		assert.Equal(t, 19900101, rec.Extra["dob"])
	})

	t.Run("time values render as iso dates", func(t *testing.T) {
		rec := ParseRecord(map[string]any{
			"dob": time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		})

		require.NotNil(t, rec.DOB)
		assert.Equal(t, "1990-01-01", *rec.DOB)
	})
}

func TestEvaluatedMatchToMap(t *testing.T) {
	evaluator := NewEvaluator(Record{FirstName: strPtr("John"), LastName: strPtr("Doe")})

	t.Run("rewrites parseable dob as iso", func(t *testing.T) {
		match := evaluator.Score(ParseRecord(map[string]any{
			"id":         7,
			"first_name": "John",
			"last_name":  "Doe",
			"dob":        "15/05/1980",
		}))

		out := match.ToMap()
		assert.Equal(t, "1980-05-15", out["dob"])
		assert.Equal(t, 7, out["id"])
		assert.Equal(t, "John", out["first_name"])
		assert.Equal(t, string(CategoryHighRelevance), out["match_category"])
		assert.Equal(t, "Highly Relevant Match", out["match_label"])
		assert.NotContains(t, out, "middle_name")
	})

	t.Run("keeps unparseable dob verbatim", func(t *testing.T) {
		match := evaluator.Score(ParseRecord(map[string]any{
			"first_name": "John",
			"last_name":  "Doe",
			"dob":        "circa 1980",
		}))

		out := match.ToMap()
		assert.Equal(t, "circa 1980", out["dob"])
	})

	t.Run("omits dob when absent", func(t *testing.T) {
		match := evaluator.Score(Record{FirstName: strPtr("John"), LastName: strPtr("Doe")})

		assert.NotContains(t, match.ToMap(), "dob")
	})
}

func TestEvaluatedMatchRoundTrip(t *testing.T) {
	evaluator := NewEvaluator(Record{FirstName: strPtr("John"), LastName: strPtr("Doe")})
	match := evaluator.Score(ParseRecord(map[string]any{
		"id":         7,
		"first_name": "Johnny",
		"last_name":  "Doe",
		"dob":        "1991-01-01",
	}))

	raw, err := json.Marshal(match)
	require.NoError(t, err)

	var decoded EvaluatedMatch
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, match.RelevanceScore, decoded.RelevanceScore)
	assert.Equal(t, match.Category, decoded.Category)
	assert.Equal(t, match.Label, decoded.Label)
	assert.Equal(t, match.MatchReasons, decoded.MatchReasons)
	assert.Equal(t, match.MismatchReasons, decoded.MismatchReasons)
	assert.Equal(t, float64(7), decoded.Record.Extra["id"], "JSON numbers decode as float64")
	require.NotNil(t, decoded.Record.FirstName)
	assert.Equal(t, "Johnny", *decoded.Record.FirstName)
}

func TestEvaluatedMatchMarshalJSON(t *testing.T) {
	evaluator := NewEvaluator(Record{FirstName: strPtr("John"), LastName: strPtr("Doe")})
	match := evaluator.Score(Record{FirstName: strPtr("John"), LastName: strPtr("Doe")})

	raw, err := json.Marshal(match)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 1.0, decoded["relevance_score"])
	assert.Equal(t, "HIGH_RELEVANCE", decoded["match_category"])
	assert.Equal(t, []any{"Name is a strong match (1.00)"}, decoded["match_reasons"])
	assert.Equal(t, []any{}, decoded["mismatch_reasons"], "empty reasons serialize as an array, not null")
}
