package engine

import (
	"encoding/json"
	"time"
)

// Record is one identity record. A nil pointer means the attribute was not
// supplied; an empty string means it was supplied empty, which matters for
// weight renormalization. Extra carries passthrough attributes (id,
// risk_type, ...) untouched by scoring.
type Record struct {
	FirstName   *string
	MiddleName  *string
	LastName    *string
	FullName    *string
	DOB         *string
	Gender      *string
	Nationality *string
	Location    *string
	Extra       map[string]any
}

var scorableKeys = map[string]struct{}{
	"first_name":  {},
	"middle_name": {},
	"last_name":   {},
	"full_name":   {},
	"dob":         {},
	"gender":      {},
	"nationality": {},
	"location":    {},
}

// ParseRecord lifts the scorable attributes out of a raw mapping. Values of
// unexpected type (and explicit nulls) are left in Extra so they pass through
// to the output without participating in scoring.
func ParseRecord(raw map[string]any) Record {
	rec := Record{}
	for key, value := range raw {
		if _, scorable := scorableKeys[key]; !scorable {
			if rec.Extra == nil {
				rec.Extra = make(map[string]any)
			}
			rec.Extra[key] = value
			continue
		}

		field := rec.fieldFor(key)
		switch v := value.(type) {
		case string:
			s := v
			*field = &s
		case time.Time:
			s := v.Format(isoDate)
			*field = &s
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]any)
			}
			rec.Extra[key] = value
		}
	}
	return rec
}

func (r *Record) fieldFor(key string) **string {
	switch key {
	case "first_name":
		return &r.FirstName
	case "middle_name":
		return &r.MiddleName
	case "last_name":
		return &r.LastName
	case "full_name":
		return &r.FullName
	case "dob":
		return &r.DOB
	case "gender":
		return &r.Gender
	case "nationality":
		return &r.Nationality
	case "location":
		return &r.Location
	}
	return nil
}

// ToMap renders the record as a flat mapping: the Extra passthrough plus the
// supplied attributes. A parseable dob is rendered back as YYYY-MM-DD
// regardless of the format it was supplied in.
func (r Record) ToMap() map[string]any {
	out := make(map[string]any, len(r.Extra)+8)
	for k, v := range r.Extra {
		out[k] = v
	}

	putString(out, "first_name", r.FirstName)
	putString(out, "middle_name", r.MiddleName)
	putString(out, "last_name", r.LastName)
	putString(out, "full_name", r.FullName)
	putString(out, "gender", r.Gender)
	putString(out, "nationality", r.Nationality)
	putString(out, "location", r.Location)

	if r.DOB != nil {
		if parsed, ok := parseDOB(*r.DOB); ok {
			out["dob"] = parsed.Format(isoDate)
		} else {
			out["dob"] = *r.DOB
		}
	}
	return out
}

// MarshalJSON serializes via ToMap.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON decodes through ParseRecord, so type rules match the pipeline
// extraction path.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ParseRecord(raw)
	return nil
}

// EvaluatedMatch is a candidate record augmented with its evaluation.
type EvaluatedMatch struct {
	Record          Record
	RelevanceScore  float64
	Category        Category
	Label           string
	MatchReasons    []string
	MismatchReasons []string
}

// ToMap renders the evaluated match as a flat mapping: the original record
// fields plus the evaluation fields.
func (m EvaluatedMatch) ToMap() map[string]any {
	out := m.Record.ToMap()
	out["relevance_score"] = m.RelevanceScore
	out["match_category"] = string(m.Category)
	out["match_label"] = m.Label
	out["match_reasons"] = m.MatchReasons
	out["mismatch_reasons"] = m.MismatchReasons
	return out
}

// MarshalJSON serializes via ToMap so HTTP responses and stored results share
// one rendering.
func (m EvaluatedMatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

// UnmarshalJSON rebuilds an evaluated match from its flat rendering. Used by
// the store and cache read paths.
func (m *EvaluatedMatch) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if score, ok := raw["relevance_score"].(float64); ok {
		m.RelevanceScore = score
	}
	if category, ok := raw["match_category"].(string); ok {
		m.Category = Category(category)
	}
	if label, ok := raw["match_label"].(string); ok {
		m.Label = label
	}
	m.MatchReasons = stringSlice(raw["match_reasons"])
	m.MismatchReasons = stringSlice(raw["mismatch_reasons"])

	delete(raw, "relevance_score")
	delete(raw, "match_category")
	delete(raw, "match_label")
	delete(raw, "match_reasons")
	delete(raw, "mismatch_reasons")
	m.Record = ParseRecord(raw)
	return nil
}

func putString(out map[string]any, key string, value *string) {
	if value != nil {
		out[key] = *value
	}
}

func stringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
