package handler

import (
	"veriscreen/internal/screening/engine"
	dErrors "veriscreen/pkg/domain-errors"
)

const maxNameLength = 256

// EvaluateRequest is the HTTP request body for POST /screening/evaluate.
type EvaluateRequest struct {
	Tenant map[string]any `json:"tenant"`
	// PipelineData is passed through unvalidated. Malformed pipeline shapes
	// yield zero candidates, not a rejected request.
	PipelineData map[string]any `json:"pipeline_data"`

	// Parsed values (populated by Validate)
	parsedReference engine.Record
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Tenant) == 0 {
		return dErrors.New(dErrors.CodeValidation, "tenant is required")
	}

	reference := engine.ParseRecord(r.Tenant)

	// Size validation (fail fast)
	names := []struct {
		field string
		value *string
	}{
		{"tenant.first_name", reference.FirstName},
		{"tenant.middle_name", reference.MiddleName},
		{"tenant.last_name", reference.LastName},
		{"tenant.full_name", reference.FullName},
	}
	for _, name := range names {
		if name.value != nil && len(*name.value) > maxNameLength {
			return dErrors.New(dErrors.CodeValidation, name.field+" must be at most 256 characters")
		}
	}

	// Required fields
	hasSplitName := reference.FirstName != nil && reference.LastName != nil
	if !hasSplitName && reference.FullName == nil {
		return dErrors.New(dErrors.CodeValidation, "tenant requires first_name and last_name, or full_name")
	}
	if reference.DOB == nil {
		return dErrors.New(dErrors.CodeValidation, "tenant.dob is required")
	}

	r.parsedReference = reference
	return nil
}

// ParsedReference returns the validated tenant identity.
func (r *EvaluateRequest) ParsedReference() engine.Record {
	return r.parsedReference
}
