package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "veriscreen/pkg/domain-errors"
)

// EvaluateRequestSuite tests EvaluateRequest validation and parsing.
type EvaluateRequestSuite struct {
	suite.Suite
}

func TestEvaluateRequestSuite(t *testing.T) {
	suite.Run(t, new(EvaluateRequestSuite))
}

func (s *EvaluateRequestSuite) validRequest() *EvaluateRequest {
	return &EvaluateRequest{
		Tenant: map[string]any{
			"first_name": "John",
			"last_name":  "Doe",
			"dob":        "1990-01-01",
		},
		PipelineData: map[string]any{"pipeline": []any{}},
	}
}

func (s *EvaluateRequestSuite) TestValidation() {
	s.Run("valid request passes", func() {
		req := s.validRequest()
		s.NoError(req.Validate())
	})

	s.Run("missing tenant rejected", func() {
		req := s.validRequest()
		req.Tenant = nil

		err := req.Validate()
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "tenant is required")
	})

	s.Run("missing dob rejected", func() {
		req := s.validRequest()
		delete(req.Tenant, "dob")

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "dob is required")
	})

	s.Run("first name alone rejected", func() {
		req := s.validRequest()
		delete(req.Tenant, "last_name")

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "first_name and last_name, or full_name")
	})

	s.Run("full name substitutes for split name", func() {
		req := s.validRequest()
		delete(req.Tenant, "first_name")
		delete(req.Tenant, "last_name")
		req.Tenant["full_name"] = "John Doe"

		s.NoError(req.Validate())
	})

	s.Run("name exceeding max length rejected", func() {
		req := s.validRequest()
		req.Tenant["first_name"] = strings.Repeat("a", maxNameLength+1)

		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "at most 256 characters")
	})

	s.Run("name at max length allowed", func() {
		req := s.validRequest()
		req.Tenant["last_name"] = strings.Repeat("a", maxNameLength)

		s.NoError(req.Validate())
	})

	s.Run("missing pipeline data allowed", func() {
		req := s.validRequest()
		req.PipelineData = nil

		s.NoError(req.Validate())
	})
}

func (s *EvaluateRequestSuite) TestParsedReference() {
	req := s.validRequest()
	req.Tenant["gender"] = "F"
	req.Tenant["case_id"] = "c-17"
	s.Require().NoError(req.Validate())

	reference := req.ParsedReference()
	s.Require().NotNil(reference.FirstName)
	s.Equal("John", *reference.FirstName)
	s.Require().NotNil(reference.DOB)
	s.Equal("1990-01-01", *reference.DOB)
	s.Require().NotNil(reference.Gender)
	s.Equal("F", *reference.Gender)
	s.Equal("c-17", reference.Extra["case_id"])
}
