package screening

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the main test context these steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	LastStatus() int
	ResponseField(path string) (any, error)
}

// RegisterSteps registers the screening evaluation step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &screeningSteps{tc: tc}

	ctx.Step(`^the tenant "([^"]*)" born "([^"]*)"$`, steps.setTenant)
	ctx.Step(`^the tenant "([^"]*)" born "([^"]*)" from "([^"]*)", nationality "([^"]*)", gender "([^"]*)"$`, steps.setTenantProfile)
	ctx.Step(`^a blacklist candidate "([^"]*)" born "([^"]*)"$`, steps.addCandidate)
	ctx.Step(`^a blacklist candidate "([^"]*)" born "([^"]*)" from "([^"]*)", nationality "([^"]*)", gender "([^"]*)"$`, steps.addCandidateProfile)
	ctx.Step(`^an empty pipeline$`, steps.emptyPipeline)
	ctx.Step(`^I evaluate the screening request$`, steps.evaluate)
	ctx.Step(`^I fetch the evaluation by its ID$`, steps.fetchByID)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response should contain an evaluation ID$`, steps.shouldContainEvaluationID)
	ctx.Step(`^the "([^"]*)" count should be (\d+)$`, steps.categoryCountShouldBe)
	ctx.Step(`^every candidate should carry a match category$`, steps.everyCandidateHasCategory)
}

type screeningSteps struct {
	tc TestContext

	tenant     map[string]any
	candidates []any

	evaluationID string
}

func (s *screeningSteps) setTenant(fullName, dob string) error {
	first, last, err := splitName(fullName)
	if err != nil {
		return err
	}
	s.tenant = map[string]any{
		"first_name": first,
		"last_name":  last,
		"dob":        dob,
	}
	s.candidates = nil
	s.evaluationID = ""
	return nil
}

// setTenantProfile carries the full identity so every comparator weight
// participates; with name and dob alone the renormalized denominator stops at
// 0.7 and a complete mismatch cannot reach the bottom tier.
func (s *screeningSteps) setTenantProfile(fullName, dob, location, nationality, gender string) error {
	if err := s.setTenant(fullName, dob); err != nil {
		return err
	}
	s.tenant["location"] = location
	s.tenant["nationality"] = nationality
	s.tenant["gender"] = gender
	return nil
}

func (s *screeningSteps) addCandidate(fullName, dob string) error {
	first, last, err := splitName(fullName)
	if err != nil {
		return err
	}
	s.candidates = append(s.candidates, map[string]any{
		"first_name": first,
		"last_name":  last,
		"dob":        dob,
	})
	return nil
}

func (s *screeningSteps) addCandidateProfile(fullName, dob, location, nationality, gender string) error {
	if err := s.addCandidate(fullName, dob); err != nil {
		return err
	}
	candidate := s.candidates[len(s.candidates)-1].(map[string]any)
	candidate["location"] = location
	candidate["nationality"] = nationality
	candidate["gender"] = gender
	return nil
}

func (s *screeningSteps) emptyPipeline() error {
	s.candidates = nil
	return nil
}

func (s *screeningSteps) evaluate() error {
	results := s.candidates
	if results == nil {
		results = []any{}
	}
	err := s.tc.POST("/screening/evaluate", map[string]any{
		"tenant": s.tenant,
		"pipeline_data": map[string]any{
			"pipeline": []any{
				map[string]any{
					"type":    "refinitiv-blacklist",
					"results": results,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	if id, fieldErr := s.tc.ResponseField("evaluation_id"); fieldErr == nil {
		if str, ok := id.(string); ok {
			s.evaluationID = str
		}
	}
	return nil
}

func (s *screeningSteps) fetchByID() error {
	if s.evaluationID == "" {
		return fmt.Errorf("no evaluation ID captured from a previous step")
	}
	return s.tc.GET("/screening/evaluations/" + s.evaluationID)
}

func (s *screeningSteps) statusShouldBe(expected int) error {
	if s.tc.LastStatus() != expected {
		return fmt.Errorf("expected status %d, got %d", expected, s.tc.LastStatus())
	}
	return nil
}

func (s *screeningSteps) shouldContainEvaluationID() error {
	id, err := s.tc.ResponseField("evaluation_id")
	if err != nil {
		return err
	}
	if str, ok := id.(string); !ok || str == "" {
		return fmt.Errorf("evaluation_id is empty")
	}
	return nil
}

func (s *screeningSteps) categoryCountShouldBe(category string, expected int) error {
	value, err := s.tc.ResponseField("match_counts." + category)
	if err != nil {
		return err
	}
	count, ok := value.(float64)
	if !ok {
		return fmt.Errorf("match_counts.%s is not a number: %v", category, value)
	}
	if int(count) != expected {
		return fmt.Errorf("expected %s count %d, got %d", category, expected, int(count))
	}
	return nil
}

func (s *screeningSteps) everyCandidateHasCategory() error {
	matches, err := s.tc.ResponseField("evaluated_matches")
	if err != nil {
		return err
	}
	list, ok := matches.([]any)
	if !ok {
		return fmt.Errorf("evaluated_matches is not a list")
	}
	for i, entry := range list {
		match, ok := entry.(map[string]any)
		if !ok {
			return fmt.Errorf("evaluated_matches[%d] is not an object", i)
		}
		if category, _ := match["match_category"].(string); category == "" {
			return fmt.Errorf("evaluated_matches[%d] has no match_category", i)
		}
	}
	return nil
}

func splitName(fullName string) (first, last string, err error) {
	parts := strings.Fields(fullName)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("name %q needs at least first and last name", fullName)
	}
	return parts[0], parts[len(parts)-1], nil
}
