package e2e

import (
	"github.com/cucumber/godog"

	"veriscreen/e2e/steps/screening"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	screening.RegisterSteps(ctx, tc)
}
