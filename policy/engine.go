// Package policy selects generation behavior modifiers via OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/parley-sim/parley/domain"
	"github.com/parley-sim/parley/internal/behavior"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.behavior.modifier"),
		rego.Module("behavior.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// SelectModifier evaluates the policy against the observed metrics and
// returns the behavior modifier to apply to the next generation.
func (e *Engine) SelectModifier(ctx context.Context, m behavior.Metrics) (domain.BehaviorModifier, error) {
	input := map[string]interface{}{
		"evasiveness":   m.Evasiveness,
		"contradiction": m.Contradiction,
		"sentiment":     m.Sentiment,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return domain.ModifierNormal, nil
	}

	val, ok := results[0].Expressions[0].Value.(string)
	if !ok || val == "" {
		return domain.ModifierNormal, nil
	}
	return domain.BehaviorModifier(val), nil
}

// DefaultPolicy encodes the threshold table for choosing a behavior
// modifier. The rules are written mutually exclusive so earlier thresholds
// take precedence over later ones.
const DefaultPolicy = `
package behavior

import rego.v1

default modifier := "normal"

modifier := "escalate" if input.evasiveness > 0.6

modifier := "repeat" if {
	input.evasiveness <= 0.6
	input.contradiction > 0.5
}

modifier := "de-escalate" if {
	input.evasiveness <= 0.6
	input.contradiction <= 0.5
	input.sentiment < -0.5
}

modifier := "escalate" if {
	input.evasiveness <= 0.6
	input.contradiction <= 0.5
	input.sentiment >= -0.5
	input.sentiment < -0.2
	input.evasiveness > 0.4
}
`
