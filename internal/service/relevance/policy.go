package relevance

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"mindreel/relevance/internal/logging"
	"mindreel/relevance/internal/model/domain"
)

// Policy turns a relevance score into the isRelevant verdict.
type Policy interface {
	Relevant(score int, criteria domain.CriteriaScores) bool
}

// ThresholdPolicy marks an item relevant when its score reaches Min.
type ThresholdPolicy struct {
	Min int
}

func (p ThresholdPolicy) Relevant(score int, _ domain.CriteriaScores) bool {
	return score >= p.Min
}

// ExprPolicy evaluates a CEL expression with the variables
// score (int), max (int) and criteria (map of criterion name to int).
// Evaluation failures fall back to the threshold.
type ExprPolicy struct {
	expr     string
	program  cel.Program
	fallback ThresholdPolicy
}

func NewExprPolicy(expr string, fallback ThresholdPolicy) (*ExprPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("score", cel.IntType),
		cel.Variable("max", cel.IntType),
		cel.Variable("criteria", cel.MapType(cel.StringType, cel.IntType)),
	)
	if err != nil {
		return nil, fmt.Errorf("relevance policy env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("relevance policy compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("relevance policy must return bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("relevance policy program error: %w", err)
	}
	return &ExprPolicy{expr: expr, program: prg, fallback: fallback}, nil
}

func (p *ExprPolicy) Relevant(score int, criteria domain.CriteriaScores) bool {
	out, _, err := p.program.Eval(map[string]any{
		"score":    int64(score),
		"max":      int64(domain.MaxScore),
		"criteria": criteria.Map(),
	})
	if err != nil {
		logging.Warn().Err(err).Str("expr", p.expr).Msg("relevance policy evaluation failed, using threshold")
		return p.fallback.Relevant(score, criteria)
	}
	v, ok := out.Value().(bool)
	if !ok {
		return p.fallback.Relevant(score, criteria)
	}
	return v
}

// PolicyFrom builds the configured policy: the CEL expression when set,
// otherwise the plain threshold.
func PolicyFrom(threshold int, expr string) (Policy, error) {
	base := ThresholdPolicy{Min: threshold}
	if expr == "" {
		return base, nil
	}
	p, err := NewExprPolicy(expr, base)
	if err != nil {
		return nil, err
	}
	return p, nil
}
