package conversion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"krosmoz-scrapper/core/cache"
	"krosmoz-scrapper/feature/gameconfig"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
)

const formulaCachePrefix = "conversion_formula:"

var (
	// ErrUnknownFormula indicates a conversion through a key with no formula row.
	ErrUnknownFormula = errors.New("unknown conversion formula")
	// ErrInvalidFormula indicates an expression that does not compile.
	ErrInvalidFormula = errors.New("invalid conversion formula")
	// ErrFormulaResult indicates an expression that did not evaluate to a finite number.
	ErrFormulaResult = errors.New("conversion formula did not return a number")
)

// Context holds the extra variables a formula may reference besides value.
type Context map[string]float64

type definition struct {
	Key        string `json:"key"`
	Expression string `json:"expression"`
}

// Formulas converts external values through the named formulas.
type Formulas struct {
	source Source
	cache  *cache.Store

	mu       sync.RWMutex
	programs map[string]*vm.Program
}

func NewFormulas(source Source, store *cache.Store) *Formulas {
	return &Formulas{source: source, cache: store, programs: make(map[string]*vm.Program)}
}

// Convert applies the formula registered under key to value.
func (f *Formulas) Convert(ctx context.Context, value float64, key string, vars Context) (float64, error) {
	key = gameconfig.FormulaKey(key)
	def, err := cache.Remember(ctx, f.cache, formulaCachePrefix+key, 0, func(ctx context.Context) (definition, error) {
		row, err := f.source.GetFormula(ctx, key)
		if errors.Is(err, gameconfig.ErrNotFound) {
			return definition{}, fmt.Errorf("%w: %s", ErrUnknownFormula, key)
		}
		if err != nil {
			return definition{}, err
		}
		return definition{Key: row.Key, Expression: row.Expression}, nil
	})
	if err != nil {
		return 0, err
	}

	program, err := f.program(def.Expression)
	if err != nil {
		return 0, fmt.Errorf("formula %s: %w", key, err)
	}
	out, err := Eval(program, value, vars)
	if err != nil {
		return 0, fmt.Errorf("formula %s: %w", key, err)
	}
	return out, nil
}

func (f *Formulas) program(expression string) (*vm.Program, error) {
	f.mu.RLock()
	p, ok := f.programs[expression]
	f.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.programs[expression] = p
	f.mu.Unlock()
	return p, nil
}

// Invalidate drops the cached definition of formula key.
func (f *Formulas) Invalidate(ctx context.Context, key string) error {
	return f.cache.Forget(ctx, formulaCachePrefix+gameconfig.FormulaKey(key))
}

// Compile checks and compiles a formula expression.
func Compile(expression string) (*vm.Program, error) {
	p, err := expr.Compile(expression, expr.Env(baseEnv(0, nil)), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormula, err)
	}
	return p, nil
}

// Eval runs a compiled formula.
func Eval(program *vm.Program, value float64, vars Context) (float64, error) {
	out, err := expr.Run(program, baseEnv(value, vars))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFormulaResult, err)
	}
	n, ok := number(out)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: got %v (%T)", ErrFormulaResult, out, out)
	}
	return n, nil
}

func baseEnv(value float64, vars Context) map[string]any {
	env := make(map[string]any, len(vars)+7)
	for k, v := range vars {
		env[k] = v
	}
	env["value"] = value
	env["floor"] = func(x any) float64 { return math.Floor(toFloat(x)) }
	env["ceil"] = func(x any) float64 { return math.Ceil(toFloat(x)) }
	env["round"] = func(x any) float64 { return math.Round(toFloat(x)) }
	env["clamp"] = func(x, lo, hi any) float64 { return math.Min(math.Max(toFloat(x), toFloat(lo)), toFloat(hi)) }
	env["minOf"] = func(a, b any) float64 { return math.Min(toFloat(a), toFloat(b)) }
	env["maxOf"] = func(a, b any) float64 { return math.Max(toFloat(a), toFloat(b)) }
	return env
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) float64 {
	n, _ := number(v)
	return n
}
