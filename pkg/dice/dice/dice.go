// Package dice provides a public API for embedding the dice notation engine.
//
// Notation summary: NdS rolls N dice with S sides (4d6), modifiers trail the
// roll (kh/kl keep, dh/dl drop, ! explode), N(expr) repeats an expression N
// times, and + - * / combine results with the usual precedence. Several
// whitespace-separated expressions may share one input; each is rolled and
// reported on its own.
package dice

import (
	"strings"
	"time"

	"github.com/sambeau/roll/pkg/dice/ast"
	derrors "github.com/sambeau/roll/pkg/dice/errors"
	"github.com/sambeau/roll/pkg/dice/evaluator"
	"github.com/sambeau/roll/pkg/dice/lexer"
	"github.com/sambeau/roll/pkg/dice/parser"
)

// Options configure a roll
type Options struct {
	// Source supplies die rolls. When nil, a seeded Source is built from
	// Seed; when Seed is also zero, the clock seeds it.
	Source evaluator.Source
	Seed   int64

	// ExplosionLimit caps the extra rolls one explode modifier may add.
	// Zero means evaluator.DefaultExplosionLimit.
	ExplosionLimit int
}

// Parse parses dice notation into its expression tree. Input is lowercased
// first, so 4D6KH3 and 4d6kh3 are the same roll. The returned error is a
// *errors.RollError carrying position and hints.
func Parse(input string) (*ast.Program, error) {
	l := lexer.New(strings.ToLower(input))
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.StructuredErrors(); len(errs) > 0 {
		return nil, errs[0]
	}
	if len(program.Statements) == 0 {
		return nil, derrors.NewSimple(derrors.ClassParse, "no expression found")
	}

	return program, nil
}

// Roll parses and evaluates input with clock-seeded randomness, returning
// one Result per top-level expression.
func Roll(input string) ([]evaluator.Result, error) {
	return RollWith(input, Options{})
}

// RollWith parses and evaluates input with explicit options.
func RollWith(input string, opts Options) ([]evaluator.Result, error) {
	program, err := Parse(input)
	if err != nil {
		return nil, err
	}

	source := opts.Source
	if source == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		source = evaluator.NewSource(seed)
	}

	var evalOpts []evaluator.Option
	if opts.ExplosionLimit > 0 {
		evalOpts = append(evalOpts, evaluator.WithExplosionLimit(opts.ExplosionLimit))
	}

	results, evalErr := evaluator.New(source, evalOpts...).EvalProgram(program)
	if evalErr != nil {
		return nil, evalErr.ToRollError()
	}

	return results, nil
}
