// Package evaluator walks a parsed dice expression and produces its value
// together with a trace of every die rolled. Randomness is injected through
// a Source so evaluation is deterministic under test.
package evaluator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sambeau/roll/pkg/dice/ast"
	derrors "github.com/sambeau/roll/pkg/dice/errors"
	"github.com/sambeau/roll/pkg/dice/lexer"
)

// ObjectType represents the type of values produced by evaluation
type ObjectType string

const (
	INTEGER_OBJ = "INTEGER"
	ROLLS_OBJ   = "ROLLS"
	ERROR_OBJ   = "ERROR"
)

// Object represents all values produced by evaluation
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents a plain numeric result
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return fmt.Sprintf("%d", i.Value) }

// Rolls is the value of a dice roll or repetition: the surviving values of
// the working set after modifiers. Its numeric value is their sum.
type Rolls struct {
	Values []int64
}

func (r *Rolls) Type() ObjectType { return ROLLS_OBJ }

func (r *Rolls) Inspect() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range r.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", v)
	}
	sb.WriteString("]")
	return sb.String()
}

// Sum returns the sum of the roll values
func (r *Rolls) Sum() int64 {
	var total int64
	for _, v := range r.Values {
		total += v
	}
	return total
}

// Error represents evaluation errors with structured error information
type Error struct {
	Message string
	Line    int
	Column  int
	Class   derrors.ErrorClass
	Code    string
	Hints   []string
	Data    map[string]any
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }

func (e *Error) Inspect() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "ERROR: " + e.Message
}

// ToRollError converts this Error to a RollError for structured handling.
func (e *Error) ToRollError() *derrors.RollError {
	class := e.Class
	if class == "" {
		class = derrors.ClassDice
	}

	return &derrors.RollError{
		Class:   class,
		Code:    e.Code,
		Message: e.Message,
		Hints:   e.Hints,
		Line:    e.Line,
		Column:  e.Column,
		Data:    e.Data,
	}
}

// DefaultExplosionLimit caps how many extra rolls a single explode modifier
// may add. A low threshold (1d6!1 explodes on every face) would otherwise
// never terminate.
const DefaultExplosionLimit = 1000

// Result is the outcome of one top-level expression: its final value and
// the ordered trace of every die rolled while computing it, including
// exploded extras and values later dropped or not kept.
type Result struct {
	Value int64
	Rolls []int64
}

// Evaluator evaluates dice expression trees. It owns its Source for the
// duration of an evaluation and keeps no state between programs beyond the
// entropy it consumes.
type Evaluator struct {
	source Source
	limit  int
	rolls  []int64
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithExplosionLimit overrides the explosion safety cap
func WithExplosionLimit(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.limit = n
		}
	}
}

// New creates an evaluator drawing rolls from source
func New(source Source, opts ...Option) *Evaluator {
	e := &Evaluator{
		source: source,
		limit:  DefaultExplosionLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvalProgram evaluates each top-level expression in turn, returning one
// Result per expression. The roll trace resets between expressions. The
// first error aborts the whole program; no partial results are returned.
func (e *Evaluator) EvalProgram(program *ast.Program) ([]Result, *Error) {
	results := make([]Result, 0, len(program.Statements))

	for _, stmt := range program.Statements {
		e.rolls = e.rolls[:0]

		obj := e.Eval(stmt)
		if err, ok := obj.(*Error); ok {
			return nil, err
		}

		results = append(results, Result{
			Value: toNumber(obj),
			Rolls: append([]int64(nil), e.rolls...),
		})
	}

	return results, nil
}

// Eval evaluates a single AST node
func (e *Evaluator) Eval(node ast.Node) Object {
	switch node := node.(type) {

	case *ast.Program:
		var result Object = &Integer{Value: 0}
		for _, stmt := range node.Statements {
			result = e.Eval(stmt)
			if isError(result) {
				return result
			}
		}
		return result

	case *ast.ExpressionStatement:
		return e.Eval(node.Expression)

	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}

	case *ast.GroupedExpression:
		return e.Eval(node.Expr)

	case *ast.InfixExpression:
		return e.evalInfixExpression(node)

	case *ast.DiceExpression:
		return e.evalDiceExpression(node)

	case *ast.RepetitionExpression:
		return e.evalRepetitionExpression(node)
	}

	return newError("unknown node type: %T", node)
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression) Object {
	left := e.Eval(node.Left)
	if isError(left) {
		return left
	}

	right := e.Eval(node.Right)
	if isError(right) {
		return right
	}

	l := toNumber(left)
	r := toNumber(right)

	switch node.Operator {
	case "+":
		return &Integer{Value: l + r}
	case "-":
		return &Integer{Value: l - r}
	case "*":
		return &Integer{Value: l * r}
	case "/":
		if r == 0 {
			return newStructuredErrorWithPos("OP-0002", node.Token, nil)
		}
		// Go integer division truncates toward zero
		return &Integer{Value: l / r}
	}

	return newStructuredErrorWithPos("OP-0001", node.Token, map[string]any{
		"Operator": node.Operator,
	})
}

func (e *Evaluator) evalDiceExpression(node *ast.DiceExpression) Object {
	// Count and sides are evaluated exactly once; any dice they roll go
	// into the trace before the outer roll starts.
	count, errObj := e.evalNumber(node.Count)
	if errObj != nil {
		return errObj
	}

	sides, errObj := e.evalNumber(node.Sides)
	if errObj != nil {
		return errObj
	}

	if sides <= 0 {
		return newStructuredErrorWithPos("DICE-0001", node.Token, map[string]any{
			"Sides": sides,
		})
	}
	if count < 0 {
		return newStructuredErrorWithPos("DICE-0002", node.Token, map[string]any{
			"Count": count,
		})
	}

	working := make([]int64, 0, count)
	for i := int64(0); i < count; i++ {
		working = append(working, e.roll(sides))
	}

	// Explode runs before keep/drop regardless of where it appears in the
	// chain: it changes which values exist for them to work on.
	for _, m := range node.Modifiers {
		if m.Kind != ast.ModExplode {
			continue
		}

		threshold := sides
		if m.Arg != nil {
			threshold, errObj = e.evalNumber(m.Arg)
			if errObj != nil {
				return errObj
			}
		}

		working, errObj = e.explode(working, sides, threshold, m.Token)
		if errObj != nil {
			return errObj
		}
	}

	for _, m := range node.Modifiers {
		if m.Kind == ast.ModExplode {
			continue
		}

		n := int64(1)
		if m.Arg != nil {
			n, errObj = e.evalNumber(m.Arg)
			if errObj != nil {
				return errObj
			}
		}

		working = applyKeepDrop(m.Kind, working, n)
	}

	return &Rolls{Values: working}
}

func (e *Evaluator) evalRepetitionExpression(node *ast.RepetitionExpression) Object {
	for _, m := range node.Modifiers {
		if m.Kind == ast.ModExplode {
			return newStructuredErrorWithPos("DICE-0004", m.Token, nil)
		}
	}

	times, errObj := e.evalNumber(node.Count)
	if errObj != nil {
		return errObj
	}

	if times < 0 {
		return newStructuredErrorWithPos("DICE-0003", node.Token, map[string]any{
			"Count": times,
		})
	}

	// Each run is a fresh sub-evaluation; its dice land in the trace but
	// only the run totals enter the working set for keep/drop.
	totals := make([]int64, 0, times)
	for i := int64(0); i < times; i++ {
		obj := e.Eval(node.Body)
		if err, ok := obj.(*Error); ok {
			return err
		}
		totals = append(totals, toNumber(obj))
	}

	for _, m := range node.Modifiers {
		n := int64(1)
		if m.Arg != nil {
			n, errObj = e.evalNumber(m.Arg)
			if errObj != nil {
				return errObj
			}
		}

		totals = applyKeepDrop(m.Kind, totals, n)
	}

	return &Rolls{Values: totals}
}

// evalNumber evaluates a sub-expression down to a concrete integer
func (e *Evaluator) evalNumber(expr ast.Expression) (int64, *Error) {
	obj := e.Eval(expr)
	if err, ok := obj.(*Error); ok {
		return 0, err
	}
	return toNumber(obj), nil
}

// roll draws one die and records it in the trace
func (e *Evaluator) roll(sides int64) int64 {
	v := e.source.Roll(sides)
	e.rolls = append(e.rolls, v)
	return v
}

// explode adds one extra roll for every working-set value meeting the
// threshold. Extra rolls join the set and are themselves checked, so chains
// continue only through fresh values. The limit bounds the extra rolls from
// one explode modifier.
func (e *Evaluator) explode(working []int64, sides, threshold int64, tok lexer.Token) ([]int64, *Error) {
	extra := 0
	for i := 0; i < len(working); i++ {
		if working[i] < threshold {
			continue
		}
		extra++
		if extra > e.limit {
			err := newStructuredErrorWithPos("LIMIT-0001", tok, map[string]any{
				"Limit": e.limit,
			})
			return nil, err
		}
		working = append(working, e.roll(sides))
	}
	return working, nil
}

// applyKeepDrop filters the working set. n clamps to the available count;
// keeping more values than exist keeps them all.
func applyKeepDrop(kind ast.ModifierKind, values []int64, n int64) []int64 {
	if n < 0 {
		n = 0
	}
	if n > int64(len(values)) {
		n = int64(len(values))
	}

	sorted := append([]int64(nil), values...)

	switch kind {
	case ast.ModKeepHigh:
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
		return sorted[:n]
	case ast.ModKeepLow:
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		return sorted[:n]
	case ast.ModDropHigh:
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })
		return sorted[n:]
	case ast.ModDropLow:
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		return sorted[n:]
	}

	return values
}

// toNumber reduces an object to its numeric value
func toNumber(obj Object) int64 {
	switch obj := obj.(type) {
	case *Integer:
		return obj.Value
	case *Rolls:
		return obj.Sum()
	}
	return 0
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

func newError(format string, a ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, a...)}
}

// newStructuredError creates a structured error from the catalog.
func newStructuredError(code string, data map[string]any) *Error {
	rerr := derrors.New(code, data)
	return &Error{
		Class:   rerr.Class,
		Code:    rerr.Code,
		Message: rerr.Message,
		Hints:   rerr.Hints,
		Data:    rerr.Data,
	}
}

// newStructuredErrorWithPos creates a structured error with position
// information taken from a token.
func newStructuredErrorWithPos(code string, tok lexer.Token, data map[string]any) *Error {
	err := newStructuredError(code, data)
	err.Line = tok.Line
	err.Column = tok.Column
	return err
}
