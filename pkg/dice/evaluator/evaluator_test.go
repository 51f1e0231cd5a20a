package evaluator

import (
	"reflect"
	"testing"

	"github.com/sambeau/roll/pkg/dice/lexer"
	"github.com/sambeau/roll/pkg/dice/parser"
)

// scriptSource replays a fixed sequence of rolls, then returns 1 forever.
type scriptSource struct {
	values []int64
	pos    int
}

func (s *scriptSource) Roll(sides int64) int64 {
	if s.pos >= len(s.values) {
		return 1
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

func evalScripted(t *testing.T, input string, rolls []int64, opts ...Option) ([]Result, *Error) {
	t.Helper()

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}

	e := New(&scriptSource{values: rolls}, opts...)
	return e.EvalProgram(program)
}

func evalOne(t *testing.T, input string, rolls []int64, opts ...Option) Result {
	t.Helper()

	results, err := evalScripted(t, input, rolls, opts...)
	if err != nil {
		t.Fatalf("eval error for %q: %s", input, err.Message)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results for %q, want 1", len(results), input)
	}
	return results[0]
}

func evalError(t *testing.T, input string, rolls []int64, opts ...Option) *Error {
	t.Helper()

	results, err := evalScripted(t, input, rolls, opts...)
	if err == nil {
		t.Fatalf("expected an error for %q, got %v", input, results)
	}
	return err
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"4", 4},
		{"0", 0},
		{"100", 100},
	}

	for _, tt := range tests {
		result := evalOne(t, tt.input, nil)
		if result.Value != tt.expected {
			t.Errorf("%q = %d, want %d", tt.input, result.Value, tt.expected)
		}
		if len(result.Rolls) != 0 {
			t.Errorf("%q rolled dice: %v", tt.input, result.Rolls)
		}
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"1 + 2", 3},
		{"10 - 4", 6},
		{"1 - 2", -1},
		{"3 * 4", 12},
		{"2 * 3 + 4", 10},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 3", 3},
		{"7 / 2", 3},
		{"(2 + 4) / 3", 2},
		{"[2 + 4] / 3", 2},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := evalOne(t, tt.input, nil)
			if result.Value != tt.expected {
				t.Errorf("%q = %d, want %d", tt.input, result.Value, tt.expected)
			}
		})
	}
}

func TestDiceRollSumAndTrace(t *testing.T) {
	result := evalOne(t, "3d6", []int64{2, 5, 3})

	if result.Value != 10 {
		t.Errorf("value = %d, want 10", result.Value)
	}
	if !reflect.DeepEqual(result.Rolls, []int64{2, 5, 3}) {
		t.Errorf("trace = %v, want [2 5 3]", result.Rolls)
	}
}

func TestSeededRollsStayInRange(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		e := New(NewSource(seed))
		l := lexer.New("10d6")
		p := parser.New(l)
		program := p.ParseProgram()

		results, err := e.EvalProgram(program)
		if err != nil {
			t.Fatalf("seed %d: %s", seed, err.Message)
		}

		result := results[0]
		if len(result.Rolls) != 10 {
			t.Fatalf("seed %d: rolled %d dice, want 10", seed, len(result.Rolls))
		}

		var sum int64
		for _, v := range result.Rolls {
			if v < 1 || v > 6 {
				t.Errorf("seed %d: roll %d out of range [1,6]", seed, v)
			}
			sum += v
		}
		if result.Value != sum {
			t.Errorf("seed %d: value = %d, want trace sum %d", seed, result.Value, sum)
		}
	}
}

func TestSeededDeterminism(t *testing.T) {
	run := func() []Result {
		e := New(NewSource(42))
		l := lexer.New("4d6kh3 + 2d10 3(1d8)")
		p := parser.New(l)
		results, err := e.EvalProgram(p.ParseProgram())
		if err != nil {
			t.Fatalf("eval error: %s", err.Message)
		}
		return results
	}

	first := run()
	second := run()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed gave different results:\n%v\n%v", first, second)
	}
}

func TestKeepHigh(t *testing.T) {
	result := evalOne(t, "4d6kh3", []int64{6, 4, 4, 2})

	if result.Value != 14 {
		t.Errorf("value = %d, want 14", result.Value)
	}
	// Dropped values stay in the trace.
	if !reflect.DeepEqual(result.Rolls, []int64{6, 4, 4, 2}) {
		t.Errorf("trace = %v, want [6 4 4 2]", result.Rolls)
	}
}

func TestKeepLow(t *testing.T) {
	result := evalOne(t, "2d20kl1", []int64{15, 8})
	if result.Value != 8 {
		t.Errorf("value = %d, want 8", result.Value)
	}
}

func TestDropLow(t *testing.T) {
	result := evalOne(t, "2d10dl1", []int64{7, 3})

	if result.Value != 7 {
		t.Errorf("value = %d, want 7", result.Value)
	}
	if !reflect.DeepEqual(result.Rolls, []int64{7, 3}) {
		t.Errorf("trace = %v, want [7 3]", result.Rolls)
	}
}

func TestDropHigh(t *testing.T) {
	tests := []struct {
		input string
	}{
		{"3d6dh1"},
		{"3d6d1"},
		{"3d6dh"},
	}

	for _, tt := range tests {
		result := evalOne(t, tt.input, []int64{5, 2, 4})
		if result.Value != 6 {
			t.Errorf("%q = %d, want 6", tt.input, result.Value)
		}
	}
}

func TestKeepDefaultsToOne(t *testing.T) {
	result := evalOne(t, "4d6kh", []int64{2, 6, 3, 1})
	if result.Value != 6 {
		t.Errorf("value = %d, want 6", result.Value)
	}
}

func TestKeepDropClamping(t *testing.T) {
	tests := []struct {
		input    string
		rolls    []int64
		expected int64
	}{
		{"2d6kh5", []int64{3, 5}, 8},  // keep more than exist keeps all
		{"2d6kl99", []int64{3, 5}, 8}, // same for keep low
		{"2d6dl5", []int64{3, 5}, 0},  // drop more than exist drops all
		{"2d6dh99", []int64{3, 5}, 0},
		{"2d6kh0", []int64{3, 5}, 0}, // keep zero keeps none
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := evalOne(t, tt.input, tt.rolls)
			if result.Value != tt.expected {
				t.Errorf("value = %d, want %d", result.Value, tt.expected)
			}
		})
	}
}

func TestModifiersApplySequentially(t *testing.T) {
	// kh3 narrows to three values, then kh1 narrows those to one.
	result := evalOne(t, "4d6kh3kh1", []int64{6, 4, 4, 2})
	if result.Value != 6 {
		t.Errorf("value = %d, want 6", result.Value)
	}
}

func TestModifierExpressionArgument(t *testing.T) {
	result := evalOne(t, "4d6kh(1+2)", []int64{6, 4, 4, 2})
	if result.Value != 14 {
		t.Errorf("value = %d, want 14", result.Value)
	}
}

func TestExplode(t *testing.T) {
	// Each maximum value triggers exactly one extra roll, and the extra roll
	// is itself checked.
	result := evalOne(t, "1d6!", []int64{6, 6, 3})

	if result.Value != 15 {
		t.Errorf("value = %d, want 15", result.Value)
	}
	if !reflect.DeepEqual(result.Rolls, []int64{6, 6, 3}) {
		t.Errorf("trace = %v, want [6 6 3]", result.Rolls)
	}
}

func TestExplodeThreshold(t *testing.T) {
	tests := []struct {
		input    string
		rolls    []int64
		expected int64
	}{
		{"1d10!8", []int64{9, 3}, 12},   // 9 meets the threshold, 3 does not
		{"2d6!5", []int64{5, 2, 3}, 10}, // only the 5 explodes
		{"1d10!8", []int64{4}, 4},       // below threshold, no explosion
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := evalOne(t, tt.input, tt.rolls)
			if result.Value != tt.expected {
				t.Errorf("value = %d, want %d", result.Value, tt.expected)
			}
		})
	}
}

func TestExplodeBeforeKeep(t *testing.T) {
	// The exploded 6 joins the working set before kh2 picks values, whichever
	// order the modifiers were written in.
	for _, input := range []string{"2d6!kh2", "2d6kh2!"} {
		result := evalOne(t, input, []int64{6, 2, 5, 1})
		if result.Value != 11 {
			t.Errorf("%q = %d, want 11", input, result.Value)
		}
	}
}

func TestExplosionLimit(t *testing.T) {
	// With threshold 1 every roll explodes; the scripted source returns 1
	// forever, so only the cap stops the chain.
	err := evalError(t, "1d6!1", nil, WithExplosionLimit(10))

	if err.Code != "LIMIT-0001" {
		t.Errorf("error code = %s, want LIMIT-0001", err.Code)
	}
}

func TestRepetition(t *testing.T) {
	result := evalOne(t, "3(1d6+2)", []int64{5, 2, 4})

	if result.Value != 17 {
		t.Errorf("value = %d, want 17", result.Value)
	}
	if !reflect.DeepEqual(result.Rolls, []int64{5, 2, 4}) {
		t.Errorf("trace = %v, want [5 2 4]", result.Rolls)
	}
}

func TestRepetitionKeepsRunTotals(t *testing.T) {
	// kh1 compares the run totals (3 and 11), not the individual dice.
	result := evalOne(t, "2(2d6)kh1", []int64{1, 2, 5, 6})
	if result.Value != 11 {
		t.Errorf("value = %d, want 11", result.Value)
	}
}

func TestRepetitionZeroTimes(t *testing.T) {
	result := evalOne(t, "0(1d6)", nil)
	if result.Value != 0 {
		t.Errorf("value = %d, want 0", result.Value)
	}
	if len(result.Rolls) != 0 {
		t.Errorf("trace = %v, want empty", result.Rolls)
	}
}

func TestZeroDiceCount(t *testing.T) {
	result := evalOne(t, "0d6", nil)
	if result.Value != 0 {
		t.Errorf("value = %d, want 0", result.Value)
	}
	if len(result.Rolls) != 0 {
		t.Errorf("trace = %v, want empty", result.Rolls)
	}
}

func TestComputedCountAndSides(t *testing.T) {
	// (2+1)d6 rolls three dice.
	result := evalOne(t, "(2+1)d6", []int64{1, 2, 3})
	if result.Value != 6 {
		t.Errorf("value = %d, want 6", result.Value)
	}
	if len(result.Rolls) != 3 {
		t.Errorf("trace = %v, want 3 entries", result.Rolls)
	}

	// The count roll lands in the trace before the outer dice.
	result = evalOne(t, "(1d4)d6", []int64{2, 5, 6})
	if result.Value != 11 {
		t.Errorf("value = %d, want 11", result.Value)
	}
	if !reflect.DeepEqual(result.Rolls, []int64{2, 5, 6}) {
		t.Errorf("trace = %v, want [2 5 6]", result.Rolls)
	}
}

func TestArithmeticOverRolls(t *testing.T) {
	result := evalOne(t, "(2d6+1)*2", []int64{3, 5})
	if result.Value != 18 {
		t.Errorf("value = %d, want 18", result.Value)
	}
}

func TestMultipleExpressionsGetSeparateResults(t *testing.T) {
	results, err := evalScripted(t, "3d6 4", []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("eval error: %s", err.Message)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if results[0].Value != 6 {
		t.Errorf("first value = %d, want 6", results[0].Value)
	}
	if !reflect.DeepEqual(results[0].Rolls, []int64{1, 2, 3}) {
		t.Errorf("first trace = %v, want [1 2 3]", results[0].Rolls)
	}

	if results[1].Value != 4 {
		t.Errorf("second value = %d, want 4", results[1].Value)
	}
	if len(results[1].Rolls) != 0 {
		t.Errorf("second trace = %v, want empty", results[1].Rolls)
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		input string
		rolls []int64
		code  string
	}{
		{"5 / 0", nil, "OP-0002"},
		{"4 / (1 - 1)", nil, "OP-0002"},
		{"1d(1-1)", nil, "DICE-0001"},
		{"2d(0-3)", nil, "DICE-0001"},
		{"(1-2)d6", nil, "DICE-0002"},
		{"(1-2)(1d6)", nil, "DICE-0003"},
		{"2(1d6)!", nil, "DICE-0004"},
		{"3(1d(2-2))", nil, "DICE-0001"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := evalError(t, tt.input, tt.rolls)
			if err.Code != tt.code {
				t.Errorf("error code = %s, want %s (message: %s)", err.Code, tt.code, err.Message)
			}
			rerr := err.ToRollError()
			if !rerr.IsEvalError() {
				t.Errorf("error class = %s, should be an eval class", rerr.Class)
			}
		})
	}
}

func TestErrorAbortsProgram(t *testing.T) {
	results, err := evalScripted(t, "2d6 5/0 3d4", []int64{1, 2})
	if err == nil {
		t.Fatal("expected an error")
	}
	if results != nil {
		t.Errorf("expected no partial results, got %v", results)
	}
}

func TestRollsInspect(t *testing.T) {
	r := &Rolls{Values: []int64{6, 4, 2}}
	if got := r.Inspect(); got != "[6, 4, 2]" {
		t.Errorf("Inspect() = %q, want %q", got, "[6, 4, 2]")
	}
	if got := r.Sum(); got != 12 {
		t.Errorf("Sum() = %d, want 12", got)
	}

	empty := &Rolls{}
	if got := empty.Inspect(); got != "[]" {
		t.Errorf("Inspect() = %q, want %q", got, "[]")
	}
}
