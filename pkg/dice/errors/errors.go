// Package errors provides structured error types for dice notation.
//
// This package defines RollError, a unified error type that can represent
// both parser and evaluation errors with rich metadata for display and
// programmatic handling.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassParse    ErrorClass = "parse"    // Parser/syntax errors
	ClassDice     ErrorClass = "dice"     // Invalid dice (sides, counts)
	ClassOperator ErrorClass = "operator" // Invalid arithmetic
	ClassLimit    ErrorClass = "limit"    // Safety limits tripped
)

// RollError represents any error from parsing or evaluating dice notation.
type RollError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "DICE-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Line    int            `json:"line"`            // 1-based line (0 if unknown)
	Column  int            `json:"column"`          // 1-based column (0 if unknown)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *RollError) Error() string {
	return e.String()
}

// String returns a formatted string representation of the error.
func (e *RollError) String() string {
	var sb strings.Builder

	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf("line %d, column %d: ", e.Line, e.Column))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *RollError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassParse:
		sb.WriteString("Parse error")
	default:
		sb.WriteString("Roll error")
	}

	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(": line %d, column %d\n  ", e.Line, e.Column))
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Use: ")
		} else {
			sb.WriteString(" or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *RollError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithPosition returns a copy of the error with line and column set.
func (e *RollError) WithPosition(line, column int) *RollError {
	copy := *e
	copy.Line = line
	copy.Column = column
	return &copy
}

// IsParseError returns true if this is a parser error.
func (e *RollError) IsParseError() bool {
	return e.Class == ClassParse
}

// IsEvalError returns true if this is an evaluation error.
func (e *RollError) IsEvalError() bool {
	return e.Class != ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// ========================================
	// Parse errors (PARSE-0xxx)
	// ========================================
	"PARSE-0001": {
		Class:    ClassParse,
		Template: "expected {{.Expected}}, got '{{.Got}}'",
	},
	"PARSE-0002": {
		Class:    ClassParse,
		Template: "unexpected token '{{.Token}}'",
	},
	"PARSE-0003": {
		Class:    ClassParse,
		Template: "invalid number literal: {{.Literal}}",
	},
	"PARSE-0004": {
		Class:    ClassParse,
		Template: "a die cannot have zero sides",
		Hints:    []string{"d6, d20, d100"},
	},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "expected die sides after 'd', got '{{.Got}}'",
		Hints:    []string{"d6, d20, 2d(1d4)"},
	},

	// ========================================
	// Dice errors (DICE-0xxx)
	// ========================================
	"DICE-0001": {
		Class:    ClassDice,
		Template: "cannot roll a die with {{.Sides}} sides",
	},
	"DICE-0002": {
		Class:    ClassDice,
		Template: "cannot roll {{.Count}} dice",
	},
	"DICE-0003": {
		Class:    ClassDice,
		Template: "cannot repeat an expression {{.Count}} times",
	},
	"DICE-0004": {
		Class:    ClassDice,
		Template: "explode (!) cannot apply to a repetition",
		Hints:    []string{"put the ! on the dice inside: 3(1d6!)"},
	},

	// ========================================
	// Operator errors (OP-0xxx)
	// ========================================
	"OP-0001": {
		Class:    ClassOperator,
		Template: "unknown operator: {{.Operator}}",
	},
	"OP-0002": {
		Class:    ClassOperator,
		Template: "division by zero",
	},

	// ========================================
	// Limit errors (LIMIT-0xxx)
	// ========================================
	"LIMIT-0001": {
		Class:    ClassLimit,
		Template: "explosion limit exceeded ({{.Limit}} extra rolls)",
		Hints:    []string{"raise the explosion threshold, e.g. 1d6!5"},
	},
}

// New creates a RollError from the catalog.
func New(code string, data map[string]any) *RollError {
	def, ok := ErrorCatalog[code]
	if !ok {
		// Unknown code - create a generic error
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &RollError{
			Class:   ClassDice,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &RollError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a RollError with position information.
func NewWithPosition(code string, line, column int, data map[string]any) *RollError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates a simple error without using the catalog.
func NewSimple(class ErrorClass, message string) *RollError {
	return &RollError{
		Class:   class,
		Message: message,
	}
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}
