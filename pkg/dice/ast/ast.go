// Package ast defines the expression tree for dice notation.
//
// A parsed expression is immutable: the parser builds the tree once and the
// evaluator only reads it.
package ast

import (
	"bytes"
	"strconv"

	"github.com/sambeau/roll/pkg/dice/lexer"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Program represents the root node of every AST. Each whitespace-separated
// top-level expression becomes one statement.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer

	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(s.String())
	}

	return out.String()
}

// ExpressionStatement wraps a top-level expression
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// IntegerLiteral represents integer literals like 4 or 100
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return strconv.FormatInt(il.Value, 10) }

// InfixExpression represents binary arithmetic like 2d6 + 3
type InfixExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// GroupedExpression represents a bracketed sub-expression, (1d6+2) or
// [1d6+2]. It is kept as its own node so the parser can tell a bracketed
// repetition count apart from other factors.
type GroupedExpression struct {
	Token lexer.Token // the opening bracket
	Expr  Expression
}

func (ge *GroupedExpression) expressionNode()      {}
func (ge *GroupedExpression) TokenLiteral() string { return ge.Token.Literal }

// String delegates to the inner expression. Infix nodes already print their
// own parentheses, so adding another pair here would double them up.
func (ge *GroupedExpression) String() string { return ge.Expr.String() }

// ModifierKind identifies a roll modifier
type ModifierKind int

const (
	ModExplode ModifierKind = iota
	ModKeepHigh
	ModKeepLow
	ModDropHigh
	ModDropLow
)

// String returns the notation for the modifier kind
func (mk ModifierKind) String() string {
	switch mk {
	case ModExplode:
		return "!"
	case ModKeepHigh:
		return "kh"
	case ModKeepLow:
		return "kl"
	case ModDropHigh:
		return "dh"
	case ModDropLow:
		return "dl"
	default:
		return "?"
	}
}

// Modifier represents a roll modifier like kh3 or !. Arg is nil when the
// modifier has no trailing count: keep/drop then default to 1 and explode
// defaults its threshold to the die's maximum face.
type Modifier struct {
	Token lexer.Token // the modifier token
	Kind  ModifierKind
	Arg   Expression
}

func (m Modifier) String() string {
	if m.Arg == nil {
		return m.Kind.String()
	}
	return m.Kind.String() + m.Arg.String()
}

// DiceExpression represents a roll like 4d6kh3. Count and Sides are
// sub-expressions, so (2+1)d6 rolls three dice. Each is evaluated once
// before rolling.
type DiceExpression struct {
	Token     lexer.Token // the 'd' token
	Count     Expression
	Sides     Expression
	Modifiers []Modifier
}

func (de *DiceExpression) expressionNode()      {}
func (de *DiceExpression) TokenLiteral() string { return de.Token.Literal }
func (de *DiceExpression) String() string {
	var out bytes.Buffer

	out.WriteString(de.Count.String())
	out.WriteString("d")
	out.WriteString(de.Sides.String())
	for _, m := range de.Modifiers {
		out.WriteString(m.String())
	}

	return out.String()
}

// RepetitionExpression represents a repeated roll like 3(1d6+2). The body is
// evaluated Count times and the modifiers apply across the run totals, not
// the individual dice.
type RepetitionExpression struct {
	Token     lexer.Token // the opening bracket of the body
	Count     Expression
	Body      Expression
	Modifiers []Modifier
}

func (re *RepetitionExpression) expressionNode()      {}
func (re *RepetitionExpression) TokenLiteral() string { return re.Token.Literal }
func (re *RepetitionExpression) String() string {
	var out bytes.Buffer

	out.WriteString(re.Count.String())
	out.WriteString("(")
	out.WriteString(re.Body.String())
	out.WriteString(")")
	for _, m := range re.Modifiers {
		out.WriteString(m.String())
	}

	return out.String()
}
