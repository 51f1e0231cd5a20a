package parser

import (
	"strconv"

	"github.com/sambeau/roll/pkg/dice/ast"
	derrors "github.com/sambeau/roll/pkg/dice/errors"
	"github.com/sambeau/roll/pkg/dice/lexer"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	SUM     // + or -
	PRODUCT // * or /
	DICE    // 2d6, and the modifiers trailing it
	REPEAT  // 3(1d6+2)
)

// precedences maps tokens to their precedence
var precedences = map[lexer.TokenType]int{
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.SLASH:    PRODUCT,
	lexer.ASTERISK: PRODUCT,
	lexer.DIE:      DICE,
	lexer.LPAREN:   REPEAT,
	lexer.LBRACKET: REPEAT,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	structuredErrors []*derrors.RollError

	prevToken lexer.Token
	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l: l,
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseGroupedExpression)
	p.registerPrefix(lexer.DIE, p.parseBareDiceExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	p.registerInfix(lexer.PLUS, p.parseInfixExpression)
	p.registerInfix(lexer.MINUS, p.parseInfixExpression)
	p.registerInfix(lexer.ASTERISK, p.parseInfixExpression)
	p.registerInfix(lexer.SLASH, p.parseInfixExpression)
	p.registerInfix(lexer.DIE, p.parseDiceExpression)
	p.registerInfix(lexer.LPAREN, p.parseRepetitionExpression)
	p.registerInfix(lexer.LBRACKET, p.parseRepetitionExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parser errors as plain strings
func (p *Parser) Errors() []string {
	msgs := make([]string, 0, len(p.structuredErrors))
	for _, err := range p.structuredErrors {
		msgs = append(msgs, err.String())
	}
	return msgs
}

// StructuredErrors returns the structured parser errors
func (p *Parser) StructuredErrors() []*derrors.RollError {
	return p.structuredErrors
}

func (p *Parser) addError(msg string, line, column int) {
	err := derrors.NewSimple(derrors.ClassParse, msg)
	err.Line = line
	err.Column = column
	p.structuredErrors = append(p.structuredErrors, err)
}

func (p *Parser) addStructuredError(code string, line, column int, data map[string]any) {
	p.structuredErrors = append(p.structuredErrors, derrors.NewWithPosition(code, line, column, data))
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses the input and returns the AST. Several top-level
// expressions may appear in one input; each becomes its own statement
// ("3d6 4(1d4) + 4" is the roll 3d6 followed by the roll 4(1d4) + 4).
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseExpressionStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	firstToken := p.curToken

	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	return &ast.ExpressionStatement{Token: firstToken, Expression: expr}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}

	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
		// An opening bracket only continues the expression as a repetition
		// when the factor before it can be a repetition count. After a dice
		// or repetition factor the bracket starts a new top-level expression
		// instead: "2d6(3)" is the roll 2d6 followed by the roll (3).
		if p.peekTokenIs(lexer.LPAREN) || p.peekTokenIs(lexer.LBRACKET) {
			switch leftExp.(type) {
			case *ast.IntegerLiteral, *ast.GroupedExpression:
			default:
				return leftExp
			}
		}

		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

// Parse functions for different expression types

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addStructuredError("PARSE-0003", p.curToken.Line, p.curToken.Column,
			map[string]any{"Literal": p.curToken.Literal})
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	open := p.curToken
	closing := lexer.RPAREN
	if open.Type == lexer.LBRACKET {
		closing = lexer.RBRACKET
	}

	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(closing) {
		return nil
	}

	return &ast.GroupedExpression{Token: open, Expr: exp}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parseBareDiceExpression parses a roll with the count left off: "d6" rolls
// one die
func (p *Parser) parseBareDiceExpression() ast.Expression {
	count := &ast.IntegerLiteral{Token: p.curToken, Value: 1}
	return p.parseDiceBody(count)
}

func (p *Parser) parseDiceExpression(left ast.Expression) ast.Expression {
	return p.parseDiceBody(left)
}

// parseDiceBody parses the sides and modifiers of a dice roll. curToken is
// the 'd'.
func (p *Parser) parseDiceBody(count ast.Expression) ast.Expression {
	expr := &ast.DiceExpression{Token: p.curToken, Count: count}

	expr.Sides = p.parseDiceSides()
	if expr.Sides == nil {
		return nil
	}

	expr.Modifiers = p.parseModifiers()

	return expr
}

func (p *Parser) parseDiceSides() ast.Expression {
	switch p.peekToken.Type {
	case lexer.INT:
		p.nextToken()
		lit := p.parseIntegerLiteral()
		if lit == nil {
			return nil
		}
		// A literal d0 can never roll; computed sides are checked at
		// evaluation instead.
		if il, ok := lit.(*ast.IntegerLiteral); ok && il.Value == 0 {
			p.addStructuredError("PARSE-0004", il.Token.Line, il.Token.Column, nil)
			return nil
		}
		return lit
	case lexer.LPAREN, lexer.LBRACKET:
		p.nextToken()
		return p.parseGroupedExpression()
	default:
		p.addStructuredError("PARSE-0005", p.peekToken.Line, p.peekToken.Column,
			map[string]any{"Got": tokenLiteralOrName(p.peekToken)})
		return nil
	}
}

// parseModifiers parses the modifier chain after a dice roll or repetition.
// A bare 'd' in modifier position is the short form of dh.
func (p *Parser) parseModifiers() []ast.Modifier {
	var mods []ast.Modifier

	for {
		var kind ast.ModifierKind

		switch p.peekToken.Type {
		case lexer.BANG:
			kind = ast.ModExplode
		case lexer.KEEP_HIGH:
			kind = ast.ModKeepHigh
		case lexer.KEEP_LOW:
			kind = ast.ModKeepLow
		case lexer.DROP_HIGH, lexer.DIE:
			kind = ast.ModDropHigh
		case lexer.DROP_LOW:
			kind = ast.ModDropLow
		default:
			return mods
		}

		p.nextToken()
		mod := ast.Modifier{Token: p.curToken, Kind: kind}

		// Optional trailing count: a number or a bracketed expression
		switch p.peekToken.Type {
		case lexer.INT:
			p.nextToken()
			mod.Arg = p.parseIntegerLiteral()
			if mod.Arg == nil {
				return mods
			}
		case lexer.LPAREN, lexer.LBRACKET:
			p.nextToken()
			mod.Arg = p.parseGroupedExpression()
			if mod.Arg == nil {
				return mods
			}
		}

		mods = append(mods, mod)
	}
}

// parseRepetitionExpression parses "3(1d6+2)" style repeats. curToken is the
// opening bracket; left is the count, already restricted to a number or a
// grouped expression by parseExpression.
func (p *Parser) parseRepetitionExpression(left ast.Expression) ast.Expression {
	expr := &ast.RepetitionExpression{Token: p.curToken, Count: left}

	closing := lexer.RPAREN
	if p.curToken.Type == lexer.LBRACKET {
		closing = lexer.RBRACKET
	}

	p.nextToken()

	expr.Body = p.parseExpression(LOWEST)
	if expr.Body == nil {
		return nil
	}

	if !p.expectPeek(closing) {
		return nil
	}

	expr.Modifiers = p.parseModifiers()

	return expr
}

// Helpers

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t lexer.TokenType) {
	// Report the error just after the last successfully parsed token
	line := p.curToken.Line
	column := p.curToken.Column + len(p.curToken.Literal)

	p.addStructuredError("PARSE-0001", line, column, map[string]any{
		"Expected": tokenTypeToReadableName(t),
		"Got":      tokenLiteralOrName(p.peekToken),
	})
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	p.addStructuredError("PARSE-0002", tok.Line, tok.Column, map[string]any{
		"Token": tokenLiteralOrName(tok),
	})
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func tokenLiteralOrName(tok lexer.Token) string {
	if tok.Literal != "" {
		return tok.Literal
	}
	return tokenTypeToReadableName(tok.Type)
}

func tokenTypeToReadableName(t lexer.TokenType) string {
	switch t {
	case lexer.INT:
		return "a number"
	case lexer.RPAREN:
		return "')'"
	case lexer.RBRACKET:
		return "']'"
	case lexer.LPAREN:
		return "'('"
	case lexer.LBRACKET:
		return "'['"
	case lexer.DIE:
		return "'d'"
	case lexer.EOF:
		return "end of input"
	default:
		return t.String()
	}
}
