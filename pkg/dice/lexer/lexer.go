package lexer

import "fmt"

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	INT // 4, 6, 100

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	BANG     // ! (explode modifier)

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Dice words
	DIE       // d, the die operator, or the bare drop-high modifier after a roll
	KEEP_HIGH // kh, or bare k
	KEEP_LOW  // kl
	DROP_HIGH // dh
	DROP_LOW  // dl
)

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case INT:
		return "INT"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case ASTERISK:
		return "ASTERISK"
	case SLASH:
		return "SLASH"
	case BANG:
		return "BANG"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case LBRACKET:
		return "LBRACKET"
	case RBRACKET:
		return "RBRACKET"
	case DIE:
		return "DIE"
	case KEEP_HIGH:
		return "KEEP_HIGH"
	case KEEP_LOW:
		return "KEEP_LOW"
	case DROP_HIGH:
		return "DROP_HIGH"
	case DROP_LOW:
		return "DROP_LOW"
	default:
		return "UNKNOWN"
	}
}

// diceWords maps the letter runs of the notation to token types. Letter runs
// are read maximal-munch, so "kh" can never be mis-read as "k" followed by a
// stray "h". Bare "k" keeps high and bare "d" drops high, matching the long
// forms; "d" is also the die operator and the parser decides which it is
// from position.
var diceWords = map[string]TokenType{
	"d":  DIE,
	"dh": DROP_HIGH,
	"dl": DROP_LOW,
	"k":  KEEP_HIGH,
	"kh": KEEP_HIGH,
	"kl": KEEP_LOW,
}

// LookupWord returns the token type for a letter run, or ILLEGAL if the run
// is not part of the notation
func LookupWord(word string) TokenType {
	if tok, ok := diceWords[word]; ok {
		return tok
	}
	return ILLEGAL
}

// Lexer tokenizes dice notation
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line (1-based)
	column       int  // current column (1-based)
}

// New creates a new lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character, tracking line and column
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII NUL represents EOF
		l.position = l.readPosition
		return
	}

	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	switch l.ch {
	case '+':
		tok = newToken(PLUS, l.ch, l.line, l.column)
	case '-':
		tok = newToken(MINUS, l.ch, l.line, l.column)
	case '*':
		tok = newToken(ASTERISK, l.ch, l.line, l.column)
	case '/':
		tok = newToken(SLASH, l.ch, l.line, l.column)
	case '!':
		tok = newToken(BANG, l.ch, l.line, l.column)
	case '(':
		tok = newToken(LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(RPAREN, l.ch, l.line, l.column)
	case '[':
		tok = newToken(LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(RBRACKET, l.ch, l.line, l.column)
	case 0:
		tok.Type = EOF
		tok.Literal = ""
		tok.Line = l.line
		tok.Column = l.column
	default:
		if isDigit(l.ch) {
			tok.Line = l.line
			tok.Column = l.column
			tok.Type = INT
			tok.Literal = l.readNumber()
			return tok
		}
		if isLetter(l.ch) {
			tok.Line = l.line
			tok.Column = l.column
			tok.Literal = l.readWord()
			tok.Type = LookupWord(tok.Literal)
			return tok
		}
		tok = newToken(ILLEGAL, l.ch, l.line, l.column)
	}

	l.readChar()
	return tok
}

// skipWhitespace skips spaces, tabs, and newlines. Whitespace carries no
// meaning in the notation; expression boundaries come from token structure.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readNumber reads a run of ASCII digits
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readWord reads a run of ASCII letters
func (l *Lexer) readWord() string {
	position := l.position
	for isLetter(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func newToken(tokenType TokenType, ch byte, line, column int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: column}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}
