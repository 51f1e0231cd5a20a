package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `4d6kh3 + 2
2d10dl1
(1+2)d8
3(1d6+2)kl2
1d20! - 4/2
[2d4]`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{INT, "4"},
		{DIE, "d"},
		{INT, "6"},
		{KEEP_HIGH, "kh"},
		{INT, "3"},
		{PLUS, "+"},
		{INT, "2"},

		{INT, "2"},
		{DIE, "d"},
		{INT, "10"},
		{DROP_LOW, "dl"},
		{INT, "1"},

		{LPAREN, "("},
		{INT, "1"},
		{PLUS, "+"},
		{INT, "2"},
		{RPAREN, ")"},
		{DIE, "d"},
		{INT, "8"},

		{INT, "3"},
		{LPAREN, "("},
		{INT, "1"},
		{DIE, "d"},
		{INT, "6"},
		{PLUS, "+"},
		{INT, "2"},
		{RPAREN, ")"},
		{KEEP_LOW, "kl"},
		{INT, "2"},

		{INT, "1"},
		{DIE, "d"},
		{INT, "20"},
		{BANG, "!"},
		{MINUS, "-"},
		{INT, "4"},
		{SLASH, "/"},
		{INT, "2"},

		{LBRACKET, "["},
		{INT, "2"},
		{DIE, "d"},
		{INT, "4"},
		{RBRACKET, "]"},

		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - token type wrong. expected=%s, got=%s (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLookupWord(t *testing.T) {
	tests := []struct {
		word     string
		expected TokenType
	}{
		{"d", DIE},
		{"dh", DROP_HIGH},
		{"dl", DROP_LOW},
		{"k", KEEP_HIGH},
		{"kh", KEEP_HIGH},
		{"kl", KEEP_LOW},
		{"x", ILLEGAL},
		{"khx", ILLEGAL},
		{"drop", ILLEGAL},
	}

	for _, tt := range tests {
		if got := LookupWord(tt.word); got != tt.expected {
			t.Errorf("LookupWord(%q) = %s, want %s", tt.word, got, tt.expected)
		}
	}
}

func TestMaximalMunchLetterRuns(t *testing.T) {
	// Adjacent modifier letters form one run, so "khkl" is one illegal word
	// rather than "kh" followed by "kl".
	l := New("khkl")
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Errorf("token type = %s, want ILLEGAL", tok.Type)
	}
	if tok.Literal != "khkl" {
		t.Errorf("literal = %q, want %q", tok.Literal, "khkl")
	}
}

func TestIllegalCharacters(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"4 # 2", "#"},
		{"1d6?", "?"},
		{"2d6 % 3", "%"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		found := false
		for tok := l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
			if tok.Type == ILLEGAL {
				found = true
				if tok.Literal != tt.literal {
					t.Errorf("input %q: illegal literal = %q, want %q", tt.input, tok.Literal, tt.literal)
				}
				break
			}
		}
		if !found {
			t.Errorf("input %q: expected an ILLEGAL token", tt.input)
		}
	}
}

func TestWhitespaceInsignificance(t *testing.T) {
	// The same token stream must come out however the input is spaced.
	inputs := []string{"4d6kh3+2", "4 d 6 kh 3 + 2", "4d6\tkh3 +\n2"}

	want := []TokenType{INT, DIE, INT, KEEP_HIGH, INT, PLUS, INT, EOF}

	for _, input := range inputs {
		l := New(input)
		for i, expected := range want {
			tok := l.NextToken()
			if tok.Type != expected {
				t.Errorf("input %q, token %d: got %s, want %s", input, i, tok.Type, expected)
			}
		}
	}
}

func TestTokenPositions(t *testing.T) {
	input := "1d6\n 2d8"

	tests := []struct {
		literal string
		line    int
		column  int
	}{
		{"1", 1, 1},
		{"d", 1, 2},
		{"6", 1, 3},
		{"2", 2, 2},
		{"d", 2, 3},
		{"8", 2, 4},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Literal != tt.literal {
			t.Fatalf("tests[%d] - literal = %q, want %q", i, tok.Literal, tt.literal)
		}
		if tok.Line != tt.line || tok.Column != tt.column {
			t.Errorf("tests[%d] (%q) - position = %d:%d, want %d:%d",
				i, tt.literal, tok.Line, tok.Column, tt.line, tt.column)
		}
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: KEEP_HIGH, Literal: "kh", Line: 1, Column: 4}
	got := tok.String()
	want := "{Type: KEEP_HIGH, Literal: kh, Line: 1, Column: 4}"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
