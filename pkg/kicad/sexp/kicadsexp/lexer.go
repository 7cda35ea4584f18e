package kicadsexp

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a lexical token with the line it started on.
type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// Lexer tokenizes S-expressions from an io.Reader
type Lexer struct {
	reader *bufio.Reader
	line   int
	peeked bool
	next   rune
}

// NewLexer creates a new lexer
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
		line:   1,
	}
}

// NextToken reads the next token, skipping whitespace and # comments.
func (l *Lexer) NextToken() (Token, error) {
	for {
		ch, err := l.peek()
		if err == io.EOF {
			return Token{Type: TokenEOF, Line: l.line}, nil
		}
		if err != nil {
			return Token{}, err
		}

		switch {
		case unicode.IsSpace(ch):
			l.read()
			continue
		case ch == '#':
			l.skipLine()
			continue
		}

		line := l.line
		switch ch {
		case '(':
			l.read()
			return Token{Type: TokenLeftParen, Value: "(", Line: line}, nil
		case ')':
			l.read()
			return Token{Type: TokenRightParen, Value: ")", Line: line}, nil
		case '"':
			return l.readString(line)
		default:
			return l.readSymbol(line)
		}
	}
}

func (l *Lexer) peek() (rune, error) {
	if l.peeked {
		return l.next, nil
	}
	ch, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	l.next, l.peeked = ch, true
	return ch, nil
}

func (l *Lexer) read() (rune, error) {
	ch, err := l.peek()
	if err != nil {
		return 0, err
	}
	l.peeked = false
	if ch == '\n' {
		l.line++
	}
	return ch, nil
}

func (l *Lexer) skipLine() {
	for {
		ch, err := l.read()
		if err != nil || ch == '\n' {
			return
		}
	}
}

func (l *Lexer) readString(line int) (Token, error) {
	l.read() // opening quote

	var result []rune
	for {
		ch, err := l.read()
		if err == io.EOF {
			return Token{}, fmt.Errorf("line %d: unexpected EOF in string", line)
		}
		if err != nil {
			return Token{}, err
		}

		if ch == '"' {
			break
		}
		if ch == '\\' {
			esc, err := l.read()
			if err != nil {
				return Token{}, fmt.Errorf("line %d: unexpected EOF after backslash", l.line)
			}
			switch esc {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case 'r':
				result = append(result, '\r')
			default:
				result = append(result, esc)
			}
			continue
		}
		result = append(result, ch)
	}

	return Token{Type: TokenString, Value: string(result), Line: line}, nil
}

func (l *Lexer) readSymbol(line int) (Token, error) {
	var result []rune
	for {
		ch, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Token{}, err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		l.read()
		result = append(result, ch)
	}
	return Token{Type: TokenSymbol, Value: string(result), Line: line}, nil
}
