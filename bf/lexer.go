package bf

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// LexerError reports the first character that is neither an instruction nor
// whitespace. Position is the zero-based character offset of that character.
type LexerError struct {
	Message  string
	Position int
	Line     int
	Column   int
	source   string
}

func (e *LexerError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lex error at %d:%d: %s", e.Line, e.Column, e.Message)
	if frame := formatCodeFrame(e.source, e.Pos()); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

// Pos returns the error location as a Position.
func (e *LexerError) Pos() Position {
	return Position{Offset: e.Position, Line: e.Line, Column: e.Column}
}

type lexer struct {
	input string

	offset int
	width  int

	pos  Position
	next Position

	ch rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, next: Position{Line: 1, Column: 1}}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	l.pos = l.next
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w
	l.ch = r

	l.next.Offset++
	if r == '\n' {
		l.next.Line++
		l.next.Column = 1
	} else {
		l.next.Column++
	}
}

func (l *lexer) atEOF() bool {
	return l.width == 0
}

func (l *lexer) skipWhitespace() {
	for !l.atEOF() {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readRune()
		default:
			return
		}
	}
}

// NextToken returns the next instruction and its position. ok is false once
// the input is exhausted.
func (l *lexer) NextToken() (tok Token, pos Position, ok bool, err error) {
	l.skipWhitespace()
	pos = l.pos
	if l.atEOF() {
		return Token{}, pos, false, nil
	}

	tt, known := lookupSymbol(l.ch)
	if !known {
		return Token{}, pos, false, &LexerError{
			Message:  fmt.Sprintf("unexpected character %q", l.ch),
			Position: pos.Offset,
			Line:     pos.Line,
			Column:   pos.Column,
			source:   l.input,
		}
	}
	l.readRune()
	return Token{Type: tt}, pos, true, nil
}

func tokenize(source string) ([]Token, []Position, error) {
	l := newLexer(source)
	var tokens []Token
	var positions []Position
	for {
		tok, pos, ok, err := l.NextToken()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return tokens, positions, nil
		}
		tokens = append(tokens, tok)
		positions = append(positions, pos)
	}
}

// Tokenize maps source to its instruction tokens, skipping whitespace. It
// stops at the first unrecognised character and returns a *LexerError.
func Tokenize(source string) ([]Token, error) {
	tokens, _, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
