package bf

import (
	"errors"
	"fmt"
	"strings"
)

// ParseErrorKind classifies a ParseError.
type ParseErrorKind int

const (
	LexerFailure ParseErrorKind = iota + 1
	UnexpectedClosingBracket
	UnclosedOpeningBracket
)

func (k ParseErrorKind) String() string {
	switch k {
	case LexerFailure:
		return "lexer failure"
	case UnexpectedClosingBracket:
		return "unexpected closing bracket"
	case UnclosedOpeningBracket:
		return "unclosed opening bracket"
	default:
		return fmt.Sprintf("ParseErrorKind(%d)", int(k))
	}
}

var (
	ErrUnexpectedClosingBracket = errors.New("unexpected closing bracket")
	ErrUnclosedOpeningBracket   = errors.New("unclosed opening bracket")
)

// ParseError is returned by Parse. For LexerFailure the underlying
// *LexerError is available through Lexer and errors.As.
type ParseError struct {
	Kind   ParseErrorKind
	Pos    Position
	Lexer  *LexerError
	source string
}

func (e *ParseError) Error() string {
	if e.Kind == LexerFailure && e.Lexer != nil {
		return e.Lexer.Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Kind)
	if frame := formatCodeFrame(e.source, e.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case LexerFailure:
		if e.Lexer == nil {
			return nil
		}
		return e.Lexer
	case UnexpectedClosingBracket:
		return ErrUnexpectedClosingBracket
	case UnclosedOpeningBracket:
		return ErrUnclosedOpeningBracket
	default:
		return nil
	}
}

type scope struct {
	stmts []Statement
	open  Position
}

type parser struct {
	source string
	scopes []*scope
}

func newParser(source string) *parser {
	return &parser{
		source: source,
		scopes: []*scope{{}},
	}
}

func (p *parser) current() *scope {
	return p.scopes[len(p.scopes)-1]
}

func (p *parser) append(stmt Statement) {
	cur := p.current()
	cur.stmts = append(cur.stmts, stmt)
}

func (p *parser) errorAt(kind ParseErrorKind, pos Position) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, source: p.source}
}

// ParseProgram lexes the whole source first, so lexing errors are reported
// before any structural error.
func (p *parser) ParseProgram() (*Program, error) {
	tokens, positions, err := tokenize(p.source)
	if err != nil {
		var lexErr *LexerError
		if errors.As(err, &lexErr) {
			return nil, &ParseError{Kind: LexerFailure, Pos: lexErr.Pos(), Lexer: lexErr, source: p.source}
		}
		return nil, err
	}

	for i, tok := range tokens {
		pos := positions[i]
		switch tok.Type {
		case TokenIncPtr:
			p.append(&IncPtrStmt{position: pos})
		case TokenDecPtr:
			p.append(&DecPtrStmt{position: pos})
		case TokenIncVal:
			p.append(&IncValStmt{position: pos})
		case TokenDecVal:
			p.append(&DecValStmt{position: pos})
		case TokenOutput:
			p.append(&OutputStmt{position: pos})
		case TokenInput:
			p.append(&InputStmt{position: pos})
		case TokenOpen:
			p.scopes = append(p.scopes, &scope{open: pos})
		case TokenClose:
			if len(p.scopes) < 2 {
				return nil, p.errorAt(UnexpectedClosingBracket, pos)
			}
			closed := p.current()
			p.scopes = p.scopes[:len(p.scopes)-1]
			p.append(&LoopStmt{Body: closed.stmts, position: closed.open})
		}
	}

	if len(p.scopes) > 1 {
		return nil, p.errorAt(UnclosedOpeningBracket, p.current().open)
	}
	return &Program{Statements: p.scopes[0].stmts, source: p.source}, nil
}

// Parse turns source into a Program. Errors are *ParseError values.
func Parse(source string) (*Program, error) {
	return newParser(source).ParseProgram()
}
