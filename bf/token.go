package bf

// TokenType identifies one of the eight instruction symbols.
type TokenType byte

const (
	TokenIncPtr TokenType = '>'
	TokenDecPtr TokenType = '<'
	TokenIncVal TokenType = '+'
	TokenDecVal TokenType = '-'
	TokenOutput TokenType = '.'
	TokenInput  TokenType = ','
	TokenOpen   TokenType = '['
	TokenClose  TokenType = ']'
)

// Token is a single lexed instruction. It carries no payload beyond its type.
type Token struct {
	Type TokenType
}

func (t Token) String() string {
	return string(rune(t.Type))
}

// Position identifies a character in the source. Offset is zero-based and
// counts characters, Line and Column are one-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

func lookupSymbol(ch rune) (TokenType, bool) {
	switch ch {
	case '>', '<', '+', '-', '.', ',', '[', ']':
		return TokenType(ch), true
	default:
		return 0, false
	}
}
