package bf

import "strings"

const formatIndent = "  "

// Format renders a program in canonical layout: runs of simple instructions
// share a line, loop brackets sit on their own lines and bodies are indented.
// Formatting the parse of Format's output returns the same text.
func Format(program *Program) string {
	if program == nil {
		return ""
	}
	var b strings.Builder
	formatBlock(&b, program.Statements, 0)
	return b.String()
}

func formatBlock(b *strings.Builder, stmts []Statement, depth int) {
	indent := strings.Repeat(formatIndent, depth)
	var run strings.Builder
	flush := func() {
		if run.Len() == 0 {
			return
		}
		b.WriteString(indent)
		b.WriteString(run.String())
		b.WriteByte('\n')
		run.Reset()
	}

	for _, stmt := range stmts {
		loop, ok := stmt.(*LoopStmt)
		if !ok {
			run.WriteByte(byte(Symbol(stmt)))
			continue
		}
		flush()
		if len(loop.Body) == 0 {
			b.WriteString(indent + "[]\n")
			continue
		}
		b.WriteString(indent + "[\n")
		formatBlock(b, loop.Body, depth+1)
		b.WriteString(indent + "]\n")
	}
	flush()
}

// Symbol returns the token type a statement was parsed from. Loops report
// TokenOpen.
func Symbol(stmt Statement) TokenType {
	switch stmt.(type) {
	case *IncPtrStmt:
		return TokenIncPtr
	case *DecPtrStmt:
		return TokenDecPtr
	case *IncValStmt:
		return TokenIncVal
	case *DecValStmt:
		return TokenDecVal
	case *OutputStmt:
		return TokenOutput
	case *InputStmt:
		return TokenInput
	default:
		return TokenOpen
	}
}
