package bf

type Node interface {
	Pos() Position
}

type Statement interface {
	Node
	stmtNode()
}

// Program is the top-level statement sequence produced by Parse.
type Program struct {
	Statements []Statement
	source     string
}

func (p *Program) Pos() Position {
	if len(p.Statements) == 0 {
		return Position{Line: 1, Column: 1}
	}
	return p.Statements[0].Pos()
}

// Source returns the text the program was parsed from.
func (p *Program) Source() string {
	return p.source
}

type IncPtrStmt struct {
	position Position
}

func (s *IncPtrStmt) stmtNode()     {}
func (s *IncPtrStmt) Pos() Position { return s.position }

type DecPtrStmt struct {
	position Position
}

func (s *DecPtrStmt) stmtNode()     {}
func (s *DecPtrStmt) Pos() Position { return s.position }

type IncValStmt struct {
	position Position
}

func (s *IncValStmt) stmtNode()     {}
func (s *IncValStmt) Pos() Position { return s.position }

type DecValStmt struct {
	position Position
}

func (s *DecValStmt) stmtNode()     {}
func (s *DecValStmt) Pos() Position { return s.position }

type OutputStmt struct {
	position Position
}

func (s *OutputStmt) stmtNode()     {}
func (s *OutputStmt) Pos() Position { return s.position }

type InputStmt struct {
	position Position
}

func (s *InputStmt) stmtNode()     {}
func (s *InputStmt) Pos() Position { return s.position }

// LoopStmt owns its body. Pos is the position of the opening bracket.
type LoopStmt struct {
	Body     []Statement
	position Position
}

func (s *LoopStmt) stmtNode()     {}
func (s *LoopStmt) Pos() Position { return s.position }

// Count returns the number of statements including nested loop bodies. Each
// loop counts once in addition to its body.
func Count(stmts []Statement) int {
	n := 0
	for _, stmt := range stmts {
		n++
		if loop, ok := stmt.(*LoopStmt); ok {
			n += Count(loop.Body)
		}
	}
	return n
}
