package bf

import (
	"errors"
	"fmt"
	"strings"
)

// TapeSize is the fixed number of cells on the tape.
const TapeSize = 1024

var (
	ErrPointerOutOfBounds = errors.New("pointer out of bounds")
	ErrStepQuotaExceeded  = errors.New("step quota exceeded")
)

// RuntimeError is a fatal execution fault. It wraps ErrPointerOutOfBounds,
// ErrStepQuotaExceeded, or the I/O error that aborted the run.
type RuntimeError struct {
	Message   string
	Pos       Position
	Pointer   int
	CodeFrame string
	err       error
}

func (re *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(re.Message)
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	if re.Pos.Line > 0 {
		fmt.Fprintf(&b, "\n  at %d:%d (pointer %d)", re.Pos.Line, re.Pos.Column, re.Pointer)
	} else {
		fmt.Fprintf(&b, "\n  at pointer %d", re.Pointer)
	}
	return b.String()
}

func (re *RuntimeError) Unwrap() error {
	return re.err
}

// Runtime holds the tape, the pointer, and the IO capability. The zero tape
// and pointer persist across Execute calls until Reset.
type Runtime struct {
	tape   [TapeSize]byte
	ptr    int
	io     IO
	output []byte
	steps  int
	quota  int
	source string
}

// NewRuntime returns a runtime with a zeroed tape and no step quota. A nil io
// is replaced with an empty BufferIO.
func NewRuntime(io IO) *Runtime {
	return newRuntime(io, 0)
}

func newRuntime(io IO, quota int) *Runtime {
	if io == nil {
		io = NewBufferIO(nil)
	}
	return &Runtime{io: io, quota: quota}
}

// Execute runs the program body once from start to finish. The step count
// and quota apply per call. If the IO capability can be flushed it is flushed
// before Execute returns.
func (r *Runtime) Execute(program *Program) (err error) {
	if program == nil {
		return errors.New("bf: nil program")
	}
	r.source = program.source
	r.steps = 0
	defer func() {
		f, ok := r.io.(flusher)
		if !ok {
			return
		}
		if flushErr := f.Flush(); flushErr != nil && err == nil {
			err = fmt.Errorf("bf: flush output: %w", flushErr)
		}
	}()
	return r.executeBlock(program.Statements, nil)
}

// executeBlock runs stmts once when loop is nil. Otherwise it re-tests the
// current cell before each pass and returns once it reads zero.
func (r *Runtime) executeBlock(stmts []Statement, loop *LoopStmt) error {
	for {
		if loop != nil {
			if err := r.step(loop); err != nil {
				return err
			}
			if r.tape[r.ptr] == 0 {
				return nil
			}
		}
		for _, stmt := range stmts {
			if err := r.exec(stmt); err != nil {
				return err
			}
		}
		if loop == nil {
			return nil
		}
	}
}

func (r *Runtime) exec(stmt Statement) error {
	if _, isLoop := stmt.(*LoopStmt); !isLoop {
		if err := r.step(stmt); err != nil {
			return err
		}
	}

	switch s := stmt.(type) {
	case *IncPtrStmt:
		if r.ptr+1 >= TapeSize {
			return r.fault(s, ErrPointerOutOfBounds, "pointer moved past the last cell (%d)", TapeSize-1)
		}
		r.ptr++
	case *DecPtrStmt:
		if r.ptr == 0 {
			return r.fault(s, ErrPointerOutOfBounds, "pointer moved below cell 0")
		}
		r.ptr--
	case *IncValStmt:
		r.tape[r.ptr]++
	case *DecValStmt:
		r.tape[r.ptr]--
	case *OutputStmt:
		value := r.tape[r.ptr]
		r.output = append(r.output, value)
		if err := r.io.WriteChar(value); err != nil {
			return r.fault(s, err, "write failed: %v", err)
		}
	case *InputStmt:
		value, ok, err := r.io.ReadChar()
		if err != nil {
			return r.fault(s, err, "read failed: %v", err)
		}
		if ok {
			r.tape[r.ptr] = value
		}
	case *LoopStmt:
		return r.executeBlock(s.Body, s)
	default:
		return fmt.Errorf("bf: unknown statement %T", stmt)
	}
	return nil
}

func (r *Runtime) step(node Node) error {
	r.steps++
	if r.quota > 0 && r.steps > r.quota {
		return r.fault(node, ErrStepQuotaExceeded, "%s (%d)", ErrStepQuotaExceeded, r.quota)
	}
	return nil
}

func (r *Runtime) fault(node Node, cause error, format string, args ...any) error {
	pos := node.Pos()
	return &RuntimeError{
		Message:   fmt.Sprintf(format, args...),
		Pos:       pos,
		Pointer:   r.ptr,
		CodeFrame: formatCodeFrame(r.source, pos),
		err:       cause,
	}
}

// Output returns a copy of every byte written by `.` so far.
func (r *Runtime) Output() []byte {
	return append([]byte(nil), r.output...)
}

// Cell returns the value of cell i.
func (r *Runtime) Cell(i int) (byte, error) {
	if i < 0 || i >= TapeSize {
		return 0, fmt.Errorf("bf: cell %d: %w", i, ErrPointerOutOfBounds)
	}
	return r.tape[i], nil
}

func (r *Runtime) Pointer() int {
	return r.ptr
}

// Steps returns the number of steps taken by the most recent Execute.
func (r *Runtime) Steps() int {
	return r.steps
}

// Window returns up to radius cells on each side of the pointer together with
// the index of the first returned cell.
func (r *Runtime) Window(radius int) (int, []byte) {
	radius = min(max(radius, 0), TapeSize)
	start := max(r.ptr-radius, 0)
	end := min(r.ptr+radius+1, TapeSize)
	return start, append([]byte(nil), r.tape[start:end]...)
}

// Reset zero-fills the tape, returns the pointer to 0, and clears the output
// log and step count. The IO capability is kept.
func (r *Runtime) Reset() {
	clear(r.tape[:])
	r.ptr = 0
	r.output = nil
	r.steps = 0
	r.source = ""
}
