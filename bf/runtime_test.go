package bf

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func runSource(t *testing.T, source string, input []byte) (*Runtime, *BufferIO) {
	t.Helper()
	io := NewBufferIO(input)
	rt := NewRuntime(io)
	if err := rt.Execute(mustParse(t, source)); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	return rt, io
}

func cell(t *testing.T, rt *Runtime, i int) byte {
	t.Helper()
	v, err := rt.Cell(i)
	if err != nil {
		t.Fatalf("cell %d: %v", i, err)
	}
	return v
}

func TestExecuteIncrementThenOutput(t *testing.T) {
	for _, n := range []int{0, 1, 4, 255, 256, 300} {
		_, io := runSource(t, strings.Repeat("+", n)+".", nil)
		want := []byte{byte(n % 256)}
		if !bytes.Equal(io.Output(), want) {
			t.Fatalf("%d increments: expected %v, got %v", n, want, io.Output())
		}
	}
}

func TestExecuteDecrementWraps(t *testing.T) {
	rt, _ := runSource(t, "-", nil)
	if got := cell(t, rt, 0); got != 255 {
		t.Fatalf("expected 255, got %d", got)
	}
}

func TestExecuteLoopMovesValue(t *testing.T) {
	rt, _ := runSource(t, "++[>+++<-]>", nil)
	if got := cell(t, rt, 0); got != 0 {
		t.Fatalf("expected cell 0 to be 0, got %d", got)
	}
	if got := cell(t, rt, 1); got != 6 {
		t.Fatalf("expected cell 1 to be 6, got %d", got)
	}
	if rt.Pointer() != 1 {
		t.Fatalf("expected pointer 1, got %d", rt.Pointer())
	}
}

func TestExecuteLoopSkippedOnZeroCell(t *testing.T) {
	rt, io := runSource(t, "[.+]+", nil)
	if len(io.Output()) != 0 {
		t.Fatalf("loop body should not run, output %v", io.Output())
	}
	if got := cell(t, rt, 0); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestExecuteNestedLoops(t *testing.T) {
	rt, _ := runSource(t, "+++[>++[>+++<-]<-]", nil)
	if got := cell(t, rt, 2); got != 18 {
		t.Fatalf("expected 18, got %d", got)
	}
}

func TestExecuteInputPassthrough(t *testing.T) {
	_, io := runSource(t, ",.", []byte("A"))
	if !bytes.Equal(io.Output(), []byte("A")) {
		t.Fatalf("expected A, got %q", io.Output())
	}
}

func TestExecuteExhaustedInputLeavesCellUnchanged(t *testing.T) {
	rt, _ := runSource(t, "+++,", nil)
	if got := cell(t, rt, 0); got != 3 {
		t.Fatalf("expected cell to stay 3, got %d", got)
	}
}

func TestExecuteHelloWorld(t *testing.T) {
	if len(helloWorld) != 106 {
		t.Fatalf("fixture should be 106 characters, got %d", len(helloWorld))
	}
	rt, io := runSource(t, helloWorld, nil)
	if got := string(io.Output()); got != "Hello World!\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if got := string(rt.Output()); got != "Hello World!\n" {
		t.Fatalf("unexpected output log %q", got)
	}
}

func TestExecuteCatUntilZeroByte(t *testing.T) {
	_, io := runSource(t, "+[,.]", []byte("ab\x00"))
	if got := string(io.Output()); got != "ab\x00" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestExecutePointerBelowZeroFaults(t *testing.T) {
	rt := NewRuntime(nil)
	err := rt.Execute(mustParse(t, "+\n<"))
	if !errors.Is(err, ErrPointerOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected RuntimeError, got %T", err)
	}
	if runtimeErr.Pos.Line != 2 || runtimeErr.Pos.Column != 1 {
		t.Fatalf("unexpected position %+v", runtimeErr.Pos)
	}
	if !strings.Contains(err.Error(), "pointer moved below cell 0") || !strings.Contains(err.Error(), "at 2:1 (pointer 0)") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestExecutePointerPastEndFaults(t *testing.T) {
	rt := NewRuntime(nil)
	err := rt.Execute(mustParse(t, strings.Repeat(">", TapeSize)))
	if !errors.Is(err, ErrPointerOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	if rt.Pointer() != TapeSize-1 {
		t.Fatalf("expected pointer to stop at last cell, got %d", rt.Pointer())
	}

	rt = NewRuntime(nil)
	if err := rt.Execute(mustParse(t, strings.Repeat(">", TapeSize-1))); err != nil {
		t.Fatalf("moving to the last cell should succeed: %v", err)
	}
}

func TestExecuteStepQuota(t *testing.T) {
	program := mustParse(t, "++[-]")

	rt := newRuntime(nil, 7)
	if err := rt.Execute(program); err != nil {
		t.Fatalf("expected program to fit quota: %v", err)
	}
	if rt.Steps() != 7 {
		t.Fatalf("expected 7 steps, got %d", rt.Steps())
	}

	rt = newRuntime(nil, 6)
	err := rt.Execute(program)
	if !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestExecuteInfiniteLoopStopsAtQuota(t *testing.T) {
	rt := newRuntime(nil, 1000)
	err := rt.Execute(mustParse(t, "+[]"))
	if !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

type failingIO struct {
	readErr  error
	writeErr error
}

func (f failingIO) ReadChar() (byte, bool, error) { return 0, false, f.readErr }
func (f failingIO) WriteChar(byte) error         { return f.writeErr }

func TestExecuteSurfacesIOErrors(t *testing.T) {
	boom := errors.New("boom")

	err := NewRuntime(failingIO{writeErr: boom}).Execute(mustParse(t, "."))
	if !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}

	err = NewRuntime(failingIO{readErr: boom}).Execute(mustParse(t, ","))
	if !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestExecuteStatePersistsUntilReset(t *testing.T) {
	rt := NewRuntime(nil)
	if err := rt.Execute(mustParse(t, "+++>")); err != nil {
		t.Fatalf("first execute: %v", err)
	}
	if err := rt.Execute(mustParse(t, "++.")); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if got := cell(t, rt, 1); got != 2 || cell(t, rt, 0) != 3 {
		t.Fatalf("state was not carried over")
	}

	rt.Reset()
	if rt.Pointer() != 0 || cell(t, rt, 0) != 0 || cell(t, rt, 1) != 0 {
		t.Fatalf("reset did not clear tape")
	}
	if len(rt.Output()) != 0 || rt.Steps() != 0 {
		t.Fatalf("reset did not clear output log and steps")
	}
}

func TestCellRejectsOutOfRangeIndex(t *testing.T) {
	rt := NewRuntime(nil)
	for _, i := range []int{-1, TapeSize} {
		if _, err := rt.Cell(i); !errors.Is(err, ErrPointerOutOfBounds) {
			t.Fatalf("cell %d: expected out of bounds, got %v", i, err)
		}
	}
}

func TestWindowClampsToTape(t *testing.T) {
	rt, _ := runSource(t, "+>++>+++<", nil)
	start, cells := rt.Window(2)
	if start != 0 || !bytes.Equal(cells, []byte{1, 2, 3, 0}) {
		t.Fatalf("unexpected window %d %v", start, cells)
	}

	rt, _ = runSource(t, strings.Repeat(">", TapeSize-1)+"+", nil)
	start, cells = rt.Window(1)
	if start != TapeSize-2 || !bytes.Equal(cells, []byte{0, 1}) {
		t.Fatalf("unexpected window %d %v", start, cells)
	}

	for _, radius := range []int{TapeSize, math.MaxInt, -5} {
		start, cells = rt.Window(radius)
		want := TapeSize
		if radius < 0 {
			want = 1
		}
		if len(cells) != want {
			t.Fatalf("Window(%d) returned %d cells, want %d", radius, len(cells), want)
		}
		if radius > 0 && start != 0 {
			t.Fatalf("Window(%d) started at %d, want 0", radius, start)
		}
	}
}

func TestExecuteNilProgram(t *testing.T) {
	if err := NewRuntime(nil).Execute(nil); err == nil {
		t.Fatalf("expected error for nil program")
	}
}
