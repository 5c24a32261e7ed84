package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgomes/tapescript/bf"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"bf", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	err := runCLI([]string{"bf", "unknown"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCLIWithoutCommand(t *testing.T) {
	err := runCLI([]string{"bf"})
	if err == nil || !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("expected invalid command error, got %v", err)
	}
}

func TestRunCommandHelloWorld(t *testing.T) {
	path := writeProgram(t, helloWorld)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-input", "", path})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "Hello World!\n" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestRunCommandUsesInputFlag(t *testing.T) {
	path := writeProgram(t, ",.,.")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-input", "hi", "-v", path})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "hi" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestRunCommandCheckOnly(t *testing.T) {
	path := writeProgram(t, "+[<]")
	if err := runCommand([]string{"-check", path}); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	bad := writeProgram(t, "+[")
	err := runCommand([]string{"-check", bad})
	if err == nil || !strings.Contains(err.Error(), "compile failed") {
		t.Fatalf("expected compile failure, got %v", err)
	}
	if !errors.Is(err, bf.ErrUnclosedOpeningBracket) {
		t.Fatalf("expected wrapped parse error, got %v", err)
	}
}

func TestRunCommandReportsRuntimeFault(t *testing.T) {
	path := writeProgram(t, "+.<")

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"-input", "", path})
	})
	if err == nil || !strings.Contains(err.Error(), "execution failed") {
		t.Fatalf("expected execution failure, got %v", err)
	}
	if !errors.Is(err, bf.ErrPointerOutOfBounds) {
		t.Fatalf("expected out of bounds fault, got %v", err)
	}
	if out != "\x01" {
		t.Fatalf("expected output before the fault to be flushed, got %q", out)
	}
}

func TestRunCommandAppliesConfigQuota(t *testing.T) {
	path := writeProgram(t, "+[]")
	cfgPath := writeConfig(t, "step_quota: 100\n")

	err := runCommand([]string{"-config", cfgPath, "-input", "", path})
	if !errors.Is(err, bf.ErrStepQuotaExceeded) {
		t.Fatalf("expected step quota error, got %v", err)
	}
}

func TestRunCommandRequiresProgramPath(t *testing.T) {
	err := runCommand(nil)
	if err == nil || !strings.Contains(err.Error(), "program path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func writeProgram(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.bf")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write program: %v", err)
	}
	return path
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("read stdout: %v", copyErr)
	}
	_ = r.Close()
	return buf.String(), runErr
}
