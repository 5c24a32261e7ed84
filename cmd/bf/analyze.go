package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mgomes/tapescript/bf"
)

type lintWarning struct {
	Pos     bf.Position
	Message string
}

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("bf analyze: program path required")
	}

	programPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve program path: %w", err)
	}
	input, err := os.ReadFile(programPath)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	program, err := bf.Parse(string(input))
	if err != nil {
		return fmt.Errorf("analysis parse failed: %w", err)
	}

	warnings := analyzeProgram(program)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, warning := range warnings {
		fmt.Printf("%s:%d:%d: %s\n", programPath, warning.Pos.Line, warning.Pos.Column, warning.Message)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

func analyzeProgram(program *bf.Program) []lintWarning {
	warnings := make([]lintWarning, 0)
	lintStatements(program.Statements, true, &warnings)

	sort.SliceStable(warnings, func(i, j int) bool {
		return warnings[i].Pos.Offset < warnings[j].Pos.Offset
	})
	return warnings
}

// lintStatements walks one block. tapeZero is true while every cell is still
// known to be zero, which only holds at the start of the program.
func lintStatements(statements []bf.Statement, tapeZero bool, warnings *[]lintWarning) {
	var prev bf.Statement
	for _, stmt := range statements {
		switch typed := stmt.(type) {
		case *bf.LoopStmt:
			_, afterLoop := prev.(*bf.LoopStmt)
			switch {
			case tapeZero:
				addWarning(warnings, typed, "loop never runs: tape is still zero")
			case afterLoop:
				addWarning(warnings, typed, "loop never runs: current cell is zero after the previous loop")
			case len(typed.Body) == 0:
				addWarning(warnings, typed, "empty loop never terminates when the current cell is nonzero")
			}
			lintStatements(typed.Body, false, warnings)
		case *bf.IncValStmt, *bf.DecValStmt, *bf.InputStmt:
			tapeZero = false
		}

		if prev != nil && cancels(bf.Symbol(prev), bf.Symbol(stmt)) {
			addWarning(warnings, stmt, fmt.Sprintf("%q cancels the preceding %q", rune(bf.Symbol(stmt)), rune(bf.Symbol(prev))))
		}
		prev = stmt
	}
}

func cancels(a, b bf.TokenType) bool {
	switch {
	case a == bf.TokenIncVal && b == bf.TokenDecVal, a == bf.TokenDecVal && b == bf.TokenIncVal:
		return true
	case a == bf.TokenIncPtr && b == bf.TokenDecPtr, a == bf.TokenDecPtr && b == bf.TokenIncPtr:
		return true
	default:
		return false
	}
}

func addWarning(warnings *[]lintWarning, node bf.Node, message string) {
	*warnings = append(*warnings, lintWarning{Pos: node.Pos(), Message: message})
}
