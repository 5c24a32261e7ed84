package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mgomes/tapescript/bf"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "repl":
		return replCommand(args[2:])
	case "lsp":
		return lspCommand(args[2:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	checkOnly := fs.Bool("check", false, "only parse the program without executing")
	inputText := fs.String("input", "", "program input; stdin is used when unset")
	configPath := fs.String("config", "", "path to a YAML config file")
	verbose := fs.Bool("v", false, "log run diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("bf run: program path required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(remaining[0])
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	engine, err := bf.NewEngine(cfg.engineConfig())
	if err != nil {
		return err
	}
	script, err := engine.Compile(string(source))
	if err != nil {
		return fmt.Errorf("compile failed: %w", err)
	}
	if *checkOnly {
		return nil
	}

	var input io.Reader = os.Stdin
	if flagWasSet(fs, "input") {
		input = strings.NewReader(*inputText)
	}

	logger := newRunLogger(*verbose, os.Stderr)
	runID := uuid.NewString()
	logger.Debug("run started", "run", runID, "program", remaining[0], "limits", engine.ConfigSummary())

	start := time.Now()
	rt, err := script.Run(bf.NewStreamIO(input, os.Stdout))
	logger.Info("run finished",
		"run", runID,
		"steps", rt.Steps(),
		"output_bytes", len(rt.Output()),
		"pointer", rt.Pointer(),
		"duration", time.Since(start),
	)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}

func newRunLogger(verbose bool, w io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func flagWasSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args...]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [-check] [-input text] [-config file] [-v] <program>")
	fmt.Fprintln(os.Stderr, "  fmt [-w] [-check] <paths...>")
	fmt.Fprintln(os.Stderr, "  analyze <program>")
	fmt.Fprintln(os.Stderr, "  repl [-config file]")
	fmt.Fprintln(os.Stderr, "  lsp")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
