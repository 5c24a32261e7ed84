package bf

import (
	"fmt"
)

// Config controls execution bounds.
type Config struct {
	// StepQuota caps executed statements plus loop tests per run. Zero means
	// unlimited.
	StepQuota int
}

// Engine compiles sources and creates runtimes that share one Config.
type Engine struct {
	config Config
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.StepQuota < 0 {
		return nil, fmt.Errorf("bf: step quota cannot be negative (%d)", cfg.StepQuota)
	}
	return &Engine{config: cfg}, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// Compile parses source. Parse errors are returned before anything runs.
func (e *Engine) Compile(source string) (*Script, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return &Script{engine: e, program: program}, nil
}

// NewRuntime returns a fresh runtime bound to the engine's step quota.
func (e *Engine) NewRuntime(io IO) *Runtime {
	return newRuntime(io, e.config.StepQuota)
}

// ConfigSummary provides a human-readable description of the engine limits.
func (e *Engine) ConfigSummary() string {
	quota := "unlimited"
	if e.config.StepQuota > 0 {
		quota = fmt.Sprintf("%d", e.config.StepQuota)
	}
	return fmt.Sprintf("tape=%d steps=%s", TapeSize, quota)
}

// Script is a compiled program ready to run.
type Script struct {
	engine  *Engine
	program *Program
}

func (s *Script) Program() *Program {
	return s.program
}

// Run executes the script on a fresh runtime. The runtime is returned even on
// failure so callers can inspect the tape and output.
func (s *Script) Run(io IO) (*Runtime, error) {
	rt := s.engine.NewRuntime(io)
	err := rt.Execute(s.program)
	return rt, err
}
