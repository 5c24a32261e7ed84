package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mgomes/tapescript/bf"
	"gopkg.in/yaml.v3"
)

const (
	defaultPrompt     = "bf> "
	defaultTapeWindow = 8
)

type cliConfig struct {
	StepQuota int        `yaml:"step_quota"`
	REPL      replConfig `yaml:"repl"`
}

type replConfig struct {
	Prompt     string `yaml:"prompt"`
	TapeWindow int    `yaml:"tape_window"`
}

func defaultConfig() cliConfig {
	return cliConfig{
		REPL: replConfig{
			Prompt:     defaultPrompt,
			TapeWindow: defaultTapeWindow,
		},
	}
}

// loadConfig returns the defaults when path is empty. Keys that are absent
// from the file keep their default values.
func loadConfig(path string) (cliConfig, error) {
	cfg := defaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return cliConfig{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cliConfig{}, fmt.Errorf("config: %s is empty", path)
		}
		return cliConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cliConfig{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if cfg.REPL.Prompt == "" {
		cfg.REPL.Prompt = defaultPrompt
	}
	return cfg, nil
}

func (c cliConfig) validate() error {
	var issues []string
	if c.StepQuota < 0 {
		issues = append(issues, "step_quota must not be negative")
	}
	if c.REPL.TapeWindow < 0 || c.REPL.TapeWindow > bf.TapeSize/2 {
		issues = append(issues, fmt.Sprintf("repl.tape_window must be between 0 and %d", bf.TapeSize/2))
	}
	if len(issues) > 0 {
		return errors.New(strings.Join(issues, "; "))
	}
	return nil
}

func (c cliConfig) engineConfig() bf.Config {
	return bf.Config{StepQuota: c.StepQuota}
}
