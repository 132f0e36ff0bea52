package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a named, ordered list of test steps. Immutable once loaded.
type Scenario struct {
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description,omitempty"`
	SetupCommands    []string `yaml:"setup_commands,omitempty"`
	TeardownCommands []string `yaml:"teardown_commands,omitempty"`
	Tests            []Step   `yaml:"tests"`
}

// Step is one test action plus the expectations its reply must satisfy.
// Exactly one of Command and Callback is set: Command is sent as a text
// message, Callback presses the named button of the most recently observed
// inline keyboard.
type Step struct {
	Name       string        `yaml:"name"`
	Command    string        `yaml:"command,omitempty"`
	Callback   string        `yaml:"callback,omitempty"`
	Expected   []Expectation `yaml:"expected,omitempty"`
	Timeout    int           `yaml:"timeout,omitempty"` // seconds; 0 means the global default
	Retries    int           `yaml:"retries,omitempty"`
	Skip       bool          `yaml:"skip,omitempty"`
	SkipReason string        `yaml:"skip_reason,omitempty"`
}

// TimeoutOr returns the step's timeout, falling back to def when unset.
func (s Step) TimeoutOr(def time.Duration) time.Duration {
	if s.Timeout > 0 {
		return time.Duration(s.Timeout) * time.Second
	}
	return def
}

// Action returns the step's outgoing action for logging and reports.
func (s Step) Action() string {
	if s.Command != "" {
		return s.Command
	}
	return "callback:" + s.Callback
}

// loadScenario parses a single YAML scenario file.
func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Msg: err.Error()}
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &ParseError{File: path, Msg: err.Error()}
	}

	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if field, msg := sc.validate(); msg != "" {
		return nil, &ParseError{File: path, Field: field, Msg: msg}
	}

	return &sc, nil
}

// validate checks the loaded structure and returns the offending field and a
// message, or empty strings when the scenario is well-formed.
func (sc *Scenario) validate() (string, string) {
	if len(sc.Tests) == 0 {
		return "tests", "scenario has no tests"
	}
	for i, step := range sc.Tests {
		field := fmt.Sprintf("tests[%d]", i)
		if step.Name == "" {
			return field + ".name", "step name is required"
		}
		if step.Command == "" && step.Callback == "" {
			return field, "step needs either command or callback"
		}
		if step.Command != "" && step.Callback != "" {
			return field, "command and callback are mutually exclusive"
		}
		if step.Timeout < 0 {
			return field + ".timeout", "timeout must not be negative"
		}
		if step.Retries < 0 {
			return field + ".retries", "retries must not be negative"
		}
		for j, exp := range step.Expected {
			if err := exp.validate(); err != nil {
				return fmt.Sprintf("%s.expected[%d]", field, j), err.Error()
			}
		}
	}
	return "", ""
}

// validateScenarioPath ensures the filename is a YAML file inside the
// scenarios directory, guarding against path traversal.
func validateScenarioPath(dir, filename string) (string, error) {
	ext := filepath.Ext(filename)
	if ext != ".yaml" && ext != ".yml" {
		return "", fmt.Errorf("invalid scenario file extension: %s", filename)
	}
	if filepath.IsAbs(filename) {
		return "", fmt.Errorf("scenario file %s must be relative to the scenarios directory", filename)
	}

	fullPath := filepath.Join(dir, filename)
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(absPath, absDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("scenario file %s is outside the scenarios directory", filename)
	}
	return fullPath, nil
}

// loadAllScenarios loads every *.yaml / *.yml file in the directory, in
// lexical order.
func loadAllScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios directory: %w", err)
	}

	var scenarios []*Scenario
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path, err := validateScenarioPath(dir, entry.Name())
		if err != nil {
			return nil, err
		}
		sc, err := loadScenario(path)
		if err != nil {
			return nil, err
		}
		InfoLogger.Printf("Loaded scenario: %s (%d tests)", sc.Name, len(sc.Tests))
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}
