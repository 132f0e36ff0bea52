package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Outcome classifies how a single step ended.
type Outcome string

const (
	OutcomePassed   Outcome = "passed"
	OutcomeFailed   Outcome = "failed"
	OutcomeTimedOut Outcome = "timed_out"
	OutcomeErrored  Outcome = "errored"
	OutcomeSkipped  Outcome = "skipped"
)

// Label returns the outcome formatted for the text report.
func (o Outcome) Label() string {
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(string(o), "_", " "))
}

// tag returns the short bracketed form used in per-step log lines.
func (o Outcome) tag() string {
	switch o {
	case OutcomePassed:
		return "PASS"
	case OutcomeFailed:
		return "FAIL"
	case OutcomeTimedOut:
		return "TIME"
	case OutcomeErrored:
		return "ERR "
	case OutcomeSkipped:
		return "SKIP"
	}
	return "????"
}

// StepResult records the outcome of one executed step. Exactly one is
// produced per attempted step, in step order.
type StepResult struct {
	Step      string        `json:"step"`
	Action    string        `json:"action"`
	Outcome   Outcome       `json:"outcome"`
	Detail    string        `json:"detail,omitempty"`
	Response  string        `json:"response,omitempty"`
	Attempts  int           `json:"attempts"`
	Elapsed   time.Duration `json:"-"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

// ScenarioReport aggregates the step results of one scenario run.
type ScenarioReport struct {
	Name      string        `json:"name"`
	Results   []StepResult  `json:"results"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	TimedOut  int           `json:"timed_out"`
	Errored   int           `json:"errored"`
	Skipped   int           `json:"skipped"`
	Elapsed   time.Duration `json:"-"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

// add appends a step result, updates the counters and logs a progress line.
func (sr *ScenarioReport) add(res StepResult) {
	res.ElapsedMS = res.Elapsed.Milliseconds()
	sr.Results = append(sr.Results, res)

	switch res.Outcome {
	case OutcomePassed:
		sr.Passed++
	case OutcomeFailed:
		sr.Failed++
	case OutcomeTimedOut:
		sr.TimedOut++
	case OutcomeErrored:
		sr.Errored++
	case OutcomeSkipped:
		sr.Skipped++
	}

	InfoLogger.Printf("  [%s] %s (%dms)", res.Outcome.tag(), res.Step, res.ElapsedMS)
	if res.Detail != "" && res.Outcome != OutcomePassed {
		InfoLogger.Printf("         %s", res.Detail)
	}
}

// Ok reports whether every step of the scenario passed or was skipped.
func (sr *ScenarioReport) Ok() bool {
	return sr.Failed == 0 && sr.TimedOut == 0 && sr.Errored == 0
}

// FirstFailure returns the detail of the first non-passing step, if any.
func (sr *ScenarioReport) FirstFailure() string {
	for _, res := range sr.Results {
		if res.Outcome != OutcomePassed && res.Outcome != OutcomeSkipped {
			return fmt.Sprintf("%s: %s", res.Step, res.Detail)
		}
	}
	return ""
}

// Report is the result of a whole run. It is created at run start, finalized
// once at run end and never mutated afterward.
type Report struct {
	RunID     string            `json:"run_id"`
	StartedAt time.Time         `json:"started_at"`
	Scenarios []*ScenarioReport `json:"scenarios"`

	TotalSteps int `json:"total_steps"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	TimedOut   int `json:"timed_out"`
	Errored    int `json:"errored"`
	Skipped    int `json:"skipped"`

	Elapsed   time.Duration `json:"-"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

// NewReport creates an empty report stamped with a fresh run id.
func NewReport(clock Clock) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: clock.Now(),
	}
}

// Add appends a finished scenario's results.
func (r *Report) Add(sr *ScenarioReport) {
	r.Scenarios = append(r.Scenarios, sr)
}

// Finalize computes the summary counters and the total duration.
func (r *Report) Finalize(clock Clock) {
	r.TotalSteps, r.Passed, r.Failed, r.TimedOut, r.Errored, r.Skipped = 0, 0, 0, 0, 0, 0
	for _, sr := range r.Scenarios {
		r.TotalSteps += len(sr.Results)
		r.Passed += sr.Passed
		r.Failed += sr.Failed
		r.TimedOut += sr.TimedOut
		r.Errored += sr.Errored
		r.Skipped += sr.Skipped
	}
	r.Elapsed = clock.Now().Sub(r.StartedAt)
	r.ElapsedMS = r.Elapsed.Milliseconds()
}

// Ok reports whether the whole run is green.
func (r *Report) Ok() bool {
	return r.Failed == 0 && r.TimedOut == 0 && r.Errored == 0
}

// WriteJSON renders the report as indented JSON for CI consumption.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders the human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	caser := cases.Title(language.English)
	divider := strings.Repeat("=", 60)

	lines := []string{
		divider,
		"TEST REPORT",
		fmt.Sprintf("Run %s, started %s", r.RunID, r.StartedAt.Format(time.RFC3339)),
		divider,
		"",
		fmt.Sprintf("Scenarios: %d", len(r.Scenarios)),
		fmt.Sprintf("Steps: %d total, %d passed, %d failed, %d timed out, %d errored, %d skipped",
			r.TotalSteps, r.Passed, r.Failed, r.TimedOut, r.Errored, r.Skipped),
		fmt.Sprintf("Duration: %dms", r.ElapsedMS),
		"",
	}

	for _, sr := range r.Scenarios {
		status := "FAILED"
		if sr.Ok() {
			status = "PASSED"
		}
		lines = append(lines,
			strings.Repeat("-", 60),
			fmt.Sprintf("Scenario: %s [%s]", caser.String(sr.Name), status),
		)
		for _, res := range sr.Results {
			lines = append(lines, fmt.Sprintf("  [%s] %s: %s (%dms)",
				res.Outcome.tag(), res.Step, res.Outcome.Label(), res.ElapsedMS))
			if res.Detail != "" && res.Outcome != OutcomePassed {
				lines = append(lines, "         "+res.Detail)
			}
		}
	}

	lines = append(lines, divider, "")

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// preview flattens and truncates a response text for reporting.
func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
