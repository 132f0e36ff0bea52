package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// setupTimeout bounds how long setup and teardown commands wait for a reply.
const setupTimeout = 5 * time.Second

// Runner executes scenarios against a live target bot and produces a Report.
//
// Correlation is ordering-based: the first update from the target peer that
// arrives after a step's action is authoritative for that step. There is no
// message-id echoing on the bot side, so ordering, peer identity and the
// deadline are the only correlation signals. Before every send the runner
// drains updates already queued, which keeps replies that missed an earlier
// step's deadline from satisfying a later step.
//
// Steps run strictly sequentially; one outstanding action at a time. Running
// independent scenarios concurrently requires separate Runner and BotClient
// instances.
type Runner struct {
	client          BotClient
	clock           Clock
	pacer           *rate.Limiter
	defaultTimeout  time.Duration
	stopOnFailure   bool
	continueOnError bool

	// most recent reply carrying an inline keyboard; callback steps
	// reference its buttons
	lastKeyboard *Inbound
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithStopOnFailure stops a scenario at its first failed or timed-out step.
func WithStopOnFailure() RunnerOption {
	return func(r *Runner) { r.stopOnFailure = true }
}

// WithContinueOnError records client errors as step results instead of
// aborting the scenario.
func WithContinueOnError() RunnerOption {
	return func(r *Runner) { r.continueOnError = true }
}

// WithClock substitutes the time source, for tests.
func WithClock(c Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithPacer substitutes the outbound send pacer.
func WithPacer(l *rate.Limiter) RunnerOption {
	return func(r *Runner) { r.pacer = l }
}

// NewRunner creates a Runner with the given global default step timeout.
func NewRunner(client BotClient, defaultTimeout time.Duration, opts ...RunnerOption) *Runner {
	r := &Runner{
		client:         client,
		clock:          RealClock{},
		defaultTimeout: defaultTimeout,
		// Two actions per second keeps the tester comfortably under
		// Telegram's flood thresholds without dragging short scenarios out.
		pacer: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunAll executes every scenario in order and returns the finalized report.
// A fatal client error stops the run; results recorded so far are preserved
// in the returned report.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario) (*Report, error) {
	report := NewReport(r.clock)
	for _, sc := range scenarios {
		sr, err := r.RunScenario(ctx, sc)
		report.Add(sr)
		if err != nil {
			report.Finalize(r.clock)
			return report, err
		}
	}
	report.Finalize(r.clock)
	return report, nil
}

// RunScenario executes one scenario. The returned ScenarioReport always
// holds one StepResult per attempted step, in step order; the error is
// non-nil only for fatal conditions (client errors without
// continue-on-error, or context cancellation).
func (r *Runner) RunScenario(ctx context.Context, sc *Scenario) (*ScenarioReport, error) {
	sr := &ScenarioReport{Name: sc.Name}
	start := r.clock.Now()
	InfoLogger.Printf("Starting scenario: %s", sc.Name)

	for _, cmd := range sc.SetupCommands {
		if err := r.runBareCommand(ctx, cmd); err != nil {
			sr.Elapsed = r.clock.Now().Sub(start)
			sr.ElapsedMS = sr.Elapsed.Milliseconds()
			return sr, fmt.Errorf("setup command %q: %w", cmd, err)
		}
	}

	var fatal error
	for _, step := range sc.Tests {
		res := r.runStep(ctx, step)
		sr.add(res)

		if res.Outcome == OutcomeErrored && !r.continueOnError {
			fatal = fmt.Errorf("scenario %q aborted at step %q: %s", sc.Name, step.Name, res.Detail)
			break
		}
		if r.stopOnFailure && (res.Outcome == OutcomeFailed || res.Outcome == OutcomeTimedOut) {
			InfoLogger.Printf("Stopping scenario %q at first failure", sc.Name)
			break
		}
	}

	// Teardown is best effort and skipped when the connection is suspect.
	if fatal == nil {
		for _, cmd := range sc.TeardownCommands {
			if err := r.runBareCommand(ctx, cmd); err != nil {
				ErrorLogger.Printf("Teardown command %q failed: %v", cmd, err)
				break
			}
		}
	}

	sr.Elapsed = r.clock.Now().Sub(start)
	sr.ElapsedMS = sr.Elapsed.Milliseconds()

	status := "PASSED"
	if !sr.Ok() {
		status = "FAILED"
	}
	InfoLogger.Printf("Scenario %q %s: %d/%d passed, %d skipped",
		sc.Name, status, sr.Passed, len(sr.Results), sr.Skipped)

	return sr, fatal
}

// runBareCommand sends a setup/teardown command and waits briefly for a
// reply, which is discarded. Only transport failures are reported.
func (r *Runner) runBareCommand(ctx context.Context, cmd string) error {
	InfoLogger.Printf("Running command: %s", cmd)
	r.drainStale()
	if err := r.pacer.Wait(ctx); err != nil {
		return err
	}
	if err := r.client.SendText(ctx, cmd); err != nil {
		return err
	}
	if in, ok, err := awaitInbound(ctx, r.client, r.clock, setupTimeout); err != nil {
		return err
	} else if ok {
		r.observe(in)
	}
	return nil
}

// runStep executes one step, re-running the whole send/wait cycle up to the
// step's retry budget on failure or timeout. Client errors are never
// retried.
func (r *Runner) runStep(ctx context.Context, step Step) StepResult {
	if step.Skip {
		return StepResult{
			Step:    step.Name,
			Action:  step.Action(),
			Outcome: OutcomeSkipped,
			Detail:  step.SkipReason,
		}
	}

	timeout := step.TimeoutOr(r.defaultTimeout)

	var res StepResult
	for attempt := 1; ; attempt++ {
		res = r.attemptStep(ctx, step, timeout)
		res.Attempts = attempt
		if res.Outcome == OutcomePassed || res.Outcome == OutcomeErrored || attempt > step.Retries {
			break
		}
		InfoLogger.Printf("Retrying step %q (attempt %d of %d)", step.Name, attempt+1, step.Retries+1)
	}
	return res
}

// attemptStep drives a single Pending -> Sent -> (Matched|TimedOut|Error)
// cycle for one step.
func (r *Runner) attemptStep(ctx context.Context, step Step, timeout time.Duration) StepResult {
	start := r.clock.Now()
	res := StepResult{Step: step.Name, Action: step.Action()}

	finish := func(outcome Outcome, detail string) StepResult {
		res.Outcome = outcome
		res.Detail = detail
		res.Elapsed = r.clock.Now().Sub(start)
		return res
	}

	// Anything already queued arrived before this action and can no longer
	// count for any step.
	r.drainStale()

	if err := r.pacer.Wait(ctx); err != nil {
		return finish(OutcomeErrored, err.Error())
	}

	if step.Command != "" {
		if err := r.client.SendText(ctx, step.Command); err != nil {
			return finish(OutcomeErrored, err.Error())
		}
	} else {
		kb := r.lastKeyboard
		if kb == nil {
			return finish(OutcomeFailed, "no previous message with inline buttons to press")
		}
		btn, ok := kb.FindButton(step.Callback)
		if !ok {
			return finish(OutcomeFailed, fmt.Sprintf("button %q not found on the last keyboard", step.Callback))
		}
		if err := r.client.PressButton(ctx, kb.MessageID, btn); err != nil {
			return finish(OutcomeErrored, err.Error())
		}
	}

	// The first attributable update is authoritative. When the bot answers
	// one action with several messages the follow-ups stay queued; the next
	// step's drain discards them, but their keyboards remain visible to
	// callback steps via observe.
	in, ok, err := awaitInbound(ctx, r.client, r.clock, timeout)
	if err != nil {
		return finish(OutcomeErrored, err.Error())
	}
	if !ok {
		return finish(OutcomeTimedOut, fmt.Sprintf("no response within %s", timeout))
	}
	r.observe(in)
	res.Response = preview(in.Text, 200)

	for _, exp := range step.Expected {
		if msg := exp.Evaluate(in); msg != "" {
			return finish(OutcomeFailed, fmt.Sprintf("%s: %s", exp.Describe(), msg))
		}
	}
	return finish(OutcomePassed, "")
}

// observe records side information from a reply, currently the most recent
// inline keyboard.
func (r *Runner) observe(in Inbound) {
	if in.HasButtons() {
		kb := in
		r.lastKeyboard = &kb
	}
}

// drainStale empties updates already queued on the stream. Keyboards seen
// while draining are still observed, so a menu message that trailed the
// counted reply remains pressable.
func (r *Runner) drainStale() {
	for _, in := range drainInbound(r.client) {
		r.observe(in)
	}
}

// drainInbound removes and returns everything currently queued on the
// client's update stream without blocking.
func drainInbound(client BotClient) []Inbound {
	var drained []Inbound
	for {
		select {
		case in, open := <-client.Updates():
			if !open {
				return drained
			}
			drained = append(drained, in)
		default:
			return drained
		}
	}
}

// awaitInbound waits for the next update from the target peer, up to the
// timeout. Expiry releases only this wait; the subscription and the
// connection stay open for subsequent steps. Updates from other peers never
// satisfy the wait.
func awaitInbound(ctx context.Context, client BotClient, clock Clock, timeout time.Duration) (Inbound, bool, error) {
	deadline := clock.After(timeout)
	for {
		select {
		case in, open := <-client.Updates():
			if !open {
				return Inbound{}, false, &NetworkError{Op: "receive", Err: errors.New("update stream closed")}
			}
			if in.PeerID != client.TargetID() {
				continue
			}
			return in, true, nil
		case <-deadline:
			return Inbound{}, false, nil
		case <-ctx.Done():
			return Inbound{}, false, ctx.Err()
		}
	}
}
