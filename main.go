package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
)

func main() {
	os.Exit(run())
}

func run() int {
	scenarioFile := flag.String("scenario", "", "single scenario file to run")
	scenariosDir := flag.String("scenarios-dir", "scenarios", "directory containing scenario files")
	output := flag.String("output", "", "write the report to this file")
	format := flag.String("format", "json", "report file format: json or text")
	botOverride := flag.String("bot", "", "override the target bot username")
	interactive := flag.Bool("interactive", false, "run in interactive single-step mode")
	login := flag.Bool("login", false, "authorize the tester account and exit")
	stopOnFailure := flag.Bool("stop-on-failure", false, "stop a scenario at its first failed step")
	continueOnError := flag.Bool("continue-on-error", false, "keep running after client errors")
	verbose := flag.Bool("verbose", false, "log every inbound update from the target bot")
	flag.Parse()

	// Initialize custom loggers
	initLoggers()
	InfoLogger.Println("Starting Telegram bot tester")

	cfg, err := loadConfig()
	if err != nil {
		ErrorLogger.Printf("Configuration error: %v", err)
		return 1
	}
	if *botOverride != "" {
		cfg.TargetBot = strings.TrimPrefix(*botOverride, "@")
	}
	cfg.Verbose = *verbose

	// Scenarios are loaded before connecting so a parse error never costs a
	// login round trip.
	var scenarios []*Scenario
	if !*login && !*interactive {
		if *scenarioFile != "" {
			sc, err := loadScenario(*scenarioFile)
			if err != nil {
				ErrorLogger.Printf("Error loading scenario: %v", err)
				return 1
			}
			scenarios = []*Scenario{sc}
		} else {
			scenarios, err = loadAllScenarios(*scenariosDir)
			if err != nil {
				ErrorLogger.Printf("Error loading scenarios: %v", err)
				return 1
			}
		}
		if len(scenarios) == 0 {
			ErrorLogger.Println("No scenarios found to run")
			return 1
		}
		InfoLogger.Printf("Loaded %d scenario(s)", len(scenarios))
	}

	// Set up context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client, err := NewGogramClient(cfg)
	if err != nil {
		ErrorLogger.Printf("Error creating Telegram client: %v", err)
		return 1
	}
	if err := client.Connect(ctx); err != nil {
		ErrorLogger.Printf("Error connecting to Telegram: %v", err)
		return 1
	}
	defer client.Close()

	if *login {
		who, err := client.Whoami()
		if err != nil {
			ErrorLogger.Printf("Error fetching account info: %v", err)
			return 1
		}
		InfoLogger.Printf("Authorized as %s", who)
		InfoLogger.Printf("Session saved to %s", cfg.SessionFile)
		return 0
	}

	if *interactive {
		if err := runInteractive(ctx, client, RealClock{}, cfg.DefaultTimeout); err != nil {
			ErrorLogger.Printf("Interactive mode error: %v", err)
			return 1
		}
		return 0
	}

	var opts []RunnerOption
	if *stopOnFailure {
		opts = append(opts, WithStopOnFailure())
	}
	if *continueOnError {
		opts = append(opts, WithContinueOnError())
	}

	runner := NewRunner(client, cfg.DefaultTimeout, opts...)
	report, runErr := runner.RunAll(ctx, scenarios)

	if err := report.WriteText(os.Stdout); err != nil {
		ErrorLogger.Printf("Error writing report: %v", err)
	}
	if *output != "" {
		if err := saveReport(report, *output, *format); err != nil {
			ErrorLogger.Printf("Error saving report: %v", err)
			return 1
		}
		InfoLogger.Printf("Report saved to %s", *output)
	}

	if runErr != nil {
		ErrorLogger.Printf("Run aborted: %v", runErr)
		return 1
	}
	if !report.Ok() {
		return 1
	}
	return 0
}

// saveReport writes the report to a file in the requested format.
func saveReport(report *Report, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "json":
		return report.WriteJSON(f)
	case "text":
		return report.WriteText(f)
	}
	return fmt.Errorf("unknown report format %q", format)
}
