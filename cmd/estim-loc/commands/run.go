package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lhmcgann/estim-go/internal/testharness/engine"
	"github.com/lhmcgann/estim-go/internal/testharness/loader"
	"github.com/lhmcgann/estim-go/internal/testharness/reporter"
	"github.com/lhmcgann/estim-go/pkg/log"
	"github.com/lhmcgann/estim-go/pkg/manager"
)

// RunOptions configures the run command.
type RunOptions struct {
	Paths   []string
	Pattern string
	Timeout time.Duration
	JSON    bool
	JUnit   bool
	Verbose bool
	Stop    bool
	LogFile string
}

// RunScenarios runs the run command: it loads YAML scenarios and executes
// each one against a fresh registry.
func RunScenarios(args []string, stdout, stderr io.Writer) int {
	opts, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(opts.Paths) == 0 {
		fmt.Fprintln(stderr, "Error: no scenario files or directories specified")
		printRunUsage(stderr)
		return exitCommandError
	}
	if opts.JSON && opts.JUnit {
		fmt.Fprintln(stderr, "Error: -json and -junit are mutually exclusive")
		return exitCommandError
	}

	cases, err := loader.LoadPaths(opts.Paths)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	cases, err = loader.FilterTestCases(cases, opts.Pattern)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(cases) == 0 {
		fmt.Fprintln(stderr, "Error: no scenarios matched")
		return exitCommandError
	}

	config := engine.DefaultConfig()
	config.StopOnFirstFailure = opts.Stop
	if opts.Timeout > 0 {
		config.DefaultTimeout = opts.Timeout
	}

	if opts.LogFile != "" {
		fl, err := log.NewFileLogger(opts.LogFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: open event log: %v\n", err)
			return exitCommandError
		}
		defer fl.Close()
		config.ManagerOptions = append(config.ManagerOptions, manager.WithLogger(fl))
	}

	var rep reporter.Reporter
	switch {
	case opts.JSON:
		rep = reporter.NewJSONReporter(stdout, true)
	case opts.JUnit:
		rep = reporter.NewJUnitReporter(stdout)
	default:
		rep = reporter.NewTextReporter(stdout, opts.Verbose)
	}

	e := engine.NewWithConfig(config)
	result := e.RunSuite(context.Background(), suiteName(opts.Paths), cases)
	rep.ReportSuite(result)

	if result.FailCount > 0 {
		return exitValidation
	}
	return exitSuccess
}

func suiteName(paths []string) string {
	return "estim scenarios: " + strings.Join(paths, ", ")
}

func parseRunArgs(args []string) (RunOptions, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	opts := RunOptions{}

	fs.StringVar(&opts.Pattern, "pattern", "", "Only run scenarios whose ID or a tag matches this regexp")
	fs.DurationVar(&opts.Timeout, "timeout", 0, "Timeout per scenario (default 10s)")
	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	fs.BoolVar(&opts.JUnit, "junit", false, "Output results as JUnit XML")
	fs.BoolVar(&opts.Verbose, "verbose", false, "List every step and expectation")
	fs.BoolVar(&opts.Stop, "stop", false, "Stop after the first failed scenario")
	fs.StringVar(&opts.LogFile, "log", "", "Write registry events to a CBOR log file (.elog)")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Paths = fs.Args()
	return opts, nil
}

func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: estim-loc run [options] <file-or-dir...>

Runs YAML scenarios. Each scenario registers its models in a fresh registry
and runs its steps in order. Exits with status 2 when a scenario fails.

Options:
  --pattern   Only run scenarios whose ID or a tag matches this regexp
  --timeout   Timeout per scenario [default: 10s]
  --json      Output results as JSON
  --junit     Output results as JUnit XML
  --verbose   List every step and expectation
  --stop      Stop after the first failed scenario
  --log       Write registry events to a CBOR log file

Examples:
  estim-loc run internal/testharness/testdata/cases
  estim-loc run -pattern localize -verbose scenarios/
  estim-loc run -junit scenarios/ > report.xml`)
}
