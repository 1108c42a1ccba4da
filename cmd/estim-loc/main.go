// estim-loc is a CLI tool for body models and the locations and areas saved
// on them.
package main

import (
	"fmt"
	"os"

	"github.com/lhmcgann/estim-go/cmd/estim-loc/commands"
	"github.com/lhmcgann/estim-go/pkg/version"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "validate":
		exitCode = commands.RunValidate(args, os.Stdout, os.Stderr)
	case "tree":
		exitCode = commands.RunTree(args, os.Stdout, os.Stderr)
	case "save":
		exitCode = commands.RunSave(args, os.Stdout, os.Stderr)
	case "localize":
		exitCode = commands.RunLocalize(args, os.Stdout, os.Stderr)
	case "shell":
		exitCode = commands.RunShell(args, os.Stdout, os.Stderr)
	case "log":
		exitCode = commands.RunLog(args, os.Stdout, os.Stderr)
	case "run":
		exitCode = commands.RunScenarios(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Printf("estim-loc version %s (model format %s)\n", version.Release, version.Current)
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`estim-loc - body-model localization tool

Usage:
  estim-loc <command> [options] [args...]

Commands:
  validate   Validate model description files
  tree       Show the region tree of one or more models
  save       Save locations or areas into a registry state file
  localize   Find the saved areas containing an address
  shell      Interactive registry shell
  log        View, summarize or export an event log
  run        Run YAML registry scenarios

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

Examples:
  estim-loc validate models/hand.yaml
  estim-loc tree -model builtin:hand
  estim-loc localize -session models/session.yaml "hand, index finger | palmar"
  estim-loc shell -session models/session.yaml -log events.elog
  estim-loc run -verbose scenarios/

For command-specific help, run:
  estim-loc <command> --help`)
}
