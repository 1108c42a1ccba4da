package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/lhmcgann/estim-go/cmd/estim-loc/interactive"
)

// RunShell runs the interactive shell. The registry state is written on exit
// when a state file is configured.
func RunShell(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	var opts RegistryOptions
	opts.register(fs)
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	reg, err := opts.Open(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printShellUsage(stderr)
		return exitCommandError
	}
	defer reg.Close()

	sh, err := interactive.New(reg.Manager, reg.DefaultKey, reg.Store)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	sh.Run()

	if err := reg.SaveState(); err != nil {
		fmt.Fprintf(stderr, "Error: save state: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func printShellUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: estim-loc shell (-model <file> | -session <file>) [options]

Options:
  --key       Model to start in
  --state     Registry state file to restore and write on exit
  --log       Write events to a CBOR log file
  --trace     Print events to stderr
  --verbose   Enable debug logging`)
}
