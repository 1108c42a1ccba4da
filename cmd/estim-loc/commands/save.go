package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/inspect"
	"github.com/lhmcgann/estim-go/pkg/manager"
)

// SaveOptions configures the save command.
type SaveOptions struct {
	Registry RegistryOptions
	Kind     string
	Targets  []string
}

// RunSave runs the save command.
func RunSave(args []string, stdout, stderr io.Writer) int {
	opts, err := parseSaveArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	kind, err := address.ParseKind(opts.Kind)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(opts.Targets) == 0 {
		fmt.Fprintln(stderr, "Error: no addresses specified")
		printSaveUsage(stderr)
		return exitCommandError
	}

	reg, err := opts.Registry.Open(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer reg.Close()

	if reg.Store == nil {
		fmt.Fprintln(stderr, "Warning: no state file configured, saves are not persisted")
	}

	for _, text := range opts.Targets {
		id, err := saveTarget(reg.Manager, reg.DefaultKey, kind, text)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %q: %v\n", text, err)
			return exitValidation
		}
		fmt.Fprintf(stdout, "%s %d: %s\n", kind, id, text)
	}

	if err := reg.SaveState(); err != nil {
		fmt.Fprintf(stderr, "Error: save state: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

// saveTarget saves a "[key:] address" target, defaulting to defaultKey.
func saveTarget(m *manager.Manager, defaultKey string, kind address.Kind, text string) (int, error) {
	target, err := inspect.ParseTarget(text)
	if err != nil {
		return 0, err
	}
	return m.SaveText(target.Key(defaultKey), kind, target.Address)
}

func parseSaveArgs(args []string) (SaveOptions, error) {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	opts := SaveOptions{}

	opts.Registry.register(fs)
	fs.StringVar(&opts.Kind, "kind", "area", "Address kind (location, area)")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Targets = fs.Args()
	return opts, nil
}

func printSaveUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: estim-loc save (-model <file> | -session <file>) [options] <target...>

A target is an address, optionally prefixed by a model key: "left: hand | palmar".

Options:
  --kind    Address kind (location, area) [default: area]
  --state   Registry state file to restore and update

Examples:
  estim-loc save -session session.yaml -kind area "left: hand, finger | palmar"
  estim-loc save -model hand.yaml -state hand.json -kind location "hand, palm"`)
}
