package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/lhmcgann/estim-go/pkg/body"
	"github.com/lhmcgann/estim-go/pkg/loader"
)

// ValidateOptions configures the validate command.
type ValidateOptions struct {
	JSON    bool
	Builtin bool
	Files   []string
}

// ValidateResult is the outcome for one model file.
type ValidateResult struct {
	File    string `json:"file"`
	Valid   bool   `json:"valid"`
	Name    string `json:"name,omitempty"`
	Regions int    `json:"regions,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RunValidate runs the validate command.
func RunValidate(args []string, stdout, stderr io.Writer) int {
	opts, err := parseValidateArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.Builtin {
		names, err := loader.BuiltinNames()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		for _, name := range names {
			opts.Files = append(opts.Files, loader.BuiltinPrefix+name)
		}
	}
	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		printValidateUsage(stderr)
		return exitCommandError
	}

	results := make([]ValidateResult, 0, len(opts.Files))
	allValid := true
	for _, file := range opts.Files {
		r := validateFile(file)
		if !r.Valid {
			allValid = false
		}
		results = append(results, r)
	}

	if opts.JSON {
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Fprintln(stdout, string(data))
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(stdout, "OK    %s (%s, %d regions)\n", r.File, r.Name, r.Regions)
			} else {
				fmt.Fprintf(stdout, "FAIL  %s: %s\n", r.File, r.Error)
			}
		}
	}

	if !allValid {
		return exitValidation
	}
	return exitSuccess
}

func validateFile(file string) ValidateResult {
	tmpl, err := loader.Open(file)
	if err != nil {
		return ValidateResult{File: file, Error: err.Error()}
	}

	regions := 0
	tmpl.Root.Walk(func(*body.Region) bool {
		regions++
		return true
	})
	return ValidateResult{File: file, Valid: true, Name: tmpl.Name, Regions: regions}
}

func parseValidateArgs(args []string) (ValidateOptions, error) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	opts := ValidateOptions{}

	fs.BoolVar(&opts.JSON, "json", false, "Output results as JSON")
	fs.BoolVar(&opts.Builtin, "builtin", false, "Also validate the embedded models")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Files = fs.Args()
	return opts, nil
}

func printValidateUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: estim-loc validate [options] <model files...>

Model files may also be given as builtin:<name>.

Options:
  --json       Output results as JSON
  --builtin    Also validate the embedded models

Examples:
  estim-loc validate hand.yaml
  estim-loc validate --json models/*.yaml
  estim-loc validate --builtin`)
}
