package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/inspect"
)

// LocalizeOptions configures the localize command.
type LocalizeOptions struct {
	Registry  RegistryOptions
	Format    string // text, json, yaml
	Areas     stringList
	Locations stringList
	Queries   []string
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string     { return fmt.Sprint(*s) }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

// LocalizeOutput is the serialized result of a localize run.
type LocalizeOutput struct {
	Model     string        `json:"model" yaml:"model"`
	Queries   []string      `json:"queries" yaml:"queries"`
	Fully     []MatchOutput `json:"fully,omitempty" yaml:"fully,omitempty"`
	Partially []MatchOutput `json:"partially,omitempty" yaml:"partially,omitempty"`
}

// MatchOutput is one containing area.
type MatchOutput struct {
	ID      int    `json:"id" yaml:"id"`
	Address string `json:"address" yaml:"address"`
}

// RunLocalize runs the localize command.
func RunLocalize(args []string, stdout, stderr io.Writer) int {
	opts, err := parseLocalizeArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(opts.Queries) == 0 && len(opts.Areas) == 0 && len(opts.Locations) == 0 {
		fmt.Fprintln(stderr, "Error: no addresses specified")
		printLocalizeUsage(stderr)
		return exitCommandError
	}

	reg, err := opts.Registry.Open(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer reg.Close()

	m := reg.Manager
	for _, text := range opts.Areas {
		if _, err := saveTarget(m, reg.DefaultKey, address.KindArea, text); err != nil {
			fmt.Fprintf(stderr, "Error: save area %q: %v\n", text, err)
			return exitCommandError
		}
	}
	for _, text := range opts.Locations {
		if _, err := saveTarget(m, reg.DefaultKey, address.KindLocation, text); err != nil {
			fmt.Fprintf(stderr, "Error: save location %q: %v\n", text, err)
			return exitCommandError
		}
	}

	output := LocalizeOutput{Model: reg.DefaultKey, Queries: []string{}}
	if len(opts.Queries) > 0 {
		specs := make([]address.Spec, 0, len(opts.Queries))
		for _, q := range opts.Queries {
			spec, err := address.ParseLocation(q)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return exitCommandError
			}
			specs = append(specs, spec)
			output.Queries = append(output.Queries, spec.String())
		}

		matches, err := inspect.NewInspector(m).Localize(reg.DefaultKey, specs...)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		for _, match := range matches {
			mo := MatchOutput{ID: match.GlobalID, Address: match.Address}
			if match.Fully {
				output.Fully = append(output.Fully, mo)
			} else {
				output.Partially = append(output.Partially, mo)
			}
		}
	}

	if err := reg.SaveState(); err != nil {
		fmt.Fprintf(stderr, "Error: save state: %v\n", err)
		return exitCommandError
	}

	switch opts.Format {
	case "json":
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(stdout, string(data))
	case "yaml":
		data, _ := yaml.Marshal(output)
		fmt.Fprint(stdout, string(data))
	default:
		printLocalizeText(stdout, output)
	}
	return exitSuccess
}

func printLocalizeText(w io.Writer, out LocalizeOutput) {
	if len(out.Queries) == 0 {
		return
	}
	fmt.Fprintf(w, "Model: %s\n", out.Model)
	for _, q := range out.Queries {
		fmt.Fprintf(w, "  ? %s\n", q)
	}
	if len(out.Fully) == 0 && len(out.Partially) == 0 {
		fmt.Fprintln(w, "No containing areas")
		return
	}
	for _, m := range out.Fully {
		fmt.Fprintf(w, "full    [%d] %s\n", m.ID, m.Address)
	}
	for _, m := range out.Partially {
		fmt.Fprintf(w, "partial [%d] %s\n", m.ID, m.Address)
	}
}

func parseLocalizeArgs(args []string) (LocalizeOptions, error) {
	fs := flag.NewFlagSet("localize", flag.ContinueOnError)
	opts := LocalizeOptions{}

	opts.Registry.register(fs)
	fs.StringVar(&opts.Format, "format", "text", "Output format (text, json, yaml)")
	fs.StringVar(&opts.Format, "f", "text", "Output format (shorthand)")
	fs.Var(&opts.Areas, "area", "Save an area before querying (repeatable)")
	fs.Var(&opts.Locations, "location", "Save a location before querying (repeatable)")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Queries = fs.Args()
	return opts, nil
}

func printLocalizeUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: estim-loc localize (-model <file> | -session <file>) [options] <address...>

Each address is one quoted argument. Results of several addresses are merged.
Targets for -area and -location may name a model: "right: hand | palmar".

Options:
  -f, --format   Output format (text, json, yaml) [default: text]
  --area         Save an area before querying (repeatable)
  --location     Save a location before querying (repeatable)
  --state        Registry state file to restore and update
  --log          Write events to a CBOR log file

Examples:
  estim-loc localize -model hand.yaml -area "hand, finger | palmar" "hand, finger, phalanx | palmar"
  estim-loc localize -session session.yaml -key left "hand, palm" "hand, thumb finger"`)
}
