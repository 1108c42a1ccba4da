package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/lhmcgann/estim-go/pkg/inspect"
)

// TreeOptions configures the tree command.
type TreeOptions struct {
	Registry    RegistryOptions
	Format      string // text, json, yaml
	NoModifiers bool
	NoIDs       bool
	Keys        []string
}

// RegionOutput is the serialized form of a region subtree.
type RegionOutput struct {
	Name       string              `json:"name" yaml:"name"`
	Options    []string            `json:"options,omitempty" yaml:"options,omitempty"`
	Modifiers  map[string][]string `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Locations  []int               `json:"locations,omitempty" yaml:"locations,omitempty"`
	Areas      []int               `json:"areas,omitempty" yaml:"areas,omitempty"`
	Subregions []RegionOutput      `json:"subregions,omitempty" yaml:"subregions,omitempty"`
}

// TreeOutput is the serialized form of one model.
type TreeOutput struct {
	Key  string       `json:"key" yaml:"key"`
	Name string       `json:"name" yaml:"name"`
	Root RegionOutput `json:"root" yaml:"root"`
}

// RunTree runs the tree command.
func RunTree(args []string, stdout, stderr io.Writer) int {
	opts, err := parseTreeArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	reg, err := opts.Registry.Open(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		printTreeUsage(stderr)
		return exitCommandError
	}
	defer reg.Close()

	keys := opts.Keys
	if len(keys) == 0 {
		keys = reg.Manager.ModelKeys()
	}

	insp := inspect.NewInspector(reg.Manager)
	var trees []*inspect.ModelTree
	for _, key := range keys {
		tree, err := insp.InspectModel(key)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		trees = append(trees, tree)
	}

	switch opts.Format {
	case "json":
		data, _ := json.MarshalIndent(treeOutputs(trees), "", "  ")
		fmt.Fprintln(stdout, string(data))
	case "yaml":
		data, _ := yaml.Marshal(treeOutputs(trees))
		fmt.Fprint(stdout, string(data))
	default:
		f := inspect.NewFormatter()
		f.ShowModifiers = !opts.NoModifiers
		f.ShowIDs = !opts.NoIDs
		for _, tree := range trees {
			fmt.Fprint(stdout, f.FormatModelTree(tree))
		}
	}
	return exitSuccess
}

func treeOutputs(trees []*inspect.ModelTree) []TreeOutput {
	out := make([]TreeOutput, 0, len(trees))
	for _, t := range trees {
		out = append(out, TreeOutput{Key: t.Key, Name: t.Name, Root: regionOutput(t.Root)})
	}
	return out
}

func regionOutput(r inspect.RegionInfo) RegionOutput {
	out := RegionOutput{
		Name:      r.Name,
		Options:   r.Options,
		Locations: r.Locations,
		Areas:     r.Areas,
	}
	if len(r.Axes) > 0 {
		out.Modifiers = make(map[string][]string, len(r.Axes))
		for _, a := range r.Axes {
			out.Modifiers[a.Name] = a.Values
		}
	}
	for _, c := range r.Subregions {
		out.Subregions = append(out.Subregions, regionOutput(c))
	}
	return out
}

func parseTreeArgs(args []string) (TreeOptions, error) {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	opts := TreeOptions{}

	opts.Registry.register(fs)
	fs.StringVar(&opts.Format, "format", "text", "Output format (text, json, yaml)")
	fs.StringVar(&opts.Format, "f", "text", "Output format (shorthand)")
	fs.BoolVar(&opts.NoModifiers, "no-modifiers", false, "Hide modifier axes")
	fs.BoolVar(&opts.NoIDs, "no-ids", false, "Hide saved IDs")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.Keys = fs.Args()
	return opts, nil
}

func printTreeUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: estim-loc tree (-model <file> | -session <file>) [options] [keys...]

Options:
  -f, --format     Output format (text, json, yaml) [default: text]
  --no-modifiers   Hide modifier axes
  --no-ids         Hide saved IDs

Examples:
  estim-loc tree -model hand.yaml
  estim-loc tree -session session.yaml -format yaml left`)
}
