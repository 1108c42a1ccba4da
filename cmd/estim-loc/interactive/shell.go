// Package interactive provides the interactive shell for estim-loc.
package interactive

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"

	"github.com/lhmcgann/estim-go/pkg/address"
	"github.com/lhmcgann/estim-go/pkg/inspect"
	"github.com/lhmcgann/estim-go/pkg/manager"
	"github.com/lhmcgann/estim-go/pkg/persistence"
)

// QuerySeparator separates the targets of one localize command.
const QuerySeparator = ";"

// Shell handles interactive mode for estim-loc.
type Shell struct {
	registry  *manager.Manager
	inspector *inspect.Inspector
	formatter *inspect.Formatter
	store     *persistence.RegistryStateStore
	current   string
	out       io.Writer
	rl        *readline.Instance
}

// New creates a shell over registry that queries model key by default.
// A non-nil store is used by the snapshot command.
func New(registry *manager.Manager, key string, store *persistence.RegistryStateStore) (*Shell, error) {
	s := newShell(registry, key, store, nil)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s.rl = rl
	s.out = rl.Stdout()
	return s, nil
}

func newShell(registry *manager.Manager, key string, store *persistence.RegistryStateStore, out io.Writer) *Shell {
	return &Shell{
		registry:  registry,
		inspector: inspect.NewInspector(registry),
		formatter: inspect.NewFormatter(),
		store:     store,
		current:   key,
		out:       out,
	}
}

// Stdout returns a writer that properly coordinates with the readline input.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

func (s *Shell) prompt() string {
	return s.current + "> "
}

func (s *Shell) completer() *readline.PrefixCompleter {
	kinds := func() []readline.PrefixCompleterInterface {
		return []readline.PrefixCompleterInterface{readline.PcItem("location"), readline.PcItem("area")}
	}
	keys := func(string) []string { return s.registry.ModelKeys() }

	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("models"),
		readline.PcItem("use", readline.PcItemDynamic(keys)),
		readline.PcItem("tree", readline.PcItemDynamic(keys)),
		readline.PcItem("inspect"),
		readline.PcItem("save", kinds()...),
		readline.PcItem("get", kinds()...),
		readline.PcItem("saved", kinds()...),
		readline.PcItem("localize"),
		readline.PcItem("names"),
		readline.PcItem("snapshot"),
		readline.PcItem("quit"),
	)
}

// Run starts the interactive command loop. It returns when the user quits or
// input ends.
func (s *Shell) Run() {
	defer s.rl.Close()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return
		}

		if s.Execute(line) {
			return
		}
		s.rl.SetPrompt(s.prompt())
	}
}

// Execute runs one command line and reports whether the shell should exit.
func (s *Shell) Execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	rest := strings.TrimSpace(input[len(parts[0]):])

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "models", "m":
		s.cmdModels()

	case "use":
		s.cmdUse(args)

	case "tree", "t":
		s.cmdTree(args)

	case "inspect", "i":
		s.cmdInspect(rest)

	case "save", "s":
		s.cmdSave(args, rest)

	case "get", "g":
		s.cmdGet(args)

	case "saved":
		s.cmdSaved(args)

	case "localize", "l":
		s.cmdLocalize(rest)

	case "names":
		s.cmdNames(args)

	case "snapshot":
		s.cmdSnapshot()

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
estim-loc Commands:
  Models:
    models               - List registered models
    use <key>            - Switch the current model
    tree [key]           - Show a model's region tree
    inspect <target>     - Show the region an address resolves to
    names [key]          - List region and modifier names

  Addresses (target = [key:] address, optionally quoted):
    save <kind> <target> - Save a location or area
    get <kind> <id>      - Show the address saved under a global ID
    saved [kind]         - List saved addresses of the current model
    localize <target>[; <target>...]
                         - Find areas containing the target(s)
    snapshot             - Write the registry state file

  Other:
    help                 - Show this help
    quit                 - Exit

  Example:
    save area hand, finger | palmar
    localize hand, index finger, distal phalanx | palmar, ulnar
    localize "right: hand, palm" "right: hand, finger | dorsal"`)
}

func (s *Shell) cmdModels() {
	for _, key := range s.registry.ModelKeys() {
		marker := " "
		if key == s.current {
			marker = "*"
		}
		model, _ := s.registry.Model(key)
		fmt.Fprintf(s.out, "%s %s (%s) locations=%d areas=%d\n", marker, key, model.Name(),
			model.Len(address.KindLocation), model.Len(address.KindArea))
	}
}

func (s *Shell) cmdUse(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: use <key>")
		return
	}
	if _, err := s.registry.Model(args[0]); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.current = args[0]
	fmt.Fprintf(s.out, "Using model %s\n", s.current)
}

func (s *Shell) cmdTree(args []string) {
	key := s.current
	if len(args) > 0 {
		key = args[0]
	}
	tree, err := s.inspector.InspectModel(key)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatModelTree(tree))
}

func (s *Shell) cmdInspect(rest string) {
	text, ok := s.singleTarget(rest)
	if !ok {
		return
	}
	target, spec, ok := s.parseTarget(text, address.KindLocation)
	if !ok {
		return
	}
	info, err := s.inspector.InspectRegion(target.Key(s.current), spec)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatRegion(info))
}

func (s *Shell) cmdSave(args []string, rest string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: save <location|area> <target>")
		return
	}
	kind, err := address.ParseKind(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	text, ok := s.singleTarget(strings.TrimSpace(rest[len(args[0]):]))
	if !ok {
		return
	}
	target, spec, ok := s.parseTarget(text, kind)
	if !ok {
		return
	}
	id, err := s.registry.Save(target.Key(s.current), spec, kind)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s %d: %s\n", kind, id, spec)
}

func (s *Shell) cmdGet(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: get <location|area> <id>")
		return
	}
	kind, err := address.ParseKind(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid id: %s\n", args[1])
		return
	}
	key, spec, err := s.registry.Retrieve(id, kind)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s: %s\n", key, spec)
}

func (s *Shell) cmdSaved(args []string) {
	kinds := []address.Kind{address.KindLocation, address.KindArea}
	if len(args) > 0 {
		kind, err := address.ParseKind(args[0])
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		kinds = []address.Kind{kind}
	}

	for _, kind := range kinds {
		rows, err := s.inspector.Saved(s.current, kind)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "%ss:\n", kind)
		fmt.Fprint(s.out, s.formatter.FormatSavedTable(rows))
	}
}

func (s *Shell) cmdLocalize(rest string) {
	if rest == "" {
		fmt.Fprintln(s.out, "Usage: localize <target>[; <target>...]")
		return
	}

	parts, err := splitTargets(rest)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	key := ""
	var specs []address.Spec
	for _, part := range parts {
		target, spec, ok := s.parseTarget(part, address.KindLocation)
		if !ok {
			return
		}
		k := target.Key(s.current)
		if key != "" && k != key {
			fmt.Fprintln(s.out, "Error: all targets of one query must name the same model")
			return
		}
		key = k
		specs = append(specs, spec)
	}

	matches, err := s.inspector.Localize(key, specs...)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(s.out, s.formatter.FormatMatches(matches))
}

// splitTargets splits the targets of a command. Quoted arguments are one
// target each; unquoted text is split on QuerySeparator.
func splitTargets(rest string) ([]string, error) {
	if !strings.HasPrefix(rest, `"`) && !strings.HasPrefix(rest, "'") {
		return strings.Split(rest, QuerySeparator), nil
	}
	return shellquote.Split(rest)
}

func (s *Shell) singleTarget(rest string) (string, bool) {
	parts, err := splitTargets(rest)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return "", false
	}
	if len(parts) != 1 {
		fmt.Fprintln(s.out, "Error: expected a single target")
		return "", false
	}
	return parts[0], true
}

func (s *Shell) cmdNames(args []string) {
	key := s.current
	if len(args) > 0 {
		key = args[0]
	}
	tree, err := s.inspector.InspectModel(key)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Regions:   %s\n", strings.Join(inspect.RegionNames(tree), ", "))
	fmt.Fprintf(s.out, "Modifiers: %s\n", strings.Join(inspect.ModifierNames(tree), ", "))
}

func (s *Shell) cmdSnapshot() {
	if s.store == nil {
		fmt.Fprintln(s.out, "No state file configured (start with -state or a session state)")
		return
	}
	if err := s.store.Save(s.registry.Snapshot()); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "State written to %s\n", s.store.Path())
}

func (s *Shell) parseTarget(text string, kind address.Kind) (*inspect.Target, address.Spec, bool) {
	target, err := inspect.ParseTarget(text)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid target: %v\n", err)
		return nil, address.Spec{}, false
	}
	spec, err := target.Spec(kind)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid address: %v\n", err)
		return nil, address.Spec{}, false
	}
	return target, spec, true
}
