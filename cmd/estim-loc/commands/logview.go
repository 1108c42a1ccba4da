package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/lhmcgann/estim-go/pkg/log"
)

// LogOptions configures the log command.
type LogOptions struct {
	Action   string // view, stats, export
	Category string
	Model    string
	Session  string
	File     string
}

// RunLog runs the log command.
func RunLog(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printLogUsage(stderr)
		return exitCommandError
	}

	opts, err := parseLogArgs(args[0], args[1:])
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if opts.File == "" {
		fmt.Fprintln(stderr, "Error: log file path required")
		printLogUsage(stderr)
		return exitCommandError
	}

	filter, err := opts.filter()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	switch opts.Action {
	case "view":
		err = RunView(opts.File, filter, stdout)
	case "stats":
		err = RunStats(opts.File, filter, stdout)
	case "export":
		err = RunExport(opts.File, filter, stdout)
	default:
		fmt.Fprintf(stderr, "Unknown log action: %s\n", opts.Action)
		printLogUsage(stderr)
		return exitCommandError
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func (o LogOptions) filter() (log.Filter, error) {
	f := log.Filter{SessionID: o.Session, ModelKey: o.Model}
	if o.Category != "" {
		c, ok := log.ParseCategory(o.Category)
		if !ok {
			return f, fmt.Errorf("invalid category %q (valid: model, save, localize, error)", o.Category)
		}
		f.Category = &c
	}
	return f, nil
}

// RunView writes every matching event in human-readable form.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [sess:%s] %s %s\n", ts, shortenID(event.SessionID), event.Category, event.ModelKey)

	switch {
	case event.Model != nil:
		fmt.Fprintf(w, "  Model: %s (%d regions)\n", event.Model.Name, event.Model.Regions)
	case event.Save != nil:
		s := event.Save
		state := "existing"
		if s.IsNew {
			state = "new"
		}
		fmt.Fprintf(w, "  %s %q local=%d global=%d (%s)\n", s.Kind, s.Address, s.LocalID, s.GlobalID, state)
	case event.Localize != nil:
		l := event.Localize
		fmt.Fprintf(w, "  Query: %q\n", l.Address)
		fmt.Fprintf(w, "  Fully: %s  Partially: %s\n", formatIDs(l.Fully), formatIDs(l.Partially))
		if l.Duration > 0 {
			fmt.Fprintf(w, "  Duration: %s\n", l.Duration)
		}
	case event.Error != nil:
		fmt.Fprintf(w, "  Operation: %s\n", event.Error.Operation)
		fmt.Fprintf(w, "  Message: %s\n", event.Error.Message)
		if event.Error.Address != "" {
			fmt.Fprintf(w, "  Address: %q\n", event.Error.Address)
		}
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of an ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ",")
}

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	EventsByModel    map[string]int
	Sessions         map[string]int
	Localizations    int
	LocalizeTime     time.Duration
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// CollectStats reads every matching event and aggregates it.
func CollectStats(path string, filter log.Filter) (*Stats, error) {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsByModel:    make(map[string]int),
		Sessions:         make(map[string]int),
	}
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.Sessions[event.SessionID]++
		if event.ModelKey != "" {
			stats.EventsByModel[event.ModelKey]++
		}
		if event.Localize != nil {
			stats.Localizations++
			stats.LocalizeTime += event.Localize.Duration
		}

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}
	}
	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	stats, err := CollectStats(path, filter)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return nil
	}
	fmt.Fprintf(w, "Time range: %s - %s\n",
		stats.TimeRange.Start.UTC().Format(time.RFC3339), stats.TimeRange.End.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))

	fmt.Fprintln(w, "\nBy category:")
	for _, c := range []log.Category{log.CategoryModel, log.CategorySave, log.CategoryLocalize, log.CategoryError} {
		if n := stats.EventsByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-9s %d\n", c, n)
		}
	}

	if len(stats.EventsByModel) > 0 {
		fmt.Fprintln(w, "\nBy model:")
		keys := make([]string, 0, len(stats.EventsByModel))
		for k := range stats.EventsByModel {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %-9s %d\n", k, stats.EventsByModel[k])
		}
	}

	if stats.Localizations > 0 {
		avg := stats.LocalizeTime / time.Duration(stats.Localizations)
		fmt.Fprintf(w, "\nLocalize: %d queries, avg %s\n", stats.Localizations, avg)
	}
	return nil
}

// RunExport writes every matching event as one JSON object per line.
func RunExport(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := enc.Encode(exportEvent(event)); err != nil {
			return err
		}
	}
}

// exportRecord is the JSON form of an event.
type exportRecord struct {
	Timestamp time.Time           `json:"timestamp"`
	SessionID string              `json:"session_id"`
	Category  string              `json:"category"`
	ModelKey  string              `json:"model,omitempty"`
	Model     *log.ModelEvent     `json:"model_added,omitempty"`
	Save      *exportSave         `json:"save,omitempty"`
	Localize  *log.LocalizeEvent  `json:"localize,omitempty"`
	Error     *log.ErrorEventData `json:"error,omitempty"`
}

type exportSave struct {
	Kind     string `json:"kind"`
	Address  string `json:"address"`
	LocalID  int    `json:"local_id"`
	GlobalID int    `json:"global_id"`
	IsNew    bool   `json:"new"`
}

func exportEvent(e log.Event) exportRecord {
	r := exportRecord{
		Timestamp: e.Timestamp,
		SessionID: e.SessionID,
		Category:  e.Category.String(),
		ModelKey:  e.ModelKey,
		Model:     e.Model,
		Localize:  e.Localize,
		Error:     e.Error,
	}
	if e.Save != nil {
		r.Save = &exportSave{
			Kind:     e.Save.Kind.String(),
			Address:  e.Save.Address,
			LocalID:  e.Save.LocalID,
			GlobalID: e.Save.GlobalID,
			IsNew:    e.Save.IsNew,
		}
	}
	return r
}

func parseLogArgs(action string, args []string) (LogOptions, error) {
	fs := flag.NewFlagSet("log "+action, flag.ContinueOnError)
	opts := LogOptions{Action: action}

	fs.StringVar(&opts.Category, "category", "", "Filter by category (model, save, localize, error)")
	fs.StringVar(&opts.Model, "model", "", "Filter by model key")
	fs.StringVar(&opts.Session, "session", "", "Filter by session ID")

	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if fs.NArg() > 0 {
		opts.File = fs.Arg(0)
	}
	return opts, nil
}

func printLogUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: estim-loc log <view|stats|export> [options] <file.elog>

Options:
  --category   Filter by category (model, save, localize, error)
  --model      Filter by model key
  --session    Filter by session ID

Examples:
  estim-loc log view events.elog
  estim-loc log stats --model left events.elog
  estim-loc log export --category error events.elog`)
}
