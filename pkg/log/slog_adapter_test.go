package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/lhmcgann/estim-go/pkg/address"
)

func logOne(t *testing.T, event Event) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsSaveEvent(t *testing.T) {
	entry := logOne(t, Event{
		Timestamp: time.Now(),
		SessionID: "s-123",
		Category:  CategorySave,
		ModelKey:  "left",
		Save: &SaveEvent{
			Kind:     address.KindLocation,
			Address:  "hand, finger",
			LocalID:  0,
			GlobalID: 3,
			IsNew:    true,
		},
	})

	want := map[string]any{
		"session_id": "s-123",
		"category":   "SAVE",
		"model":      "left",
		"kind":       "location",
		"address":    "hand, finger",
		"global_id":  float64(3),
		"new":        true,
		"level":      "DEBUG",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: got %v, want %v", k, entry[k], v)
		}
	}
}

func TestSlogAdapterLogsErrorAtWarn(t *testing.T) {
	entry := logOne(t, Event{
		SessionID: "s",
		Category:  CategoryError,
		Error:     &ErrorEventData{Operation: "save", Message: "unresolved region", Address: "foot"},
	})

	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry["operation"] != "save" {
		t.Errorf("operation = %v, want save", entry["operation"])
	}
	if entry["address"] != "foot" {
		t.Errorf("address = %v, want foot", entry["address"])
	}
}

func TestSlogAdapterLogsLocalizeEvent(t *testing.T) {
	entry := logOne(t, Event{
		SessionID: "s",
		Category:  CategoryLocalize,
		Localize:  &LocalizeEvent{Address: "hand", Fully: []int{1, 2}, Duration: time.Millisecond},
	})

	fully, ok := entry["fully"].([]any)
	if !ok || len(fully) != 2 {
		t.Errorf("fully = %v, want two IDs", entry["fully"])
	}
	if _, ok := entry["duration"]; !ok {
		t.Error("duration missing")
	}
}
