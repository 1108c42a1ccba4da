package log

import (
	"testing"
	"time"

	"github.com/lhmcgann/estim-go/pkg/address"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "session",
		Category:  CategorySave,
	}
	logger.Log(event)

	event.Save = &SaveEvent{Kind: address.KindArea, Address: "hand"}
	logger.Log(event)

	event.Save = nil
	event.Error = &ErrorEventData{Operation: "save", Message: "boom"}
	logger.Log(event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}
