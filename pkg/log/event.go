package log

import (
	"strings"
	"time"

	"github.com/lhmcgann/estim-go/pkg/address"
)

// Event is a single engine event. CBOR encoding uses integer keys for
// compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the registry that produced the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"3,keyasint"`

	// ModelKey is the registry key of the model involved.
	ModelKey string `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Model    *ModelEvent     `cbor:"5,keyasint,omitempty"`
	Save     *SaveEvent      `cbor:"6,keyasint,omitempty"`
	Localize *LocalizeEvent  `cbor:"7,keyasint,omitempty"`
	Error    *ErrorEventData `cbor:"8,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryModel indicates a model was added to the registry.
	CategoryModel Category = 0
	// CategorySave indicates a location or area was saved.
	CategorySave Category = 1
	// CategoryLocalize indicates a localization query was answered.
	CategoryLocalize Category = 2
	// CategoryError indicates a failed operation.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryModel:
		return "MODEL"
	case CategorySave:
		return "SAVE"
	case CategoryLocalize:
		return "LOCALIZE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range []Category{CategoryModel, CategorySave, CategoryLocalize, CategoryError} {
		if strings.EqualFold(c.String(), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return 0, false
}

// ModelEvent describes a model added to the registry.
type ModelEvent struct {
	// Name is the model's own name (the key may differ).
	Name string `cbor:"1,keyasint"`

	// Regions is the number of regions in the model's tree.
	Regions int `cbor:"2,keyasint"`
}

// SaveEvent describes a saved location or area.
type SaveEvent struct {
	// Kind is location or area.
	Kind address.Kind `cbor:"1,keyasint"`

	// Address is the normalized address text.
	Address string `cbor:"2,keyasint"`

	// LocalID is the model-local ID.
	LocalID int `cbor:"3,keyasint"`

	// GlobalID is the registry-wide ID.
	GlobalID int `cbor:"4,keyasint"`

	// IsNew is false when the address was already saved.
	IsNew bool `cbor:"5,keyasint,omitempty"`
}

// LocalizeEvent describes an answered localization query.
type LocalizeEvent struct {
	// Address is the queried address text.
	Address string `cbor:"1,keyasint"`

	// Fully lists global IDs of fully containing areas.
	Fully []int `cbor:"2,keyasint,omitempty"`

	// Partially lists global IDs of partially containing areas.
	Partially []int `cbor:"3,keyasint,omitempty"`

	// Duration is the query processing time, stored as nanoseconds.
	Duration time.Duration `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData describes a failed operation.
type ErrorEventData struct {
	// Operation is the registry operation that failed (e.g. "save").
	Operation string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Address is the address involved, if any.
	Address string `cbor:"3,keyasint,omitempty"`
}
