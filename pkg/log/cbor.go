package log

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Codec errors.
var (
	// ErrUnknownCategory is returned when an event's category is not one of
	// the defined categories.
	ErrUnknownCategory = errors.New("unknown event category")

	// ErrCorrupt is returned when an event log holds bytes that do not
	// decode to an event, including a record cut short at the end of file.
	ErrCorrupt = errors.New("corrupt event log")
)

// eventModes builds the encoder and decoder modes once. Encoding is canonical
// so equal events produce equal bytes; timestamps keep nanoseconds.
var eventModes = sync.OnceValues(func() (cbor.EncMode, cbor.DecMode) {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("event encoder mode: %v", err))
	}
	dec, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("event decoder mode: %v", err))
	}
	return enc, dec
})

func checkCategory(c Category) error {
	if c > CategoryError {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, c)
	}
	return nil
}

// EncodeEvent returns the CBOR record for event.
func EncodeEvent(event Event) ([]byte, error) {
	if err := checkCategory(event.Category); err != nil {
		return nil, err
	}
	enc, _ := eventModes()
	return enc.Marshal(event)
}

// DecodeEvent decodes a single CBOR record.
func DecodeEvent(data []byte) (Event, error) {
	_, dec := eventModes()
	var event Event
	if err := dec.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := checkCategory(event.Category); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return event, nil
}

// EventEncoder appends events to a stream as consecutive CBOR records.
type EventEncoder struct {
	enc   *cbor.Encoder
	count int
}

// NewEventEncoder creates an EventEncoder writing to w.
func NewEventEncoder(w io.Writer) *EventEncoder {
	enc, _ := eventModes()
	return &EventEncoder{enc: enc.NewEncoder(w)}
}

// Encode writes event. Events with an unknown category are rejected before
// anything is written.
func (e *EventEncoder) Encode(event Event) error {
	if err := checkCategory(event.Category); err != nil {
		return err
	}
	if err := e.enc.Encode(event); err != nil {
		return err
	}
	e.count++
	return nil
}

// Count returns the number of events written.
func (e *EventEncoder) Count() int {
	return e.count
}

// EventDecoder reads consecutive CBOR event records from a stream.
type EventDecoder struct {
	dec   *cbor.Decoder
	count int
}

// NewEventDecoder creates an EventDecoder reading from r.
func NewEventDecoder(r io.Reader) *EventDecoder {
	_, dec := eventModes()
	return &EventDecoder{dec: dec.NewDecoder(r)}
}

// Decode returns the next event, io.EOF after the last complete record, or
// an ErrCorrupt error naming the 1-based position of the bad record.
func (d *EventDecoder) Decode() (Event, error) {
	var event Event
	err := d.dec.Decode(&event)
	if err == nil {
		err = checkCategory(event.Category)
	}
	switch {
	case err == nil:
		d.count++
		return event, nil
	case errors.Is(err, io.EOF):
		return Event{}, io.EOF
	default:
		return Event{}, fmt.Errorf("%w: record %d: %v", ErrCorrupt, d.count+1, err)
	}
}
