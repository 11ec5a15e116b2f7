package frame

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EventDecoder decodes SSE-style event streams: consecutive "data:" lines
// accumulate into one event payload, a blank line dispatches the event, and
// a payload equal to the sentinel ends the stream. Non-data fields ("event:",
// "id:", comments) are skipped.
type EventDecoder struct {
	lines    *LineDecoder
	sentinel string
	validate func(payload []byte) bool

	data    [][]byte
	pending bool
	ended   bool
}

// EventOption configures an EventDecoder.
type EventOption func(*EventDecoder)

// WithSentinel sets the payload that terminates the stream instead of being
// emitted as an event. Defaults to "[DONE]". An empty sentinel disables
// sentinel handling.
func WithSentinel(sentinel string) EventOption {
	return func(d *EventDecoder) {
		d.sentinel = sentinel
	}
}

// WithValidator sets the payload validator; payloads it rejects are emitted
// as KindMalformed records instead of events. Defaults to json.Valid. A nil
// validator accepts everything.
func WithValidator(validate func(payload []byte) bool) EventOption {
	return func(d *EventDecoder) {
		d.validate = validate
	}
}

// NewEventDecoder creates an event decoder with a "[DONE]" sentinel and JSON
// payload validation.
func NewEventDecoder(opts ...EventOption) *EventDecoder {
	d := &EventDecoder{
		lines:    NewLineDecoder(),
		sentinel: "[DONE]",
		validate: json.Valid,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed consumes one chunk and returns the events it completed. After the
// sentinel has been seen, all further input is discarded.
func (d *EventDecoder) Feed(chunk []byte) []Record {
	if d.ended {
		return nil
	}

	var records []Record
	for _, line := range d.lines.Feed(chunk) {
		records = append(records, d.consumeLine(line.Text)...)
		if d.ended {
			break
		}
	}
	return records
}

// Flush ends the stream. A pending event with no terminating blank line is
// dispatched first, then KindEndOfStream — unless the sentinel already ended
// the stream, in which case nothing more is emitted.
func (d *EventDecoder) Flush() []Record {
	if d.ended {
		return nil
	}

	var records []Record
	for _, rec := range d.lines.Flush() {
		if rec.Kind != KindLine {
			continue
		}
		records = append(records, d.consumeLine(rec.Text)...)
		if d.ended {
			return records
		}
	}

	records = append(records, d.dispatch()...)
	if d.ended {
		return records
	}

	d.ended = true
	return append(records, Record{Kind: KindEndOfStream})
}

// consumeLine feeds one complete line into the event state machine. A blank
// line dispatches the accumulated event; "data:" lines accumulate; anything
// else is skipped.
func (d *EventDecoder) consumeLine(line string) []Record {
	if line == "" {
		return d.dispatch()
	}

	if payload, ok := strings.CutPrefix(line, "data:"); ok {
		payload = strings.TrimPrefix(payload, " ")
		d.data = append(d.data, []byte(payload))
		d.pending = true
	}
	return nil
}

// dispatch turns the accumulated data lines into one record. Multi-line
// payloads are joined with "\n", per the EventSource framing.
func (d *EventDecoder) dispatch() []Record {
	if !d.pending {
		return nil
	}

	payload := bytes.Join(d.data, []byte("\n"))
	d.data = nil
	d.pending = false

	if d.sentinel != "" && string(payload) == d.sentinel {
		d.ended = true
		return []Record{{Kind: KindEndOfStream}}
	}

	if d.validate != nil && !d.validate(payload) {
		return []Record{{Kind: KindMalformed, Raw: payload}}
	}
	return []Record{{Kind: KindEvent, Payload: payload}}
}
