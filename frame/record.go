// Package frame turns an arbitrary stream of byte chunks into complete
// logical records.
//
// A decoder is fed chunks of any size — chunk boundaries carry no meaning —
// and emits each record exactly once, as soon as its delimiter arrives.
// Incomplete trailing input (including a delimiter or multi-byte character
// split across two chunks) stays buffered until the bytes that complete it
// arrive, or until Flush drains it at end of stream.
//
// Two framings are supported: newline/delimiter-separated lines
// (NewLineDecoder) and SSE-style "data:" events terminated by a blank line
// (NewEventDecoder).
package frame

import "fmt"

// Kind discriminates the Record variants.
type Kind int

const (
	// KindLine is one delimiter-terminated line; Text holds it without the
	// delimiter.
	KindLine Kind = iota
	// KindEvent is one complete event; Payload holds the joined data lines.
	KindEvent
	// KindMalformed is an event whose payload failed validation; Raw holds
	// the bytes. Decoding continues with the next frame.
	KindMalformed
	// KindEndOfStream marks the end of the stream. Emitted exactly once, by
	// Flush or by an event decoder that sees its sentinel payload.
	KindEndOfStream
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindEvent:
		return "event"
	case KindMalformed:
		return "malformed"
	case KindEndOfStream:
		return "end-of-stream"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Record is one decoded frame.
type Record struct {
	Kind Kind
	// Text is the line content for KindLine records.
	Text string
	// Payload is the event payload for KindEvent records.
	Payload []byte
	// Raw is the unparseable payload for KindMalformed records.
	Raw []byte
}

// Decoder is the incremental decoding interface shared by both framings.
type Decoder interface {
	// Feed consumes one chunk and returns the records it completed, possibly
	// none. Chunks may split records, delimiters, and multi-byte characters
	// at any byte position.
	Feed(chunk []byte) []Record

	// Flush ends the stream: it drains any buffered remainder as a final
	// record and emits KindEndOfStream. Call it exactly once, after the last
	// Feed; both Feed and Flush are no-ops afterwards.
	Flush() []Record
}
