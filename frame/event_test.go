package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDecoder_SingleEvent(t *testing.T) {
	d := NewEventDecoder()

	records := d.Feed([]byte("data: {\"a\":1}\n\n"))
	require.Len(t, records, 1)
	assert.Equal(t, KindEvent, records[0].Kind)
	assert.JSONEq(t, `{"a":1}`, string(records[0].Payload))
}

func TestEventDecoder_SentinelEndsStream(t *testing.T) {
	input := []byte("data: {\"a\":1}\n\ndata: [DONE]\n\n")

	// Any split point must give the same two records: one event, one end.
	for cut := 0; cut <= len(input); cut++ {
		d := NewEventDecoder()
		var records []Record
		records = append(records, d.Feed(input[:cut])...)
		records = append(records, d.Feed(input[cut:])...)

		require.Len(t, records, 2, "split at %d", cut)
		assert.Equal(t, KindEvent, records[0].Kind)
		assert.JSONEq(t, `{"a":1}`, string(records[0].Payload))
		assert.Equal(t, KindEndOfStream, records[1].Kind, "sentinel must not produce an event")

		// Stream already ended; Flush adds nothing.
		assert.Nil(t, d.Flush())
	}
}

func TestEventDecoder_InputAfterSentinelDiscarded(t *testing.T) {
	d := NewEventDecoder()

	records := d.Feed([]byte("data: [DONE]\n\ndata: {\"late\":true}\n\n"))
	require.Len(t, records, 1)
	assert.Equal(t, KindEndOfStream, records[0].Kind)

	assert.Nil(t, d.Feed([]byte("data: {\"more\":1}\n\n")))
}

func TestEventDecoder_MultiLinePayloadJoinedWithNewline(t *testing.T) {
	d := NewEventDecoder(WithValidator(nil))

	records := d.Feed([]byte("data: first\ndata: second\n\n"))
	require.Len(t, records, 1)
	assert.Equal(t, KindEvent, records[0].Kind)
	assert.Equal(t, "first\nsecond", string(records[0].Payload))
}

func TestEventDecoder_MalformedPayloadDoesNotStopDecoding(t *testing.T) {
	d := NewEventDecoder()

	input := "data: not json at all\n\ndata: {\"ok\":true}\n\n"
	records := d.Feed([]byte(input))

	require.Len(t, records, 2)
	assert.Equal(t, KindMalformed, records[0].Kind)
	assert.Equal(t, "not json at all", string(records[0].Raw))
	assert.Equal(t, KindEvent, records[1].Kind)
	assert.JSONEq(t, `{"ok":true}`, string(records[1].Payload))
}

func TestEventDecoder_NonDataFieldsIgnored(t *testing.T) {
	d := NewEventDecoder()

	input := ": keep-alive comment\nevent: message\nid: 42\ndata: {\"a\":1}\n\n"
	records := d.Feed([]byte(input))

	require.Len(t, records, 1)
	assert.Equal(t, KindEvent, records[0].Kind)
	assert.JSONEq(t, `{"a":1}`, string(records[0].Payload))
}

func TestEventDecoder_BlankLinesWithoutDataEmitNothing(t *testing.T) {
	d := NewEventDecoder()
	assert.Empty(t, d.Feed([]byte("\n\n\n")))
}

func TestEventDecoder_PayloadSpaceOptional(t *testing.T) {
	d := NewEventDecoder(WithValidator(nil))

	records := d.Feed([]byte("data:no-space\n\ndata: one-space\n\n"))
	require.Len(t, records, 2)
	assert.Equal(t, "no-space", string(records[0].Payload))
	assert.Equal(t, "one-space", string(records[1].Payload))
}

func TestEventDecoder_FlushDispatchesPendingEvent(t *testing.T) {
	d := NewEventDecoder()

	// Stream ends without the terminating blank line.
	require.Empty(t, d.Feed([]byte("data: {\"tail\":1}")))

	records := d.Flush()
	require.Len(t, records, 2)
	assert.Equal(t, KindEvent, records[0].Kind)
	assert.JSONEq(t, `{"tail":1}`, string(records[0].Payload))
	assert.Equal(t, KindEndOfStream, records[1].Kind)
}

func TestEventDecoder_FlushWithSentinelTail(t *testing.T) {
	d := NewEventDecoder()

	require.Empty(t, d.Feed([]byte("data: [DONE]")))

	records := d.Flush()
	require.Len(t, records, 1)
	assert.Equal(t, KindEndOfStream, records[0].Kind)
}

func TestEventDecoder_ChunkingDoesNotChangeOutput(t *testing.T) {
	input := []byte("data: {\"n\":1}\n\ndata: {\"n\":2}\ndata: {\"m\":3}\n\ndata: bad\n\ndata: [DONE]\n\n")

	want := collect(NewEventDecoder(), input, len(input))
	for chunkSize := 1; chunkSize <= 9; chunkSize++ {
		got := collect(NewEventDecoder(), input, chunkSize)
		assert.Equal(t, want, got, "chunk size %d", chunkSize)
	}
}

func TestEventDecoder_CustomSentinel(t *testing.T) {
	d := NewEventDecoder(WithSentinel("STOP"), WithValidator(nil))

	records := d.Feed([]byte("data: hello\n\ndata: STOP\n\n"))
	require.Len(t, records, 2)
	assert.Equal(t, KindEvent, records[0].Kind)
	assert.Equal(t, KindEndOfStream, records[1].Kind)
}

func TestEventDecoder_EmptySentinelDisablesTermination(t *testing.T) {
	d := NewEventDecoder(WithSentinel(""), WithValidator(nil))

	records := d.Feed([]byte("data: [DONE]\n\n"))
	require.Len(t, records, 1)
	assert.Equal(t, KindEvent, records[0].Kind)
	assert.Equal(t, "[DONE]", string(records[0].Payload))
}

func TestEventDecoder_CustomValidator(t *testing.T) {
	onlyDigits := func(payload []byte) bool {
		return len(bytes.TrimLeft(payload, "0123456789")) == 0 && len(payload) > 0
	}
	d := NewEventDecoder(WithValidator(onlyDigits))

	records := d.Feed([]byte("data: 123\n\ndata: abc\n\n"))
	require.Len(t, records, 2)
	assert.Equal(t, KindEvent, records[0].Kind)
	assert.Equal(t, KindMalformed, records[1].Kind)
}

func TestEventDecoder_UnicodePayloadSplitMidRune(t *testing.T) {
	d := NewEventDecoder(WithValidator(nil))

	raw := []byte("data: caf\xc3\xa9\n\n")
	var records []Record
	records = append(records, d.Feed(raw[:10])...) // splits the two-byte é
	records = append(records, d.Feed(raw[10:])...)

	require.Len(t, records, 1)
	assert.Equal(t, "café", string(records[0].Payload))
}
