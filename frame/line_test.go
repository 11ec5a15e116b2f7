package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect feeds the input in the given chunk sizes and appends the flush.
func collect(d Decoder, input []byte, chunkSize int) []Record {
	var records []Record
	for start := 0; start < len(input); start += chunkSize {
		end := min(start+chunkSize, len(input))
		records = append(records, d.Feed(input[start:end])...)
	}
	return append(records, d.Flush()...)
}

func lineTexts(records []Record) []string {
	var texts []string
	for _, r := range records {
		if r.Kind == KindLine {
			texts = append(texts, r.Text)
		}
	}
	return texts
}

func TestLineDecoder_SingleFeed(t *testing.T) {
	d := NewLineDecoder()

	records := d.Feed([]byte("alpha\nbeta\ngamma\n"))
	require.Len(t, records, 3)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, lineTexts(records))
}

func TestLineDecoder_PartialLineHeldBack(t *testing.T) {
	d := NewLineDecoder()

	records := d.Feed([]byte("hel"))
	assert.Empty(t, records, "incomplete line must stay buffered")

	records = d.Feed([]byte("lo\nwor"))
	require.Len(t, records, 1)
	assert.Equal(t, "hello", records[0].Text)

	records = d.Feed([]byte("ld\n"))
	require.Len(t, records, 1)
	assert.Equal(t, "world", records[0].Text)
}

func TestLineDecoder_ChunkingDoesNotChangeOutput(t *testing.T) {
	input := []byte("first line\nsecond line\r\nthird 🚀 line\ntrailing bit")

	want := collect(NewLineDecoder(), input, len(input))
	for chunkSize := 1; chunkSize <= 7; chunkSize++ {
		got := collect(NewLineDecoder(), input, chunkSize)
		assert.Equal(t, want, got, "chunk size %d", chunkSize)
	}
}

func TestLineDecoder_MultiByteRuneSplitAcrossChunks(t *testing.T) {
	d := NewLineDecoder()

	// "héllo\n" with the two-byte é split between feeds.
	raw := []byte("h\xc3\xa9llo\n")
	var records []Record
	records = append(records, d.Feed(raw[:2])...) // ends mid-rune
	records = append(records, d.Feed(raw[2:])...)

	require.Len(t, records, 1)
	assert.Equal(t, "héllo", records[0].Text)
}

func TestLineDecoder_CRLFStripped(t *testing.T) {
	d := NewLineDecoder()

	records := d.Feed([]byte("one\r\ntwo\n"))
	assert.Equal(t, []string{"one", "two"}, lineTexts(records))
}

func TestLineDecoder_CustomDelimiterSplitAcrossChunks(t *testing.T) {
	d := NewLineDecoder(WithDelimiter([]byte("||")))

	var records []Record
	records = append(records, d.Feed([]byte("a|"))...)
	require.Empty(t, records, "half a delimiter is not a delimiter")

	records = d.Feed([]byte("|b||"))
	assert.Equal(t, []string{"a", "b"}, lineTexts(records))
}

func TestLineDecoder_CustomDelimiterKeepsCarriageReturn(t *testing.T) {
	d := NewLineDecoder(WithDelimiter([]byte(";")))

	records := d.Feed([]byte("a\r;"))
	require.Len(t, records, 1)
	assert.Equal(t, "a\r", records[0].Text, "\\r stripping only applies to the newline delimiter")
}

func TestLineDecoder_FlushEmitsRemainderThenEndOfStream(t *testing.T) {
	d := NewLineDecoder()
	d.Feed([]byte("complete\npartial"))

	records := d.Flush()
	require.Len(t, records, 2)
	assert.Equal(t, KindLine, records[0].Kind)
	assert.Equal(t, "partial", records[0].Text)
	assert.Equal(t, KindEndOfStream, records[1].Kind)
}

func TestLineDecoder_FlushWithEmptyBuffer(t *testing.T) {
	d := NewLineDecoder()
	d.Feed([]byte("done\n"))

	records := d.Flush()
	require.Len(t, records, 1)
	assert.Equal(t, KindEndOfStream, records[0].Kind)
}

func TestLineDecoder_TerminalAfterFlush(t *testing.T) {
	d := NewLineDecoder()
	d.Flush()

	assert.Nil(t, d.Feed([]byte("late\n")))
	assert.Nil(t, d.Flush())
}

func TestLineDecoder_EmptyChunk(t *testing.T) {
	d := NewLineDecoder()
	assert.Nil(t, d.Feed(nil))
	assert.Nil(t, d.Feed([]byte{}))
}

func TestLineDecoder_EmptyLines(t *testing.T) {
	d := NewLineDecoder()

	records := d.Feed([]byte("\n\na\n"))
	assert.Equal(t, []string{"", "", "a"}, lineTexts(records))
}
