package frame

import "bytes"

// LineDecoder splits a chunked byte stream into delimiter-separated lines.
type LineDecoder struct {
	delim []byte
	buf   []byte
	ended bool
}

// LineOption configures a LineDecoder.
type LineOption func(*LineDecoder)

// WithDelimiter sets the line delimiter. Defaults to "\n". Empty delimiters
// are ignored.
func WithDelimiter(delim []byte) LineOption {
	return func(d *LineDecoder) {
		if len(delim) > 0 {
			d.delim = append([]byte(nil), delim...)
		}
	}
}

// NewLineDecoder creates a line decoder. With the default "\n" delimiter a
// trailing "\r" is stripped from each line, so CRLF input decodes the same
// as LF input.
func NewLineDecoder(opts ...LineOption) *LineDecoder {
	d := &LineDecoder{delim: []byte("\n")}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed appends chunk to the internal buffer and returns every line the
// buffer now completes. The last, possibly-incomplete segment is always
// retained rather than emitted, so a delimiter or multi-byte character split
// across chunks is never lost.
func (d *LineDecoder) Feed(chunk []byte) []Record {
	if d.ended || len(chunk) == 0 {
		return nil
	}

	d.buf = append(d.buf, chunk...)

	var records []Record
	for {
		i := bytes.Index(d.buf, d.delim)
		if i < 0 {
			break
		}
		records = append(records, Record{Kind: KindLine, Text: d.cut(i)})
		d.buf = d.buf[i+len(d.delim):]
	}
	return records
}

// Flush emits the undelimited remainder (if any) as a final line, then
// KindEndOfStream. The decoder is terminal afterwards.
func (d *LineDecoder) Flush() []Record {
	if d.ended {
		return nil
	}
	d.ended = true

	var records []Record
	if len(d.buf) > 0 {
		records = append(records, Record{Kind: KindLine, Text: d.cut(len(d.buf))})
		d.buf = nil
	}
	return append(records, Record{Kind: KindEndOfStream})
}

// cut copies buf[:end] out as a line, stripping a trailing \r under the
// default newline delimiter.
func (d *LineDecoder) cut(end int) string {
	line := d.buf[:end]
	if len(d.delim) == 1 && d.delim[0] == '\n' && len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return string(line)
}
