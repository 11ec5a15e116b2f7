package taskstream

import (
	"fmt"
	"io"

	"github.com/utkarsh5026/taskstream/cancel"
	"github.com/utkarsh5026/taskstream/frame"
	"github.com/utkarsh5026/taskstream/pool"
	"github.com/utkarsh5026/taskstream/retry"
)

const defaultChunkSize = 4096

// StreamMode selects the framing used when decoding a byte stream.
type StreamMode int

const (
	// StreamLines decodes newline-delimited records.
	StreamLines StreamMode = iota
	// StreamEvents decodes SSE-style "data:" events with the default
	// "[DONE]" sentinel and JSON payload validation.
	StreamEvents
)

// StreamUnit opens the byte stream for one item, e.g. an HTTP response body.
// The orchestrator owns draining and closing it.
type StreamUnit[I any] func(token *cancel.Token, item I) (io.ReadCloser, error)

// RecordSink consumes decoded records as they complete. Returning an error
// stops the stream's decoding; the error becomes the item's failure.
type RecordSink func(rec frame.Record) error

// DecodeStream drains r through a fresh decoder for the given mode, handing
// each record to sink as soon as it completes, and flushing the decoder at
// EOF. It returns the number of data records decoded (the terminating
// KindEndOfStream reaches the sink but is not counted).
//
// Decoding stops early when the token is cancelled, when sink returns an
// error, or when the read fails; read failures are surfaced as transient so
// a retry policy may re-open the stream.
func DecodeStream(token *cancel.Token, r io.Reader, mode StreamMode, sink RecordSink) (int, error) {
	return decodeStream(token, r, mode, defaultChunkSize, sink)
}

func decodeStream(token *cancel.Token, r io.Reader, mode StreamMode, chunkSize int, sink RecordSink) (int, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if token == nil {
		token = cancel.New()
	}

	var decoder frame.Decoder
	if mode == StreamEvents {
		decoder = frame.NewEventDecoder()
	} else {
		decoder = frame.NewLineDecoder()
	}

	count := 0
	emit := func(records []frame.Record) error {
		for _, rec := range records {
			if rec.Kind != frame.KindEndOfStream {
				count++
			}
			if err := sink(rec); err != nil {
				return err
			}
		}
		return nil
	}

	buf := make([]byte, chunkSize)
	for {
		if err := token.Err(); err != nil {
			return count, err
		}

		n, err := r.Read(buf)
		if n > 0 {
			if sinkErr := emit(decoder.Feed(buf[:n])); sinkErr != nil {
				return count, sinkErr
			}
		}
		if err == io.EOF {
			return count, emit(decoder.Flush())
		}
		if err != nil {
			return count, retry.MarkTransient(fmt.Errorf("read stream: %w", err))
		}
	}
}

// ExecuteStreams runs one streaming unit per item: open the item's stream,
// decode it record by record into sink, and settle the item's outcome with
// the number of data records decoded. One decoder is constructed per stream;
// nothing is shared across streams.
//
// The sink may be called concurrently for different items (never for the
// same item); it must be safe for that.
func ExecuteStreams[I any](
	e *Executor[I, int],
	token *cancel.Token,
	items []I,
	open StreamUnit[I],
	mode StreamMode,
	sink func(item I, rec frame.Record) error,
) ([]pool.Outcome[int], error) {
	unit := func(tok *cancel.Token, item I) (int, error) {
		stream, err := open(tok, item)
		if err != nil {
			return 0, fmt.Errorf("open stream: %w", err)
		}
		defer func() { _ = stream.Close() }()

		return decodeStream(tok, stream, mode, e.conf.chunkSize, func(rec frame.Record) error {
			return sink(item, rec)
		})
	}

	return e.Execute(token, items, unit)
}
