// Package sink delivers streamed (time, value) events to downstream consumers.
package sink

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/schema"
)

// WriterSink emits events as JSON lines to an io.Writer.
// This is the default sink, normally wrapped around stdout.
type WriterSink struct {
	w io.Writer
}

var _ contract.Sink = &WriterSink{} // Compile-time check

// NewWriterSink creates a sink writing one JSON object per line to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit implements the Sink interface.
func (s *WriterSink) Emit(event schema.SinkEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("cannot encode sink event: %w", err)
	}
	if _, err := fmt.Fprintln(s.w, string(b)); err != nil {
		return fmt.Errorf("cannot write sink event: %w", err)
	}
	return nil
}

// Close implements the Sink interface. The writer is not owned by the sink.
func (s *WriterSink) Close() error {
	return nil
}
