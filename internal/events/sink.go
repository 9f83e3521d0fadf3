package events

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/dudu/gazetrack/internal/logger"
	"github.com/dudu/gazetrack/internal/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sink appends records to a writer as JSON lines. It implements
// pipeline.Observer.
type Sink struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	enc    *jsoniter.Encoder
	ids    *IDSource
	now    func() time.Time
	count  int
}

// NewSink writes records to w
func NewSink(w io.Writer) *Sink {
	bw := bufio.NewWriter(w)
	s := &Sink{
		w:   bw,
		enc: json.NewEncoder(bw),
		ids: NewIDSource(),
		now: time.Now,
	}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// OpenFile appends records to the file at path, creating it if needed
func OpenFile(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return NewSink(f), nil
}

// Write encodes records, one per line
func (s *Sink) Write(records ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range records {
		if err := s.enc.Encode(&records[i]); err != nil {
			return err
		}
		s.count++
	}
	return s.w.Flush()
}

// ObserveFrame records every result of a frame. Frames without faces are
// not logged.
func (s *Sink) ObserveFrame(sessionID string, results []pipeline.FrameResult, timing pipeline.Timing) {
	if len(results) == 0 {
		return
	}
	records, err := FromResults(s.ids, sessionID, timing, results, s.now())
	if err == nil {
		err = s.Write(records...)
	}
	if err != nil {
		logger.Log().Warn("event log write failed", zap.Uint64("frame", timing.Frame), zap.Error(err))
	}
}

// Count returns the number of records written
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close flushes and closes the underlying writer
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
