// Copyright 2026 The histbench Authors. All Rights Reserved.
//
// Created: August 2026
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report verifies a finished run and emits its result records.
//
// Every run appends exactly two line-oriented records to the results stream:
// one carrying the elapsed time of the timed region, one carrying the
// correctness flag. Many runs from a sweep accumulate into one consolidated
// stream for downstream comparison, so the field order is stable and the
// records are never reordered or rewritten.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"histbench"
	"histbench/internal/harness/config"
)

// familyTag identifies the record family in the consolidated stream.
const familyTag = "hist,go"

// Verify checks the run's core invariant: every element was binned exactly
// once, so the 256 counters sum to the dataset size. Counts are integers;
// there is no tolerance.
func Verify(r *histbench.Result, n int) bool {
	return r.Total() == uint64(n)
}

// TimeRecord renders the timing record for a run.
func TimeRecord(cfg config.Config, elapsed time.Duration) string {
	return fmt.Sprintf("%s,%s,time,%.6f,sec", familyTag, cfg.Fields(), elapsed.Seconds())
}

// CorrectRecord renders the correctness record for a run.
func CorrectRecord(cfg config.Config, correct bool) string {
	v := 0
	if correct {
		v = 1
	}
	return fmt.Sprintf("%s,%s,correct,%d,boolean", familyTag, cfg.Fields(), v)
}

// Sink is a buffered, append-only writer for result records. It is safe for
// concurrent use; records are written whole lines at a time.
type Sink struct {
	mu sync.Mutex
	w  *bufio.Writer
	c  io.Closer
}

// NewSink wraps an existing stream (typically os.Stdout).
func NewSink(w io.Writer) *Sink {
	return &Sink{w: bufio.NewWriter(w)}
}

// NewFileSink opens (or creates) path in append mode so that many runs
// accumulate into one consolidated dataset. Call Close when done.
func NewFileSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Sink{w: bufio.NewWriter(f), c: f}, nil
}

// Emit appends one record line to the stream.
func (s *Sink) Emit(record string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.WriteString(record); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Close flushes buffered records and closes the underlying file, if any.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.w.Flush()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
