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

// Package sched plans how the dataset index range is divided among workers.
//
// Partition computes the balanced per-worker split used to size per-worker
// state (affinity targets, local tables). The work sources then control
// iteration granularity within a run:
//
//   - static: each worker walks its own partition in fixed chunks, assigned
//     up front, no shared state and no rebalancing.
//   - dynamic: all workers pull fixed chunks from one shared fetch-add
//     cursor, balancing skewed per-element cost at the price of cursor
//     contention.
//   - guided: like dynamic, but chunks start large and shrink geometrically
//     with the remaining work (remaining/(2*workers), floored at a minimum),
//     approximating dynamic's balance with fewer cursor round-trips.
//
// Whatever the policy, every index in [0, n) is handed out exactly once, so
// the choice can never affect the final counts.
package sched

import (
	"fmt"
	"sync/atomic"
)

// Policy names a work-distribution strategy.
type Policy string

const (
	Static  Policy = "static"
	Dynamic Policy = "dynamic"
	Guided  Policy = "guided"
)

// Chunk-size defaults used when the configured chunk is 0.
const (
	defaultDynamicChunk = 1024
	defaultGuidedFloor  = 256
)

// Range is a half-open index interval [Begin, End).
type Range struct {
	Begin, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Begin }

// Source hands out sub-ranges to workers. Implementations returned by New
// are safe for concurrent Next calls as long as each worker passes its own
// index.
type Source interface {
	Next(worker int) (begin, end int, ok bool)
}

// Partition splits [0, n) into workers disjoint, covering, order-preserving
// ranges with boundaries floor(n*t/workers).
func Partition(n, workers int) []Range {
	parts := make([]Range, workers)
	for t := 0; t < workers; t++ {
		parts[t] = Range{Begin: n * t / workers, End: n * (t + 1) / workers}
	}
	return parts
}

// New builds the work source for a run. chunk == 0 selects the policy's
// default granularity.
func New(policy Policy, n, workers, chunk int) (Source, error) {
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive, got %d", n)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", workers)
	}
	if chunk < 0 {
		return nil, fmt.Errorf("chunk must be non-negative, got %d", chunk)
	}
	switch policy {
	case Static:
		return newStatic(n, workers, chunk), nil
	case Dynamic:
		if chunk == 0 {
			chunk = defaultDynamicChunk
		}
		return &dynamicSource{n: n, chunk: int64(chunk)}, nil
	case Guided:
		if chunk == 0 {
			chunk = defaultGuidedFloor
		}
		return &guidedSource{n: n, workers: workers, floor: chunk}, nil
	default:
		return nil, fmt.Errorf("unknown sched policy: %q (use static|dynamic|guided)", policy)
	}
}

// cursor is a per-worker position padded to a cache line so that neighboring
// workers advancing their cursors do not false-share.
type cursor struct {
	pos int
	_   [56]byte
}

// staticSource assigns each worker its balanced partition up front and walks
// it in chunk-sized steps. chunk 0 means one block per worker.
type staticSource struct {
	parts   []Range
	chunk   int
	cursors []cursor
}

func newStatic(n, workers, chunk int) *staticSource {
	s := &staticSource{
		parts:   Partition(n, workers),
		chunk:   chunk,
		cursors: make([]cursor, workers),
	}
	for t := range s.cursors {
		s.cursors[t].pos = s.parts[t].Begin
	}
	return s
}

func (s *staticSource) Next(worker int) (int, int, bool) {
	part := s.parts[worker]
	begin := s.cursors[worker].pos
	if begin >= part.End {
		return 0, 0, false
	}
	end := part.End
	if s.chunk > 0 && begin+s.chunk < end {
		end = begin + s.chunk
	}
	s.cursors[worker].pos = end
	return begin, end, true
}

// dynamicSource is a shared fetch-add work cursor. Any idle worker claims the
// next chunk, regardless of identity.
type dynamicSource struct {
	n      int
	chunk  int64
	cursor atomic.Int64
}

func (s *dynamicSource) Next(int) (int, int, bool) {
	begin := int(s.cursor.Add(s.chunk) - s.chunk)
	if begin >= s.n {
		return 0, 0, false
	}
	end := begin + int(s.chunk)
	if end > s.n {
		end = s.n
	}
	return begin, end, true
}

// guidedSource shrinks the claimed chunk as work runs out: each claim takes
// remaining/(2*workers) indices, floored at the configured minimum. The
// shrink ratio is an implementation choice, not a compatibility requirement.
type guidedSource struct {
	n       int
	workers int
	floor   int
	cursor  atomic.Int64
}

func (s *guidedSource) Next(int) (int, int, bool) {
	for {
		begin := int(s.cursor.Load())
		if begin >= s.n {
			return 0, 0, false
		}
		chunk := (s.n - begin) / (2 * s.workers)
		if chunk < s.floor {
			chunk = s.floor
		}
		end := begin + chunk
		if end > s.n {
			end = s.n
		}
		if s.cursor.CompareAndSwap(int64(begin), int64(end)) {
			return begin, end, true
		}
	}
}
