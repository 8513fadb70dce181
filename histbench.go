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

// Package histbench provides the core engine of the parallel histogram
// benchmark harness: the 256-bin counter tables and the timed parallel region
// that bins a byte dataset across a fixed pool of workers.
//
// Two aggregation strategies are supported. StrategyAtomic shares one counter
// table and performs a lock-free atomic increment per element; contention is
// proportional to the per-element rate. StrategyLocal gives every worker a
// private table, increments it without synchronization, and merges it into the
// shared table once under a mutex; contention is O(workers), independent of
// dataset size. The two strategies must always agree on the final counts.
package histbench

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Strategy selects how workers aggregate counts into the shared table.
type Strategy string

const (
	// StrategyAtomic increments shared atomic counters directly, one
	// atomic add per element.
	StrategyAtomic Strategy = "atomic"
	// StrategyLocal accumulates into private per-worker tables and merges
	// them under a mutex at the end of each worker's range.
	StrategyLocal Strategy = "local"
)

// Source hands out index sub-ranges of the dataset to workers. Next must be
// safe for concurrent calls from distinct workers, and the union of all
// returned ranges must cover every index exactly once.
type Source interface {
	Next(worker int) (begin, end int, ok bool)
}

// Options configures a single timed run.
type Options struct {
	// Workers is the fixed pool size T. Must be positive.
	Workers int

	// Strategy is the aggregation strategy under test.
	Strategy Strategy

	// Padded lays the shared table out one counter per cache line.
	// Only meaningful for StrategyAtomic; local tables are private during
	// accumulation and unaffected by cross-worker false sharing.
	Padded bool

	// Source distributes iteration ranges. Required.
	Source Source

	// Pin, when non-nil, is called by each worker on its own goroutine
	// before the first element is processed, with the worker index. The
	// worker's OS thread is locked for the duration of the run.
	Pin func(worker int) error
}

// Result holds the outcome of one timed run. It is immutable after Run
// returns.
type Result struct {
	// Counts is the final 256-bin table.
	Counts [NumBins]uint64
	// Elapsed is the wall-clock duration of the timed parallel region
	// only; dataset generation and verification are excluded.
	Elapsed time.Duration
}

// Total sums the 256 counters. A run is correct iff Total equals the dataset
// length exactly.
func (r *Result) Total() uint64 {
	var total uint64
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// Run executes the timed parallel region: it allocates the shared table,
// starts opts.Workers goroutines, drains opts.Source, and joins. The returned
// error reports invalid options only; a lost-count bug surfaces as a
// verification failure in the caller, never as an error here.
func Run(data []byte, opts Options) (*Result, error) {
	if opts.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", opts.Workers)
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("nil work source")
	}
	switch opts.Strategy {
	case StrategyAtomic, StrategyLocal:
	default:
		return nil, fmt.Errorf("unknown strategy: %q (use atomic|local)", opts.Strategy)
	}

	table := newBinTable(opts.Strategy == StrategyAtomic && opts.Padded)

	var wg sync.WaitGroup
	wg.Add(opts.Workers)

	start := time.Now()
	for w := 0; w < opts.Workers; w++ {
		go func(worker int) {
			defer wg.Done()
			if opts.Pin != nil {
				// Affinity applies to the OS thread, so the goroutine
				// must stay on one thread for the whole run.
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
				_ = opts.Pin(worker)
			}
			switch opts.Strategy {
			case StrategyAtomic:
				runAtomic(data, table, opts.Source, worker)
			case StrategyLocal:
				runLocal(data, table, opts.Source, worker)
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	return &Result{Counts: table.snapshot(), Elapsed: elapsed}, nil
}

// runAtomic is the shared-atomic hot loop: one atomic increment per element,
// no local buffering.
func runAtomic(data []byte, table binTable, src Source, worker int) {
	for {
		begin, end, ok := src.Next(worker)
		if !ok {
			return
		}
		for _, v := range data[begin:end] {
			table.inc(v)
		}
	}
}

// runLocal accumulates into a private table with plain increments (safe: the
// table is exclusively owned) and merges once before the worker exits. The
// merge is the only contended section and costs O(NumBins) regardless of the
// dataset size.
func runLocal(data []byte, table binTable, src Source, worker int) {
	var local [NumBins]uint64
	for {
		begin, end, ok := src.Next(worker)
		if !ok {
			break
		}
		for _, v := range data[begin:end] {
			local[v]++
		}
	}
	table.addLocked(&local)
}
