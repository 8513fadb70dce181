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

package sched

import (
	"sync"
	"testing"
)

// TestPartitionBoundaries checks the floor(n*t/workers) split: disjoint,
// covering, order-preserving, and never more than one element apart in size.
func TestPartitionBoundaries(t *testing.T) {
	cases := []struct {
		n, workers int
	}{
		{10, 1}, {10, 3}, {1000, 7}, {1_000_000, 16}, {5, 8}, {1, 1},
	}
	for _, tc := range cases {
		parts := Partition(tc.n, tc.workers)
		if len(parts) != tc.workers {
			t.Fatalf("n=%d T=%d: got %d parts", tc.n, tc.workers, len(parts))
		}
		prev := 0
		minLen, maxLen := tc.n, 0
		for i, p := range parts {
			if p.Begin != prev {
				t.Fatalf("n=%d T=%d: part %d begins at %d, want %d", tc.n, tc.workers, i, p.Begin, prev)
			}
			if want := tc.n * (i + 1) / tc.workers; p.End != want {
				t.Fatalf("n=%d T=%d: part %d ends at %d, want %d", tc.n, tc.workers, i, p.End, want)
			}
			if l := p.Len(); l < minLen {
				minLen = l
			} else if l > maxLen {
				maxLen = l
			}
			prev = p.End
		}
		if prev != tc.n {
			t.Fatalf("n=%d T=%d: parts cover up to %d", tc.n, tc.workers, prev)
		}
		if maxLen-minLen > 1 && maxLen > 0 {
			t.Fatalf("n=%d T=%d: unbalanced split (min %d, max %d)", tc.n, tc.workers, minLen, maxLen)
		}
	}
}

// drainConcurrent runs `workers` goroutines against the source and marks
// every index handed out. Each index must be claimed exactly once.
func drainConcurrent(t *testing.T, src Source, n, workers int) {
	t.Helper()
	hits := make([]int, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(worker int) {
			defer wg.Done()
			for {
				begin, end, ok := src.Next(worker)
				if !ok {
					return
				}
				mu.Lock()
				for i := begin; i < end; i++ {
					hits[i]++
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d handed out %d times", i, h)
		}
	}
}

// TestSourcesCoverExactlyOnce is the planner's correctness contract for all
// three policies across chunk settings, including chunks that do not divide
// the range evenly.
func TestSourcesCoverExactlyOnce(t *testing.T) {
	const n = 10_007 // prime, so chunks never line up
	for _, policy := range []Policy{Static, Dynamic, Guided} {
		for _, chunk := range []int{0, 1, 64, 1000} {
			for _, workers := range []int{1, 3, 8} {
				src, err := New(policy, n, workers, chunk)
				if err != nil {
					t.Fatalf("New(%s, chunk=%d): %v", policy, chunk, err)
				}
				drainConcurrent(t, src, n, workers)
			}
		}
	}
}

// TestStaticChunkZero gives each worker exactly one block: its whole
// partition.
func TestStaticChunkZero(t *testing.T) {
	const n, workers = 1000, 4
	src, err := New(Static, n, workers, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	parts := Partition(n, workers)
	for w := 0; w < workers; w++ {
		begin, end, ok := src.Next(w)
		if !ok {
			t.Fatalf("worker %d got no range", w)
		}
		if begin != parts[w].Begin || end != parts[w].End {
			t.Fatalf("worker %d got [%d,%d), want [%d,%d)", w, begin, end, parts[w].Begin, parts[w].End)
		}
		if _, _, ok := src.Next(w); ok {
			t.Fatalf("worker %d got a second range with chunk=0", w)
		}
	}
}

// TestGuidedChunksShrink drains a guided source single-threaded and checks
// the claimed chunks never grow and bottom out at the floor.
func TestGuidedChunksShrink(t *testing.T) {
	const n = 100_000
	src, err := New(Guided, n, 4, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	prev := n + 1
	covered := 0
	for {
		begin, end, ok := src.Next(0)
		if !ok {
			break
		}
		size := end - begin
		if size > prev {
			t.Fatalf("chunk grew from %d to %d", prev, size)
		}
		if end < n && size < defaultGuidedFloor {
			t.Fatalf("mid-range chunk %d below floor %d", size, defaultGuidedFloor)
		}
		prev = size
		covered += size
	}
	if covered != n {
		t.Fatalf("covered %d of %d", covered, n)
	}
}

// TestNewErrors covers the planner's configuration failures.
func TestNewErrors(t *testing.T) {
	cases := []struct {
		name    string
		policy  Policy
		n       int
		workers int
		chunk   int
	}{
		{"UnknownPolicy", "fair", 100, 2, 0},
		{"ZeroN", Static, 0, 2, 0},
		{"ZeroWorkers", Dynamic, 100, 0, 0},
		{"NegativeChunk", Guided, 100, 2, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.policy, tc.n, tc.workers, tc.chunk); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
