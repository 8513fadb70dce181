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

package histbench

import (
	"sync"
	"sync/atomic"
)

// NumBins is the number of histogram counters: one per byte value.
const NumBins = 256

// cacheLine is the assumed cache-line size. 64 bytes covers current x86 and
// most ARM server parts.
const cacheLine = 64

// binTable is the shared counter table written to during the timed region.
// Implementations differ only in memory layout; the final counts must be
// identical for the same input.
type binTable interface {
	// inc atomically increments the counter for byte value v.
	inc(v uint8)
	// addLocked adds a private per-worker table into the shared one.
	// Callers serialize through the table's own mutex.
	addLocked(local *[NumBins]uint64)
	// snapshot returns a plain copy of the 256 counters. Only called after
	// all workers have joined.
	snapshot() [NumBins]uint64
}

// packedTable keeps all 256 counters contiguous. Adjacent bins share cache
// lines, so concurrent increments on neighboring bins contend even though the
// counters are logically independent.
type packedTable struct {
	bins [NumBins]atomic.Uint64
	mu   sync.Mutex
}

func (t *packedTable) inc(v uint8) { t.bins[v].Add(1) }

func (t *packedTable) addLocked(local *[NumBins]uint64) {
	t.mu.Lock()
	for b, n := range local {
		if n != 0 {
			t.bins[b].Add(n)
		}
	}
	t.mu.Unlock()
}

func (t *packedTable) snapshot() (out [NumBins]uint64) {
	for b := range t.bins {
		out[b] = t.bins[b].Load()
	}
	return out
}

// paddedBin isolates one counter on its own cache line so that increments to
// different bins never invalidate each other's lines.
type paddedBin struct {
	n atomic.Uint64
	_ [cacheLine - 8]byte
}

// paddedTable trades 64x memory for zero cross-bin false sharing. Layout is
// the only difference from packedTable; counts are identical.
type paddedTable struct {
	bins [NumBins]paddedBin
	mu   sync.Mutex
}

func (t *paddedTable) inc(v uint8) { t.bins[v].n.Add(1) }

func (t *paddedTable) addLocked(local *[NumBins]uint64) {
	t.mu.Lock()
	for b, n := range local {
		if n != 0 {
			t.bins[b].n.Add(n)
		}
	}
	t.mu.Unlock()
}

func (t *paddedTable) snapshot() (out [NumBins]uint64) {
	for b := range t.bins {
		out[b] = t.bins[b].n.Load()
	}
	return out
}

func newBinTable(padded bool) binTable {
	if padded {
		return &paddedTable{}
	}
	return &packedTable{}
}
