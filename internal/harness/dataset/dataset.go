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

// Package dataset produces the synthetic byte streams binned by the harness.
// Generation is deterministic (fixed seeds, no external entropy) so that two
// runs with the same distribution and size see identical inputs, and it
// happens once per run, outside the timed region.
package dataset

import (
	"fmt"
)

// Distribution tags accepted by Generate.
const (
	Uniform = "uniform"
	Skewed  = "skewed"
)

const (
	seedUniform uint32 = 123456789
	seedSkewed  uint32 = 987654321

	// hotBins is the size of the skewed distribution's hot range:
	// the first 20% of the 256 bins.
	hotBins = 51

	// hotThreshold cuts the LCG output space at ~80%: draws below it land
	// in the hot range.
	hotThreshold = uint32(0.8 * 4294967295.0)
)

// lcgNext advances the 32-bit linear congruential generator shared by both
// distributions.
func lcgNext(x uint32) uint32 {
	return x*1664525 + 1013904223
}

// Generate produces exactly n byte values drawn from the named distribution.
// An unrecognized distribution tag is a configuration error; a failed
// allocation for the backing array is reported as an error rather than a
// panic so the caller can map it to the resource exit code.
func Generate(dist string, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("dataset size must be positive, got %d", n)
	}
	switch dist {
	case Uniform, Skewed:
	default:
		return nil, fmt.Errorf("unknown dist: %q (use uniform|skewed)", dist)
	}

	data, err := alloc(n)
	if err != nil {
		return nil, err
	}

	switch dist {
	case Uniform:
		genUniform(data)
	case Skewed:
		genSkewed(data)
	}
	return data, nil
}

// genUniform fills data with the low 8 bits of the LCG stream, one advance
// per element. Each of the 256 values is equally likely.
func genUniform(data []byte) {
	x := seedUniform
	for i := range data {
		x = lcgNext(x)
		data[i] = byte(x)
	}
}

// genSkewed fills data so that ~80% of elements land in bins [0, hotBins)
// and the rest in [hotBins, 255]. Cold draws use the masked low byte with a
// floor adjustment to keep them out of the hot range. The stream is
// independent from the uniform generator (different seed).
func genSkewed(data []byte) {
	x := seedSkewed
	for i := range data {
		x = lcgNext(x)
		if x < hotThreshold {
			data[i] = byte(x % hotBins)
		} else {
			v := byte(x)
			if v < hotBins {
				v += hotBins
			}
			data[i] = v
		}
	}
}

// alloc makes the backing array, converting an out-of-range or failed
// allocation panic into an error.
func alloc(n int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("dataset allocation of %d bytes failed: %v", n, r)
		}
	}()
	return make([]byte, n), nil
}
