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

// Package config holds the run configuration of the harness and its
// validation. Validation runs before any dataset allocation or parallel
// work, so a bad tag never produces partial output.
package config

import (
	"fmt"

	"histbench"
	"histbench/internal/harness/dataset"
	"histbench/internal/harness/sched"
)

// Config is the full set of knobs for one run. It is immutable once
// validated; records echo every field in a stable order.
type Config struct {
	Strategy string // atomic | local
	Dist     string // uniform | skewed
	N        int    // dataset size
	Workers  int    // pool size T
	Sched    string // static | dynamic | guided
	Chunk    int    // 0 = policy default granularity
	Padded   bool   // one counter per cache line (atomic strategy only)
	Affinity bool   // pin worker t to core t mod NumCPU
}

// Validate checks every field. The padding flag is accepted for any
// strategy but only honored for atomic; that is an echo concern, not an
// error.
func (c Config) Validate() error {
	switch histbench.Strategy(c.Strategy) {
	case histbench.StrategyAtomic, histbench.StrategyLocal:
	default:
		return fmt.Errorf("unknown strategy: %q (use atomic|local)", c.Strategy)
	}
	switch c.Dist {
	case dataset.Uniform, dataset.Skewed:
	default:
		return fmt.Errorf("unknown dist: %q (use uniform|skewed)", c.Dist)
	}
	if c.N <= 0 {
		return fmt.Errorf("N must be positive, got %d", c.N)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("T must be positive, got %d", c.Workers)
	}
	switch sched.Policy(c.Sched) {
	case sched.Static, sched.Dynamic, sched.Guided:
	default:
		return fmt.Errorf("unknown sched policy: %q (use static|dynamic|guided)", c.Sched)
	}
	if c.Chunk < 0 {
		return fmt.Errorf("chunk must be non-negative, got %d", c.Chunk)
	}
	return nil
}

// PaddingHonored reports whether the padded layout is actually used: the
// flag is meaningful only for the shared-atomic strategy.
func (c Config) PaddingHonored() bool {
	return c.Padded && histbench.Strategy(c.Strategy) == histbench.StrategyAtomic
}

// Fields renders every knob as key=value pairs in the stable record order.
func (c Config) Fields() string {
	return fmt.Sprintf("strategy=%s,dist=%s,N=%d,T=%d,sched=%s,chunk=%d,pad=%d,affinity=%d",
		c.Strategy, c.Dist, c.N, c.Workers, c.Sched, c.Chunk, b2i(c.Padded), b2i(c.Affinity))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
