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

// Command histbench runs one parallel histogram benchmark: it generates a
// deterministic byte dataset, bins it across a fixed pool of workers under
// the configured concurrency-control knobs, verifies the result, and appends
// two records (time, correctness) to the results stream.
//
// Typical invocation:
//
//	histbench -strategy atomic -dist uniform -n 10000000 -t 8
//
// Diagnostics go to stderr via slog; only result records reach the stream
// (stdout, or the -out file when sweeping many runs into one dataset).
//
// Exit codes: 0 ran and verified correct, 1 configuration error,
// 2 resource (allocation) error, 3 ran but verification failed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"

	"github.com/lmittmann/tint"

	"histbench"
	"histbench/internal/harness/affinity"
	"histbench/internal/harness/config"
	"histbench/internal/harness/dataset"
	"histbench/internal/harness/report"
	"histbench/internal/harness/sched"
	"histbench/internal/harness/telemetry/runmetrics"
)

const (
	exitOK        = 0
	exitConfig    = 1
	exitResource  = 2
	exitIncorrect = 3
)

func init() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		}),
	))
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		strategy = flag.String("strategy", "", "aggregation strategy: atomic|local")
		dist     = flag.String("dist", "", "dataset distribution: uniform|skewed")
		n        = flag.Int("n", 0, "dataset size (number of byte elements)")
		workers  = flag.Int("t", 0, "worker count")
		schedPol = flag.String("sched", "static", "scheduling policy: static|dynamic|guided")
		chunk    = flag.Int("chunk", 0, "chunk size; 0 = policy default granularity")
		pad      = flag.Bool("pad", false, "pad each bin counter to its own cache line (atomic strategy only)")
		pin      = flag.Bool("affinity", false, "pin worker t to logical core t mod NumCPU")

		out         = flag.String("out", "", "append records to this file instead of stdout")
		metricsAddr = flag.String("metrics_addr", "", "serve Prometheus /metrics on this address (e.g., :9090); empty to disable")
		pprofOn     = flag.Bool("pprof", false, "enable pprof on localhost:6060")
	)
	flag.Parse()

	// strategy, dist, n and t are required; the sweep scripts must never
	// rely on implicit defaults for the axes under comparison.
	if missing := missingFlags("strategy", "dist", "n", "t"); len(missing) > 0 {
		slog.Error("missing required flags", "flags", missing)
		flag.Usage()
		return exitConfig
	}

	cfg := config.Config{
		Strategy: *strategy,
		Dist:     *dist,
		N:        *n,
		Workers:  *workers,
		Sched:    *schedPol,
		Chunk:    *chunk,
		Padded:   *pad,
		Affinity: *pin,
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		return exitConfig
	}

	if *pprofOn {
		go func() { _ = http.ListenAndServe("localhost:6060", nil) }()
	}
	if *metricsAddr != "" {
		errc := runmetrics.Serve(*metricsAddr)
		go func() {
			if err := <-errc; err != nil {
				slog.Warn("metrics endpoint failed", "addr", *metricsAddr, "err", err)
			}
		}()
	}

	sink, err := newSink(*out)
	if err != nil {
		slog.Error("cannot open results stream", "path", *out, "err", err)
		return exitResource
	}
	defer sink.Close()

	// Dataset generation is untimed and happens exactly once per run.
	slog.Info("generating dataset", "dist", cfg.Dist, "n", cfg.N)
	data, err := dataset.Generate(cfg.Dist, cfg.N)
	if err != nil {
		slog.Error("dataset generation failed", "err", err)
		return exitResource
	}

	source, err := sched.New(sched.Policy(cfg.Sched), cfg.N, cfg.Workers, cfg.Chunk)
	if err != nil {
		slog.Error("invalid scheduling configuration", "err", err)
		return exitConfig
	}

	var pinFn func(worker int) error
	if cfg.Affinity {
		if !affinity.Supported() {
			// Still reported as affinity=1 in the records; only the
			// actual binding degrades.
			slog.Warn("core pinning not supported on this platform; workers run unpinned", "os", runtime.GOOS)
		}
		pinFn = func(worker int) error {
			return affinity.Pin(affinity.Core(worker))
		}
	}

	result, err := histbench.Run(data, histbench.Options{
		Workers:  cfg.Workers,
		Strategy: histbench.Strategy(cfg.Strategy),
		Padded:   cfg.PaddingHonored(),
		Source:   source,
		Pin:      pinFn,
	})
	if err != nil {
		slog.Error("run failed", "err", err)
		return exitConfig
	}

	correct := report.Verify(result, cfg.N)
	runmetrics.ObserveRun(cfg.N, result.Elapsed, correct)

	// A failed verification still emits both records so the anomaly shows
	// up in the aggregated results instead of silently disappearing.
	if err := sink.Emit(report.TimeRecord(cfg, result.Elapsed)); err != nil {
		slog.Error("emit failed", "err", err)
		return exitResource
	}
	if err := sink.Emit(report.CorrectRecord(cfg, correct)); err != nil {
		slog.Error("emit failed", "err", err)
		return exitResource
	}
	if err := sink.Close(); err != nil {
		slog.Error("flush failed", "err", err)
		return exitResource
	}

	throughput := float64(cfg.N) / 1e6 / result.Elapsed.Seconds()
	slog.Info("run complete",
		"strategy", cfg.Strategy, "dist", cfg.Dist, "n", cfg.N, "t", cfg.Workers,
		"elapsed", result.Elapsed, "melem_per_sec", fmt.Sprintf("%.2f", throughput),
		"correct", correct)

	if !correct {
		slog.Error("verification failed", "total", result.Total(), "want", cfg.N)
		return exitIncorrect
	}
	return exitOK
}

// newSink opens the results stream: stdout by default, or an append-mode
// file so many sweep runs consolidate into one dataset.
func newSink(path string) (*report.Sink, error) {
	if path == "" {
		return report.NewSink(os.Stdout), nil
	}
	return report.NewFileSink(path)
}

// missingFlags returns the names in required that were not set explicitly.
func missingFlags(required ...string) []string {
	seen := make(map[string]bool, len(required))
	flag.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	var missing []string
	for _, name := range required {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
