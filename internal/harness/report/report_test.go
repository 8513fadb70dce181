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

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"histbench"
	"histbench/internal/harness/config"
)

func testConfig() config.Config {
	return config.Config{
		Strategy: "atomic",
		Dist:     "uniform",
		N:        10_000_000,
		Workers:  8,
		Sched:    "static",
	}
}

// TestRecordFormat pins the exact record lines so the consolidated stream
// stays parseable across versions.
func TestRecordFormat(t *testing.T) {
	cfg := testConfig()

	got := TimeRecord(cfg, 123456*time.Microsecond)
	want := "hist,go,strategy=atomic,dist=uniform,N=10000000,T=8,sched=static,chunk=0,pad=0,affinity=0,time,0.123456,sec"
	if got != want {
		t.Fatalf("TimeRecord = %q, want %q", got, want)
	}

	if got := CorrectRecord(cfg, true); !strings.HasSuffix(got, ",correct,1,boolean") {
		t.Fatalf("CorrectRecord(true) = %q", got)
	}
	if got := CorrectRecord(cfg, false); !strings.HasSuffix(got, ",correct,0,boolean") {
		t.Fatalf("CorrectRecord(false) = %q", got)
	}
}

// TestVerify checks the exact-sum criterion: integers, no tolerance.
func TestVerify(t *testing.T) {
	var r histbench.Result
	r.Counts[0] = 999
	r.Counts[255] = 1
	if !Verify(&r, 1000) {
		t.Fatal("sum == n should verify")
	}
	if Verify(&r, 1001) {
		t.Fatal("sum != n must fail verification")
	}
}

// TestSinkWriter emits records to an in-memory stream.
func TestSinkWriter(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf)
	cfg := testConfig()

	if err := s.Emit(TimeRecord(cfg, time.Second)); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := s.Emit(CorrectRecord(cfg, true)); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "hist,go,") {
			t.Fatalf("record missing family tag: %q", l)
		}
	}
}

// TestFileSinkAppends verifies that consecutive sinks accumulate records in
// one file, the way a sweep consolidates many runs.
func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	cfg := testConfig()

	for i := 0; i < 2; i++ {
		s, err := NewFileSink(path)
		if err != nil {
			t.Fatalf("NewFileSink: %v", err)
		}
		if err := s.Emit(CorrectRecord(cfg, true)); err != nil {
			t.Fatalf("Emit: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Fatalf("file has %d records, want 2", got)
	}
}
