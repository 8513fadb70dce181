// Package affinity binds worker threads to logical cores.
//
// Pinning is advisory performance control, never a correctness requirement.
// On Linux the binding is honored through sched_setaffinity on the calling
// thread; on every other platform Pin is a no-op and Supported reports false.
// The harness still echoes the affinity flag as configured so sweep results
// stay comparable across platforms; the run log notes when pinning degraded.
package affinity

import "runtime"

// Core maps worker t to its target logical core in close/contiguous order.
func Core(worker int) int {
	return worker % runtime.NumCPU()
}

// Pin binds the calling goroutine's OS thread to the given logical core.
// The caller must have locked the goroutine to its thread first. On
// platforms without the capability Pin silently succeeds without pinning.
func Pin(core int) error {
	return pin(core)
}

// Supported reports whether Pin actually binds threads on this platform.
func Supported() bool {
	return supported
}
