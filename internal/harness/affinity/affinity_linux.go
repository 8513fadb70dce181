//go:build linux

package affinity

import "golang.org/x/sys/unix"

const supported = true

// pin restricts the calling thread (tid 0) to a single-core CPU set.
func pin(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}
