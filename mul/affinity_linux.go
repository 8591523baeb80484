//go:build linux

package mul

import "golang.org/x/sys/unix"

// pinToCPU makes a best-effort attempt to pin the calling goroutine's
// underlying OS thread to cpu. Errors are ignored: affinity is a scheduling
// hint, not a correctness requirement, and a goroutine can migrate off its
// pinned thread the moment it blocks or the runtime preempts it anyway.
func pinToCPU(cpu int) {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	_ = unix.SchedSetaffinity(0, &set)
}
