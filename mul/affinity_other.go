//go:build !linux

package mul

// pinToCPU is a no-op on non-Linux platforms: sched_setaffinity has no
// portable equivalent, and the driver treats pinning as purely advisory.
func pinToCPU(cpu int) {}
