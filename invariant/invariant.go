// Package invariant provides contract assertions for the engine.
//
// These are internal consistency checks, not user input validation: a
// violation means the pipeline itself produced an inconsistent state (e.g.
// unsorted output crossing a stage boundary), and panicking is correct
// because continuing would silently break the determinism guarantees in
// spec §8.1. User-facing input errors always go through vmerrors instead.
package invariant

import (
	"fmt"
	"runtime"
	"sort"
)

// SumEquals panics if the sum of values does not equal want. Used to check
// seat/power conservation (spec §8.1: sum of allocated seats == magnitude).
func SumEquals(values []uint32, want uint32, name string) {
	var sum uint64
	for _, v := range values {
		sum += uint64(v)
	}
	if sum != uint64(want) {
		fail("POSTCONDITION", "%s: sum %d does not equal %d", name, sum, want)
	}
}

// SortedStrings panics unless ss is sorted ascending, lexicographically.
// Used at stage boundaries to assert canonical ordering was preserved
// (spec §8.1 Ordering invariant, §5 Ordering guarantees).
func SortedStrings(ss []string, name string) {
	if !sort.StringsAreSorted(ss) {
		fail("INVARIANT", "%s must be in ascending canonical order", name)
	}
}

// fail panics with a formatted message including call-site context.
func fail(kind, format string, args ...interface{}) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]interface{}{kind}, args...)...)
	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}
	panic(msg)
}
