package tsnsim

//
// Monotonic id counters (for frame ids, process names, ...)
//

import (
	"fmt"
	"sync/atomic"
)

// idCounter is a per-instance monotonically increasing counter. Every
// place the source implementation relied on a class-level (i.e. process
// global) auto-increment id becomes one of these, owned by the [Engine]
// or component that needs it, following the teacher's nicID/newNICName
// pattern (originally a single package-level atomic.Int64; here scoped
// per owner so that two [Engine]s never interfere).
type idCounter struct {
	n atomic.Int64
}

// next returns the next value, starting from 1.
func (c *idCounter) next() int64 {
	return c.n.Add(1)
}

// newProcessName constructs a unique, human-readable name for a [Process],
// used only for logging.
func newProcessName(kind string, id int64) string {
	return fmt.Sprintf("%s-%d", kind, id)
}
