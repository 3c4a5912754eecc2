package observ

import (
	"fmt"
	"sync/atomic"
)

// Counters tally what a generate run did with each fixture file.
type Counters struct {
	Built   atomic.Int64
	Written atomic.Int64
	Skipped atomic.Int64 // unchanged according to the cache
	Failed  atomic.Int64
	Bytes   atomic.Int64
}

// String formats the counters for the end-of-run summary line.
func (c *Counters) String() string {
	return fmt.Sprintf("%d built, %d written, %d unchanged, %d failed (%d bytes)",
		c.Built.Load(), c.Written.Load(), c.Skipped.Load(), c.Failed.Load(), c.Bytes.Load())
}
