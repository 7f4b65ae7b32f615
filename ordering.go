package subdb

import "github.com/hupe1980/subdb/seqdb"

// OrderTracker records whether observed keys are non-decreasing. The zero value is
// ready to use and reports ordered.
type OrderTracker struct {
	prev      seqdb.Key
	seen      bool
	unordered bool
}

// Observe records the next key.
func (t *OrderTracker) Observe(k seqdb.Key) {
	if t.seen && k < t.prev {
		t.unordered = true
	}
	t.prev = k
	t.seen = true
}

// Ordered reports whether every observed key was at least its predecessor.
func (t *OrderTracker) Ordered() bool { return !t.unordered }
