package jinn

import "container/heap"

// topKCollector accumulates matched records during a scan and keeps only
// the best limit of them according to less, without ever holding more than
// limit records in memory at once. If less is nil, records are kept in
// scan order and limit simply caps the count. If limit is zero, every
// record is kept.
type topKCollector struct {
	limit int
	less  func(a, b Record) bool

	unbounded []Record
	bounded   *worstFirstHeap
}

func newTopKCollector(limit int, less func(a, b Record) bool) *topKCollector {
	c := &topKCollector{limit: limit, less: less}

	if limit > 0 && less != nil {
		c.bounded = &worstFirstHeap{less: less}
	}

	return c
}

// Offer considers a newly matched record. It reports whether the caller
// may stop scanning (limit reached and no sort requested).
func (c *topKCollector) Offer(r Record) (stop bool) {
	if c.limit > 0 && c.less == nil {
		if len(c.unbounded) >= c.limit {
			return true
		}

		c.unbounded = append(c.unbounded, r)

		return len(c.unbounded) >= c.limit
	}

	if c.bounded != nil {
		if c.bounded.Len() < c.limit {
			heap.Push(c.bounded, r)
		} else if c.less(r, c.bounded.records[0]) {
			c.bounded.records[0] = r
			heap.Fix(c.bounded, 0)
		}

		return false
	}

	c.unbounded = append(c.unbounded, r)

	return false
}

// Result returns the collected records in final sorted order (ascending by
// less, when a comparator was given).
func (c *topKCollector) Result() []Record {
	if c.bounded != nil {
		n := c.bounded.Len()
		out := make([]Record, n)

		for i := n - 1; i >= 0; i-- {
			out[i] = heap.Pop(c.bounded).(Record)
		}

		return out
	}

	if c.less != nil {
		out := append([]Record(nil), c.unbounded...)
		insertionSortRecords(out, c.less)

		return out
	}

	return c.unbounded
}

// worstFirstHeap is a max-heap under less (i.e. its root is the current
// worst-ranked kept record), so the collector can evict it in O(log k) when
// a better record arrives.
type worstFirstHeap struct {
	records []Record
	less    func(a, b Record) bool
}

func (h *worstFirstHeap) Len() int { return len(h.records) }
func (h *worstFirstHeap) Less(i, j int) bool {
	// Inverted: the "greatest" under less() (i.e. the worst match) floats
	// to the root.
	return h.less(h.records[j], h.records[i])
}
func (h *worstFirstHeap) Swap(i, j int) { h.records[i], h.records[j] = h.records[j], h.records[i] }

func (h *worstFirstHeap) Push(x any) {
	h.records = append(h.records, x.(Record))
}

func (h *worstFirstHeap) Pop() any {
	n := len(h.records)
	v := h.records[n-1]
	h.records = h.records[:n-1]

	return v
}

// insertionSortRecords sorts small-to-medium result sets stably. Find's
// unbounded path (Sort set, Limit zero) rarely needs to hold more than a
// page of matches, so a simple stable sort keeps this file's only
// dependency on container/heap confined to the bounded path.
func insertionSortRecords(records []Record, less func(a, b Record) bool) {
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && less(records[j], records[j-1]); j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}
