package jinn

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func byQtyAsc(a, b Record) bool {
	av, _ := asFloat(a["qty"])
	bv, _ := asFloat(b["qty"])

	return av < bv
}

func recordsOf(qtys ...float64) []Record {
	out := make([]Record, len(qtys))
	for i, q := range qtys {
		out[i] = Record{"qty": q}
	}

	return out
}

func qtysOf(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i], _ = asFloat(r["qty"])
	}

	return out
}

func TestTopKCollectorLimitOnlyStopsEarly(t *testing.T) {
	t.Parallel()

	c := newTopKCollector(2, nil)

	for i, r := range recordsOf(1, 2, 3) {
		stop := c.Offer(r)
		if i < 1 && stop {
			t.Fatalf("stopped too early at index %d", i)
		}

		if i == 1 && !stop {
			t.Fatal("expected collector to signal stop once limit is reached")
		}
	}

	got := qtysOf(c.Result())
	want := []float64{1, 2}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestTopKCollectorBoundedHeapKeepsBestK(t *testing.T) {
	t.Parallel()

	c := newTopKCollector(3, byQtyAsc)

	for _, r := range recordsOf(5, 1, 9, 2, 8, 0, 7) {
		c.Offer(r)
	}

	got := qtysOf(c.Result())
	want := []float64{0, 1, 2}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("bounded top-k mismatch (-want +got):\n%s", diff)
	}
}

func TestTopKCollectorUnboundedSortIsStable(t *testing.T) {
	t.Parallel()

	c := newTopKCollector(0, byQtyAsc)

	for _, r := range recordsOf(3, 1, 2) {
		c.Offer(r)
	}

	got := qtysOf(c.Result())
	want := []float64{1, 2, 3}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unbounded sort mismatch (-want +got):\n%s", diff)
	}
}

func TestTopKCollectorNoLimitNoSortKeepsScanOrder(t *testing.T) {
	t.Parallel()

	c := newTopKCollector(0, nil)

	for _, r := range recordsOf(3, 1, 2) {
		if c.Offer(r) {
			t.Fatal("unbounded, unsorted collector should never signal stop")
		}
	}

	got := qtysOf(c.Result())
	want := []float64{3, 1, 2}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scan-order mismatch (-want +got):\n%s", diff)
	}
}
