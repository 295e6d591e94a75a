package jinn

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeBlockRoundTrip(t *testing.T) {
	t.Parallel()

	for _, compressed := range []bool{false, true} {
		db := &DB{compressed: compressed, blockSize: 256}

		record := Record{"_id": "1", "name": "apple", "color": "red", "qty": float64(3)}

		buf, err := db.encodeBlock(record)
		if err != nil {
			t.Fatalf("encodeBlock: %v", err)
		}

		if uint64(len(buf)) != db.blockSize {
			t.Fatalf("expected %d byte block, got %d", db.blockSize, len(buf))
		}

		got, err := db.decodeBlock(buf)
		if err != nil {
			t.Fatalf("decodeBlock: %v", err)
		}

		if diff := cmp.Diff(record, got); diff != "" {
			t.Errorf("record mismatch (compressed=%v) (-want +got):\n%s", compressed, diff)
		}
	}
}

func TestEncodeBlockOversizeFails(t *testing.T) {
	t.Parallel()

	db := &DB{blockSize: 4}

	_, err := db.encodeBlock(Record{"_id": "1", "data": "this record is far too long for 4 bytes"})
	if err == nil {
		t.Fatal("expected error for oversize record")
	}
}

func TestDecodeBlockCorrupt(t *testing.T) {
	t.Parallel()

	db := &DB{blockSize: 16}

	_, err := db.decodeBlock([]byte("no braces here  "))
	if err == nil {
		t.Fatal("expected ErrCorruptBlock")
	}
}

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := map[int]uint64{0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 100: 128}

	for in, want := range cases {
		if got := nextPow2(in); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}
