package jinn

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := Header{Version: fileVersion1, Compressed: true, BlockSize: 256, Blocks: 42}

	buf := EncodeHeader(h)
	if len(buf) != HeaderSize {
		t.Fatalf("expected %d byte header, got %d", HeaderSize, len(buf))
	}

	got, err := ReadHeader(buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}

	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestReadHeaderBadMagic(t *testing.T) {
	t.Parallel()

	buf := EncodeHeader(Header{Version: fileVersion1, BlockSize: 64, Blocks: 1})
	buf[0] = 'x'

	_, err := ReadHeader(buf)
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestReadHeaderUnsupportedVersion(t *testing.T) {
	t.Parallel()

	buf := EncodeHeader(Header{Version: fileVersion1, BlockSize: 64, Blocks: 1})
	buf[offVersion] = 99

	_, err := ReadHeader(buf)
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
}
