package jinn

import "testing"

func TestSmazRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		`{"_id":"1","name":"apple","color":"red"}`,
		"the quick brown fox jumps over the lazy dog",
		"!@#$%^&*()_+ unicode: héllo wörld 日本語",
		string(make([]byte, 50)),
	}

	for _, s := range cases {
		encoded := smazEncode(s)

		got, ok := smazDecode(encoded)
		if !ok {
			t.Fatalf("smazDecode failed for %q", s)
		}

		if got != s {
			t.Errorf("round trip mismatch: got %q, want %q", got, s)
		}
	}
}

func TestSmazDecodeRejectsTruncatedStream(t *testing.T) {
	t.Parallel()

	_, ok := smazDecode([]byte{smazLiteralRun, 5, 'a', 'b'})
	if ok {
		t.Fatal("expected decode failure for truncated literal run")
	}
}

func TestSmazDecodeRejectsUnknownCode(t *testing.T) {
	t.Parallel()

	if len(smazCodebook) > 253 {
		t.Fatal("codebook grew past the probe code; adjust the test")
	}

	_, ok := smazDecode([]byte{253})
	if ok {
		t.Fatal("expected decode failure for unknown code")
	}
}
