package jinn

import "testing"

func TestDeepEqual(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal numbers cross-type", float64(3), int(3), true},
		{"unequal numbers", float64(3), float64(4), false},
		{"equal strings", "x", "x", true},
		{"string vs number", "3", float64(3), false},
		{"nested maps equal", map[string]any{"a": []any{1.0, 2.0}}, map[string]any{"a": []any{1.0, 2.0}}, true},
		{"nested maps different length", map[string]any{"a": 1.0}, map[string]any{"a": 1.0, "b": 2.0}, false},
		{"arrays order matters", []any{1.0, 2.0}, []any{2.0, 1.0}, false},
		{"both nil", nil, nil, true},
		{"one nil", nil, "x", false},
	}

	for _, tc := range cases {
		if got := deepEqual(tc.a, tc.b); got != tc.want {
			t.Errorf("%s: deepEqual(%v, %v) = %v, want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompareOrdered(t *testing.T) {
	t.Parallel()

	if cmp, ok := compareOrdered(1.0, 2.0); !ok || cmp >= 0 {
		t.Errorf("expected 1 < 2, got cmp=%d ok=%v", cmp, ok)
	}

	if cmp, ok := compareOrdered("a", "b"); !ok || cmp >= 0 {
		t.Errorf("expected a < b, got cmp=%d ok=%v", cmp, ok)
	}

	if _, ok := compareOrdered("a", 1.0); ok {
		t.Error("expected incompatible types to be unorderable")
	}
}

func TestCloneRecordIsDeep(t *testing.T) {
	t.Parallel()

	original := Record{"nested": map[string]any{"x": 1.0}, "arr": []any{1.0, 2.0}}
	clone := cloneRecord(original)

	clone["nested"].(map[string]any)["x"] = 2.0
	clone["arr"].([]any)[0] = 99.0

	if original["nested"].(map[string]any)["x"] != 1.0 {
		t.Error("mutating clone's nested map affected original")
	}

	if original["arr"].([]any)[0] != 1.0 {
		t.Error("mutating clone's array affected original")
	}
}

func TestCoerceString(t *testing.T) {
	t.Parallel()

	cases := map[any]string{
		nil:      "",
		"x":      "x",
		true:     "true",
		false:    "false",
		float64(3): "3",
		float64(3.5): "3.5",
	}

	for in, want := range cases {
		if got := coerceString(in); got != want {
			t.Errorf("coerceString(%v) = %q, want %q", in, got, want)
		}
	}
}
