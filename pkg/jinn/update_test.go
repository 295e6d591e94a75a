package jinn

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustApplyUpdate(t *testing.T, record Record, u Update) Record {
	t.Helper()

	out, err := applyUpdate(record, u)
	if err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}

	return out
}

func TestApplyUpdateDirectFieldReplacement(t *testing.T) {
	t.Parallel()

	record := Record{"name": "a", "qty": 1.0}
	out := mustApplyUpdate(t, record, Update{"name": "b"})

	if out["name"] != "b" {
		t.Errorf("expected direct field replacement, got %v", out["name"])
	}

	if record["name"] != "a" {
		t.Error("applyUpdate must not mutate the original record")
	}
}

func TestApplyUpdateSetUnset(t *testing.T) {
	t.Parallel()

	record := Record{"name": "a", "color": "red"}
	out := mustApplyUpdate(t, record, Update{
		"$set":   Update{"name": "b"},
		"$unset": Update{"color": ""},
	})

	if out["name"] != "b" {
		t.Errorf("expected $set to apply, got %v", out["name"])
	}

	if _, exists := out["color"]; exists {
		t.Error("expected $unset to remove the field")
	}
}

func TestApplyUpdateInc(t *testing.T) {
	t.Parallel()

	record := Record{"value": 1.0}
	out := mustApplyUpdate(t, record, Update{"$inc": Update{"value": -1.0, "missing": 5.0}})

	if out["value"] != 0.0 {
		t.Errorf("expected value to be 0, got %v", out["value"])
	}

	if out["missing"] != 5.0 {
		t.Errorf("expected $inc on missing field to seed it, got %v", out["missing"])
	}
}

func TestApplyUpdateMinMax(t *testing.T) {
	t.Parallel()

	record := Record{"low": 5.0, "high": 5.0}

	out := mustApplyUpdate(t, record, Update{"$min": Update{"low": 3.0}, "$max": Update{"high": 3.0}})

	if out["low"] != 3.0 {
		t.Errorf("expected $min to lower the value, got %v", out["low"])
	}

	if out["high"] != 5.0 {
		t.Errorf("expected $max to keep the larger existing value, got %v", out["high"])
	}
}

func TestApplyUpdatePushEachSortSlice(t *testing.T) {
	t.Parallel()

	record := Record{"scores": []any{3.0}}

	out := mustApplyUpdate(t, record, Update{
		"$push": Update{
			"scores": map[string]any{
				"$each":  []any{1.0, 2.0},
				"$sort":  -1.0,
				"$slice": 2.0,
			},
		},
	})

	want := []any{3.0, 2.0}
	if diff := cmp.Diff(want, out["scores"]); diff != "" {
		t.Errorf("$push result mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyUpdatePushPlainAppend(t *testing.T) {
	t.Parallel()

	record := Record{"tags": []any{"a"}}
	out := mustApplyUpdate(t, record, Update{"$push": Update{"tags": "b"}})

	want := []any{"a", "b"}
	if diff := cmp.Diff(want, out["tags"]); diff != "" {
		t.Errorf("$push result mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyUpdateAddToSet(t *testing.T) {
	t.Parallel()

	record := Record{"tags": []any{"a", "b"}}

	out := mustApplyUpdate(t, record, Update{"$addToSet": Update{"tags": map[string]any{"$each": []any{"b", "c"}}}})

	want := []any{"a", "b", "c"}
	if diff := cmp.Diff(want, out["tags"]); diff != "" {
		t.Errorf("$addToSet result mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyUpdatePop(t *testing.T) {
	t.Parallel()

	record := Record{"arr": []any{1.0, 2.0, 3.0}}

	outLast := mustApplyUpdate(t, record, Update{"$pop": Update{"arr": 1.0}})
	if diff := cmp.Diff([]any{1.0, 2.0}, outLast["arr"]); diff != "" {
		t.Errorf("$pop (last) mismatch (-want +got):\n%s", diff)
	}

	outFirst := mustApplyUpdate(t, record, Update{"$pop": Update{"arr": -1.0}})
	if diff := cmp.Diff([]any{2.0, 3.0}, outFirst["arr"]); diff != "" {
		t.Errorf("$pop (first) mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyUpdatePullLiteralAndQuery(t *testing.T) {
	t.Parallel()

	record := Record{
		"arr":     []any{1.0, 2.0, 3.0},
		"objects": []any{map[string]any{"qty": 1.0}, map[string]any{"qty": 5.0}},
	}

	out := mustApplyUpdate(t, record, Update{"$pull": Update{"arr": 2.0}})
	if diff := cmp.Diff([]any{1.0, 3.0}, out["arr"]); diff != "" {
		t.Errorf("$pull literal mismatch (-want +got):\n%s", diff)
	}

	out2 := mustApplyUpdate(t, record, Update{"$pull": Update{"objects": map[string]any{"qty": map[string]any{"$gt": 2.0}}}})

	objs, _ := out2["objects"].([]any)
	if len(objs) != 1 {
		t.Fatalf("expected one object to survive $pull, got %d", len(objs))
	}
}

func TestApplyUpdateUnsupportedOperator(t *testing.T) {
	t.Parallel()

	_, err := applyUpdate(Record{}, Update{"$bogus": Update{"a": 1.0}})
	if err == nil {
		t.Fatal("expected error for unsupported update operator")
	}
}
