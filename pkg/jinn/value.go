package jinn

import (
	"fmt"
	"sort"
)

// Record is a JSON document: a tree of map[string]any, []any, string,
// float64, bool, and nil, exactly as produced by [encoding/json] decoding
// into an `any`. Every record must carry a string "_id" field once inserted.
//
// M is a convenience alias for building records and queries inline.
type Record = map[string]any

// M is shorthand for Record, mirroring the literal-friendly map helpers
// common to Go document-store clients.
type M = map[string]any

// cloneValue deep-copies a decoded JSON value so callers (and the cache)
// never observe in-place mutation of a record they didn't ask to change.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}

		return out
	default:
		return val
	}
}

func cloneRecord(r Record) Record {
	return cloneValue(r).(Record)
}

// deepEqual reports whether a and b are equal as JSON values. Numbers
// compare by numeric value regardless of underlying Go numeric type; maps
// compare key-by-key; arrays compare element-by-element and order matters.
func deepEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	af, aIsNum := asFloat(a)
	bf, bIsNum := asFloat(b)

	if aIsNum && bIsNum {
		return af == bf
	}

	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		for k, ev := range av {
			bev, ok := bv[k]
			if !ok || !deepEqual(ev, bev) {
				return false
			}
		}

		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}

		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}

		return true
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

// asFloat reports the numeric value of v and whether v is a number.
// JSON numbers decode to float64; this also accepts int/int64 so values
// built programmatically (e.g. by $inc) compare consistently.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// compareOrdered returns a negative, zero, or positive number reporting
// whether a < b, a == b, or a > b, and true iff a and b are both numbers or
// both strings (the only variants with a defined order). Comparisons
// between incompatible variants return (0, false), matching the permissive
// semantics of the query evaluator in §9 of the design notes.
func compareOrdered(a, b any) (int, bool) {
	af, aIsNum := asFloat(a)
	bf, bIsNum := asFloat(b)

	if aIsNum && bIsNum {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)

	if aIsStr && bIsStr {
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}

	return 0, false
}

// coerceString renders v as a string for regex matching against non-string
// fields (numbers, bools). nil coerces to "".
func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}

		return "false"
	default:
		if f, ok := asFloat(val); ok {
			return formatNumber(f)
		}

		return fmt.Sprintf("%v", val)
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}

	return fmt.Sprintf("%g", f)
}

// sortedKeys returns m's keys in ascending order, used wherever iteration
// order must be deterministic (canonical JSON encoding relies on
// [encoding/json]'s own key sort instead; this helper backs the field walk
// of $push's $sort modifier).
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
