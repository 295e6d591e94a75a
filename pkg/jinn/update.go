package jinn

import (
	"fmt"
	"sort"
	"strings"
)

// Update is a tree of update directives, e.g.:
//
//	jinn.M{"$inc": jinn.M{"views": 1}, "$set": jinn.M{"seen": true}}
//
// A top-level key not starting with "$" is a direct field replacement,
// equivalent to naming that field under $set.
type Update = map[string]any

// applyUpdate returns a new record with every directive in u applied to a
// clone of record. The original record is left untouched.
func applyUpdate(record Record, u Update) (Record, error) {
	out := cloneRecord(record)

	for key, val := range u {
		if !strings.HasPrefix(key, "$") {
			out[key] = cloneValue(val)

			continue
		}

		obj, ok := val.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires an object of field directives", ErrInvalidArgument, key)
		}

		var err error

		switch key {
		case "$set":
			for field, v := range obj {
				out[field] = cloneValue(v)
			}
		case "$unset":
			for field := range obj {
				delete(out, field)
			}
		case "$inc":
			err = applyInc(out, obj)
		case "$min":
			err = applyMinMax(out, obj, true)
		case "$max":
			err = applyMinMax(out, obj, false)
		case "$push":
			err = applyPush(out, obj)
		case "$addToSet":
			err = applyAddToSet(out, obj)
		case "$pop":
			err = applyPop(out, obj)
		case "$pull":
			err = applyPull(out, obj)
		default:
			return nil, fmt.Errorf("%w: unsupported update operator %q", ErrInvalidArgument, key)
		}

		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func applyInc(record Record, obj map[string]any) error {
	for field, delta := range obj {
		d, ok := asFloat(delta)
		if !ok {
			return fmt.Errorf("%w: $inc amount for %q must be numeric", ErrInvalidArgument, field)
		}

		cur, _ := asFloat(record[field])
		record[field] = cur + d
	}

	return nil
}

func applyMinMax(record Record, obj map[string]any, wantMin bool) error {
	for field, candidate := range obj {
		existing, exists := record[field]
		if !exists {
			record[field] = cloneValue(candidate)

			continue
		}

		cmp, ok := compareOrdered(existing, candidate)
		if !ok {
			continue
		}

		if (wantMin && cmp > 0) || (!wantMin && cmp < 0) {
			record[field] = cloneValue(candidate)
		}
	}

	return nil
}

func applyPush(record Record, obj map[string]any) error {
	for field, spec := range obj {
		arr, _ := record[field].([]any)

		if mod, ok := spec.(map[string]any); ok {
			if each, hasEach := mod["$each"].([]any); hasEach {
				for _, v := range each {
					arr = append(arr, cloneValue(v))
				}

				if sortSpec, ok := mod["$sort"]; ok {
					sortAnySlice(arr, sortSpec)
				}

				if sliceSpec, ok := mod["$slice"]; ok {
					n, ok := asFloat(sliceSpec)
					if ok {
						arr = applySlice(arr, int(n))
					}
				}

				record[field] = arr

				continue
			}
		}

		record[field] = append(arr, cloneValue(spec))
	}

	return nil
}

func applyAddToSet(record Record, obj map[string]any) error {
	for field, spec := range obj {
		arr, _ := record[field].([]any)

		var candidates []any
		if mod, ok := spec.(map[string]any); ok {
			if each, hasEach := mod["$each"].([]any); hasEach {
				candidates = each
			} else {
				candidates = []any{spec}
			}
		} else {
			candidates = []any{spec}
		}

		for _, c := range candidates {
			if !containsDeepEqual(arr, c) {
				arr = append(arr, cloneValue(c))
			}
		}

		record[field] = arr
	}

	return nil
}

func applyPop(record Record, obj map[string]any) error {
	for field, dirVal := range obj {
		arr, _ := record[field].([]any)
		if len(arr) == 0 {
			continue
		}

		dir, _ := asFloat(dirVal)

		if dir < 0 {
			record[field] = arr[1:]
		} else {
			record[field] = arr[:len(arr)-1]
		}
	}

	return nil
}

func applyPull(record Record, obj map[string]any) error {
	for field, condition := range obj {
		arr, _ := record[field].([]any)
		if arr == nil {
			continue
		}

		kept := make([]any, 0, len(arr))

		for _, item := range arr {
			if pullMatches(item, condition) {
				continue
			}

			kept = append(kept, item)
		}

		record[field] = kept
	}

	return nil
}

func pullMatches(item, condition any) bool {
	if cond, ok := condition.(map[string]any); ok {
		if obj, ok := item.(map[string]any); ok {
			matched, err := matchQuery(cond, obj)

			return err == nil && matched
		}

		return false
	}

	return deepEqual(item, condition)
}

// applySlice implements $push's $slice: non-negative n keeps the first n
// elements, negative n keeps the last |n| elements.
func applySlice(arr []any, n int) []any {
	if n >= 0 {
		if n < len(arr) {
			return arr[:n]
		}

		return arr
	}

	keep := -n
	if keep >= len(arr) {
		return arr
	}

	return arr[len(arr)-keep:]
}

// sortAnySlice sorts arr in place per $push's $sort modifier: an int (1 or
// -1) sorts primitive elements directly; an object of field->direction
// sorts elements that are themselves objects, by the first field (in
// ascending field-name order) where two elements differ.
func sortAnySlice(arr []any, sortSpec any) {
	if dir, ok := asFloat(sortSpec); ok {
		sort.SliceStable(arr, func(i, j int) bool {
			cmp, ok := compareOrdered(arr[i], arr[j])
			if !ok {
				return false
			}

			if dir < 0 {
				return cmp > 0
			}

			return cmp < 0
		})

		return
	}

	fields, ok := sortSpec.(map[string]any)
	if !ok {
		return
	}

	sort.SliceStable(arr, func(i, j int) bool {
		oi, iok := arr[i].(map[string]any)
		oj, jok := arr[j].(map[string]any)

		if !iok || !jok {
			return false
		}

		for _, field := range sortedKeys(fields) {
			dir, _ := asFloat(fields[field])

			cmp, ok := compareOrdered(oi[field], oj[field])
			if !ok || cmp == 0 {
				continue
			}

			if dir < 0 {
				return cmp > 0
			}

			return cmp < 0
		}

		return false
	})
}
