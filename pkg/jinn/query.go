package jinn

import (
	"fmt"
	"regexp"
)

// Query is a tree of field constraints and logical operators. Construct one
// with [M] literals, e.g.:
//
//	jinn.M{"$or": []any{
//	    jinn.M{"color": "red"},
//	    jinn.M{"color": "yellow"},
//	}}
//
// jinn evaluates queries; it does not parse a query language — callers (or
// a DSL layer built on top) are responsible for building the tree.
type Query = map[string]any

var leafOperators = map[string]bool{
	"$lt": true, "$lte": true, "$gt": true, "$gte": true,
	"$in": true, "$nin": true, "$ne": true, "$exists": true, "$regex": true,
}

// matchQuery reports whether record satisfies every top-level key of q.
// Top-level keys are implicitly ANDed together.
func matchQuery(q Query, record Record) (bool, error) {
	for key, val := range q {
		ok, err := matchTopLevel(key, val, record)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func matchTopLevel(key string, val any, record Record) (bool, error) {
	switch key {
	case "$or":
		subs, ok := val.([]any)
		if !ok {
			return false, fmt.Errorf("%w: $or requires an array of sub-queries", ErrInvalidArgument)
		}

		for _, s := range subs {
			sq, ok := s.(Query)
			if !ok {
				return false, fmt.Errorf("%w: $or sub-query must be a map", ErrInvalidArgument)
			}

			matched, err := matchQuery(sq, record)
			if err != nil {
				return false, err
			}

			if matched {
				return true, nil
			}
		}

		return false, nil

	case "$and":
		subs, ok := val.([]any)
		if !ok {
			return false, fmt.Errorf("%w: $and requires an array of sub-queries", ErrInvalidArgument)
		}

		for _, s := range subs {
			sq, ok := s.(Query)
			if !ok {
				return false, fmt.Errorf("%w: $and sub-query must be a map", ErrInvalidArgument)
			}

			matched, err := matchQuery(sq, record)
			if err != nil {
				return false, err
			}

			if !matched {
				return false, nil
			}
		}

		return true, nil

	case "$not":
		sq, ok := val.(Query)
		if !ok {
			return false, fmt.Errorf("%w: $not requires a sub-query map", ErrInvalidArgument)
		}

		matched, err := matchQuery(sq, record)
		if err != nil {
			return false, err
		}

		return !matched, nil

	default:
		return matchField(key, val, record)
	}
}

// matchField implements the per-field rules from the operator evaluator,
// checked in order: regex, then operator-object, then literal equality.
func matchField(field string, condition any, record Record) (bool, error) {
	fieldValue, exists := fieldLookup(record, field)

	if re, ok := condition.(*regexp.Regexp); ok {
		return re.MatchString(coerceString(fieldValue)), nil
	}

	if obj, ok := condition.(map[string]any); ok {
		matchedAnyOperator := false

		for opKey, opArg := range obj {
			if !leafOperators[opKey] {
				continue
			}

			matchedAnyOperator = true

			ok, err := applyLeafOperator(opKey, opArg, fieldValue, exists)
			if err != nil {
				return false, err
			}

			if !ok {
				return false, nil
			}
		}

		if matchedAnyOperator {
			return true, nil
		}

		// No recognized operator key: fall back to deep-equality between
		// the whole object and the field value.
		return exists && deepEqual(condition, fieldValue), nil
	}

	return exists && deepEqual(condition, fieldValue), nil
}

// fieldLookup returns record[field] and whether it is present. A missing
// field reports (nil, false), mirroring JS `undefined`.
func fieldLookup(record Record, field string) (any, bool) {
	v, ok := record[field]

	return v, ok
}

func applyLeafOperator(op string, arg any, fieldValue any, exists bool) (bool, error) {
	switch op {
	case "$lt", "$lte", "$gt", "$gte":
		cmp, ok := compareOrdered(fieldValue, arg)
		if !ok {
			return false, nil
		}

		switch op {
		case "$lt":
			return cmp < 0, nil
		case "$lte":
			return cmp <= 0, nil
		case "$gt":
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}

	case "$in":
		items, ok := arg.([]any)
		if !ok {
			return false, fmt.Errorf("%w: $in requires an array", ErrInvalidArgument)
		}

		return exists && containsDeepEqual(items, fieldValue), nil

	case "$nin":
		items, ok := arg.([]any)
		if !ok {
			return false, fmt.Errorf("%w: $nin requires an array", ErrInvalidArgument)
		}

		return !(exists && containsDeepEqual(items, fieldValue)), nil

	case "$ne":
		return !(exists && deepEqual(fieldValue, arg)), nil

	case "$exists":
		want, ok := arg.(bool)
		if !ok {
			return false, fmt.Errorf("%w: $exists requires a bool", ErrInvalidArgument)
		}
		// Preserved verbatim from the reference semantics: this tests
		// (fieldValue === undefined) === want, so {$exists:true} matches
		// records where the field is *missing*. See design notes.
		return (!exists) == want, nil

	case "$regex":
		pattern, re, err := asRegexp(arg)
		if err != nil {
			return false, err
		}

		_ = pattern

		return re.MatchString(coerceString(fieldValue)), nil

	default:
		return false, nil
	}
}

func asRegexp(v any) (string, *regexp.Regexp, error) {
	switch val := v.(type) {
	case *regexp.Regexp:
		return val.String(), val, nil
	case string:
		re, err := regexp.Compile(val)
		if err != nil {
			return "", nil, fmt.Errorf("%w: invalid $regex pattern: %v", ErrInvalidArgument, err)
		}

		return val, re, nil
	default:
		return "", nil, fmt.Errorf("%w: $regex requires a string or *regexp.Regexp", ErrInvalidArgument)
	}
}

func containsDeepEqual(items []any, v any) bool {
	for _, item := range items {
		if deepEqual(item, v) {
			return true
		}
	}

	return false
}
