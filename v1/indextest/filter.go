package indextest

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
)

// Match reports whether md satisfies filter. A nil or empty filter matches
// every record. Supported operators: $eq $ne $gt $gte $lt $lte $in $nin
// $exists $and $or; a bare value is an implicit $eq. When the stored field is
// a list, $eq and $in match if any element matches and $ne and $nin match if
// no element does.
func Match(filter, md metadata.Map) (bool, error) {
	for _, key := range filter.Keys() {
		ok, err := matchKey(key, filter[key], md)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchKey(key string, cond metadata.Value, md metadata.Map) (bool, error) {
	switch key {
	case "$and", "$or":
		clauses, ok := cond.AsList()
		if !ok || len(clauses) == 0 {
			return false, fmt.Errorf("%w: %s needs a non-empty list", ErrBadFilter, key)
		}
		for _, c := range clauses {
			sub, ok := c.AsMap()
			if !ok {
				return false, fmt.Errorf("%w: %s clauses must be objects", ErrBadFilter, key)
			}
			hit, err := Match(sub, md)
			if err != nil {
				return false, err
			}
			if key == "$or" && hit {
				return true, nil
			}
			if key == "$and" && !hit {
				return false, nil
			}
		}
		return key == "$and", nil
	}
	if strings.HasPrefix(key, "$") {
		return false, fmt.Errorf("%w: unknown operator %s", ErrBadFilter, key)
	}

	stored, present := md[key]
	ops, isOps := cond.AsMap()
	if !isOps {
		return present && equalAny(stored, cond), nil
	}
	for _, op := range ops.Keys() {
		ok, err := matchOp(op, ops[op], stored, present)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", key, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchOp(op string, operand, stored metadata.Value, present bool) (bool, error) {
	switch op {
	case "$exists":
		want, ok := operand.AsBool()
		if !ok {
			return false, fmt.Errorf("%w: $exists needs a boolean", ErrBadFilter)
		}
		return present == want, nil
	case "$eq":
		return present && equalAny(stored, operand), nil
	case "$ne":
		return !present || !equalAny(stored, operand), nil
	case "$in", "$nin":
		set, ok := operand.AsList()
		if !ok {
			return false, fmt.Errorf("%w: %s needs a list", ErrBadFilter, op)
		}
		hit := false
		for _, v := range set {
			if present && equalAny(stored, v) {
				hit = true
				break
			}
		}
		if op == "$in" {
			return hit, nil
		}
		return !hit, nil
	case "$gt", "$gte", "$lt", "$lte":
		bound, ok := operand.AsNumber()
		if !ok {
			return false, fmt.Errorf("%w: %s needs a number", ErrBadFilter, op)
		}
		n, ok := stored.AsNumber()
		if !present || !ok {
			return false, nil
		}
		switch op {
		case "$gt":
			return n > bound, nil
		case "$gte":
			return n >= bound, nil
		case "$lt":
			return n < bound, nil
		default:
			return n <= bound, nil
		}
	}
	return false, fmt.Errorf("%w: unknown operator %s", ErrBadFilter, op)
}

// equalAny compares a stored value with a filter operand, looking inside
// stored lists.
func equalAny(stored, operand metadata.Value) bool {
	if stored.Equal(operand) {
		return true
	}
	items, ok := stored.AsList()
	if !ok {
		return false
	}
	for _, item := range items {
		if item.Equal(operand) {
			return true
		}
	}
	return false
}
