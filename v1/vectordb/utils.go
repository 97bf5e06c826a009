package vectordb

import (
	"fmt"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
)

// ── FilterSet Constructors ───────────────────────────────────────────────────

// NewFilterSet creates a FilterSet with the given clauses.
// Use with Must() and Should() helpers.
//
// Example:
//
//	vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMatch("status", "published")),
//	    vectordb.Should(vectordb.NewMatch("tag", "ml"), vectordb.NewMatch("tag", "ai")),
//	)
func NewFilterSet(clauses ...func(*FilterSet)) *FilterSet {
	fs := &FilterSet{}
	for _, clause := range clauses {
		clause(fs)
	}
	return fs
}

// Must creates a Must clause (AND logic) with the given conditions.
func Must(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.Must = &ConditionSet{Conditions: conditions}
	}
}

// Should creates a Should clause (OR logic) with the given conditions.
func Should(conditions ...FilterCondition) func(*FilterSet) {
	return func(fs *FilterSet) {
		fs.Should = &ConditionSet{Conditions: conditions}
	}
}

// ── Condition Constructors ───────────────────────────────────────────────────

// NewMatch creates an equality condition.
func NewMatch(field string, value any) *MatchCondition {
	return &MatchCondition{Field: field, Value: value}
}

// NewNotMatch creates an inequality condition.
func NewNotMatch(field string, value any) *NotMatchCondition {
	return &NotMatchCondition{Field: field, Value: value}
}

// NewMatchAny creates an IN condition. Mixed or non-scalar values are
// reported by Filter.
func NewMatchAny(field string, values ...any) *MatchAnyCondition {
	return &MatchAnyCondition{Field: field, Values: values}
}

// NewMatchExcept creates a NOT IN condition.
func NewMatchExcept(field string, values ...any) *MatchExceptCondition {
	return &MatchExceptCondition{Field: field, Values: values}
}

// NewExists creates a condition on the presence of field.
func NewExists(field string, exists bool) *ExistsCondition {
	return &ExistsCondition{Field: field, Exists: exists}
}

// NewNumericRange creates a numeric range condition.
func NewNumericRange(field string, r NumericRange) *NumericRangeCondition {
	return &NumericRangeCondition{Field: field, Range: r}
}

// NewTimeRange creates a time range condition.
func NewTimeRange(field string, t TimeRange) *TimeRangeCondition {
	return &TimeRangeCondition{Field: field, Range: t}
}

// Float returns a pointer to v, for NumericRange bounds.
func Float(v float64) *float64 {
	return &v
}

// listOp renders an $in or $nin condition. The values must all be strings,
// all numbers or all booleans.
func listOp(field, op string, values []any) (metadata.Map, error) {
	items := make([]metadata.Value, len(values))
	for i, raw := range values {
		v, err := metadata.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: value %d: %w", field, i, err)
		}
		switch v.Kind() {
		case metadata.KindString, metadata.KindNumber, metadata.KindBool:
		default:
			return nil, fmt.Errorf("vectordb: field %q: value %d is a %s, want a string, number or bool", field, i, v.Kind())
		}
		if i > 0 && v.Kind() != items[0].Kind() {
			return nil, fmt.Errorf("vectordb: field %q: mixed types in %s: expected %s but got %s at index %d",
				field, op, items[0].Kind(), v.Kind(), i)
		}
		items[i] = v
	}
	return metadata.Map{field: metadata.MapValue(metadata.Map{op: metadata.List(items...)})}, nil
}
