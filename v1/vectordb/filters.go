package vectordb

import (
	"fmt"
	"time"

	"github.com/Aleph-Alpha/pinecone-client/v1/metadata"
)

// Filter operators understood by the server.
const (
	OperatorEq     = "$eq"
	OperatorNe     = "$ne"
	OperatorGt     = "$gt"
	OperatorGte    = "$gte"
	OperatorLt     = "$lt"
	OperatorLte    = "$lte"
	OperatorIn     = "$in"
	OperatorNin    = "$nin"
	OperatorExists = "$exists"
	OperatorAnd    = "$and"
	OperatorOr     = "$or"
)

// FilterCondition is a single typed predicate on a metadata field.
// Every condition renders to a metadata.Map in the server's filter language.
type FilterCondition interface {
	// Filter returns the condition as a filter document
	Filter() (metadata.Map, error)
}

// FilterSet combines conditions with Must (AND) and Should (OR) clauses.
//
// Example:
//
//	filter, err := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewMatch("genre", "drama")),
//	    vectordb.Should(vectordb.NewMatch("year", 2019), vectordb.NewMatch("year", 2020)),
//	).Build()
type FilterSet struct {
	// Must: All conditions must match (AND)
	Must *ConditionSet
	// Should: At least one condition must match (OR)
	Should *ConditionSet
}

// ConditionSet holds a group of conditions for a single clause.
type ConditionSet struct {
	Conditions []FilterCondition
}

// ── Match Conditions ─────────────────────────────────────────────────────────

// MatchCondition is an exact match ({"field": {"$eq": value}}).
type MatchCondition struct {
	Field string
	Value any
}

func (c *MatchCondition) Filter() (metadata.Map, error) {
	return fieldOp(c.Field, OperatorEq, c.Value)
}

// NotMatchCondition matches records whose field differs from Value ($ne).
type NotMatchCondition struct {
	Field string
	Value any
}

func (c *NotMatchCondition) Filter() (metadata.Map, error) {
	return fieldOp(c.Field, OperatorNe, c.Value)
}

// MatchAnyCondition matches if the field is one of Values ($in).
type MatchAnyCondition struct {
	Field  string
	Values []any
}

func (c *MatchAnyCondition) Filter() (metadata.Map, error) {
	return listOp(c.Field, OperatorIn, c.Values)
}

// MatchExceptCondition matches if the field is none of Values ($nin).
type MatchExceptCondition struct {
	Field  string
	Values []any
}

func (c *MatchExceptCondition) Filter() (metadata.Map, error) {
	return listOp(c.Field, OperatorNin, c.Values)
}

// ExistsCondition matches records that have (or lack) the field ($exists).
type ExistsCondition struct {
	Field  string
	Exists bool
}

func (c *ExistsCondition) Filter() (metadata.Map, error) {
	return fieldOp(c.Field, OperatorExists, c.Exists)
}

// ── Range Types ──────────────────────────────────────────────────────────────

// NumericRange defines bounds for numeric filtering. Nil bounds are omitted.
type NumericRange struct {
	Gt  *float64 // exclusive
	Gte *float64 // inclusive
	Lt  *float64 // exclusive
	Lte *float64 // inclusive
}

// TimeRange defines bounds for time filtering. Metadata has no time type, so
// times are compared as Unix seconds.
type TimeRange struct {
	Gt  *time.Time // after
	Gte *time.Time // at or after
	Lt  *time.Time // before
	Lte *time.Time // at or before
}

// NumericRangeCondition filters by numeric range.
type NumericRangeCondition struct {
	Field string
	Range NumericRange
}

func (c *NumericRangeCondition) Filter() (metadata.Map, error) {
	ops := make(metadata.Map, 4)
	putBound(ops, OperatorGt, c.Range.Gt)
	putBound(ops, OperatorGte, c.Range.Gte)
	putBound(ops, OperatorLt, c.Range.Lt)
	putBound(ops, OperatorLte, c.Range.Lte)
	if len(ops) == 0 {
		return nil, fmt.Errorf("vectordb: range on %q has no bounds", c.Field)
	}
	return metadata.Map{c.Field: metadata.MapValue(ops)}, nil
}

// TimeRangeCondition filters by time range on a field holding Unix seconds.
type TimeRangeCondition struct {
	Field string
	Range TimeRange
}

func (c *TimeRangeCondition) Filter() (metadata.Map, error) {
	nr := NumericRangeCondition{
		Field: c.Field,
		Range: NumericRange{
			Gt:  unixSeconds(c.Range.Gt),
			Gte: unixSeconds(c.Range.Gte),
			Lt:  unixSeconds(c.Range.Lt),
			Lte: unixSeconds(c.Range.Lte),
		},
	}
	return nr.Filter()
}

// ── Building ─────────────────────────────────────────────────────────────────

// Build renders the set as a filter document. A set with both clauses becomes
// {"$and": [<must...>, {"$or": [<should...>]}]}. An empty set yields nil, which
// means "no filter".
func (fs *FilterSet) Build() (metadata.Map, error) {
	if fs == nil {
		return nil, nil
	}
	must, err := fs.Must.render()
	if err != nil {
		return nil, err
	}
	should, err := fs.Should.render()
	if err != nil {
		return nil, err
	}

	if len(should) > 0 {
		or := metadata.Map{OperatorOr: metadata.List(should...)}
		if len(must) == 0 {
			return or, nil
		}
		must = append(must, metadata.MapValue(or))
	}
	switch len(must) {
	case 0:
		return nil, nil
	case 1:
		m, _ := must[0].AsMap()
		return m, nil
	default:
		return metadata.Map{OperatorAnd: metadata.List(must...)}, nil
	}
}

func (cs *ConditionSet) render() ([]metadata.Value, error) {
	if cs == nil {
		return nil, nil
	}
	out := make([]metadata.Value, 0, len(cs.Conditions))
	for i, c := range cs.Conditions {
		m, err := c.Filter()
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		out = append(out, metadata.MapValue(m))
	}
	return out, nil
}

func fieldOp(field, op string, value any) (metadata.Map, error) {
	v, err := metadata.FromAny(value)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", field, err)
	}
	return metadata.Map{field: metadata.MapValue(metadata.Map{op: v})}, nil
}

func putBound(ops metadata.Map, op string, bound *float64) {
	if bound != nil {
		ops[op] = metadata.Number(*bound)
	}
}

func unixSeconds(t *time.Time) *float64 {
	if t == nil {
		return nil
	}
	s := float64(t.Unix())
	return &s
}
