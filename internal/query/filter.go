package query

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Op is the operator of a single-field predicate
type Op string

const (
	OpEq       Op = "eq"
	OpIn       Op = "in"
	OpNotIn    Op = "nin"
	OpContains Op = "contains"
	OpGt       Op = "gt"
	OpLt       Op = "lt"
	OpRange    Op = "range"
)

// Predicate constrains one field. Which operands are used depends on Op:
// Values for eq/in/nin, Text for contains, Lower for gt, Upper for lt and
// both bounds (inclusive) for range.
type Predicate struct {
	Field  string
	Op     Op
	Values []any
	Text   string
	Lower  any
	Upper  any
}

// Eq matches documents whose field equals v
func Eq(field string, v any) Predicate {
	return Predicate{Field: field, Op: OpEq, Values: []any{v}}
}

// In matches documents whose field equals one of values
func In(field string, values ...any) Predicate {
	return Predicate{Field: field, Op: OpIn, Values: values}
}

// NotIn matches documents whose field equals none of values
func NotIn(field string, values ...any) Predicate {
	return Predicate{Field: field, Op: OpNotIn, Values: values}
}

// Contains matches documents whose field contains text, ignoring case.
// Text is matched literally, never as a pattern.
func Contains(field, text string) Predicate {
	return Predicate{Field: field, Op: OpContains, Text: text}
}

// Gt matches documents whose field is strictly greater than v
func Gt(field string, v any) Predicate {
	return Predicate{Field: field, Op: OpGt, Lower: v}
}

// Lt matches documents whose field is strictly less than v
func Lt(field string, v any) Predicate {
	return Predicate{Field: field, Op: OpLt, Upper: v}
}

// Between matches documents whose field lies in [lower, upper]
func Between(field string, lower, upper any) Predicate {
	return Predicate{Field: field, Op: OpRange, Lower: lower, Upper: upper}
}

// Filter is an ordered conjunction of single-field predicates, optionally
// ANDed with one disjunction. Each field holds at most one predicate.
type Filter struct {
	preds []Predicate
	anyOf []Predicate
}

// Set adds p, replacing any predicate already held for the same field. A
// replaced predicate keeps its original position.
func (f *Filter) Set(p Predicate) {
	for i := range f.preds {
		if f.preds[i].Field == p.Field {
			f.preds[i] = p
			return
		}
	}
	f.preds = append(f.preds, p)
}

// AnyOf replaces the disjunction of the filter
func (f *Filter) AnyOf(preds ...Predicate) {
	f.anyOf = preds
}

// Predicates returns a copy of the conjunction in order
func (f Filter) Predicates() []Predicate {
	out := make([]Predicate, len(f.preds))
	copy(out, f.preds)
	return out
}

// Alternatives returns a copy of the disjunction
func (f Filter) Alternatives() []Predicate {
	out := make([]Predicate, len(f.anyOf))
	copy(out, f.anyOf)
	return out
}

// Get returns the predicate held for field
func (f Filter) Get(field string) (Predicate, bool) {
	for _, p := range f.preds {
		if p.Field == field {
			return p, true
		}
	}
	return Predicate{}, false
}

// IsEmpty reports whether the filter matches every document
func (f Filter) IsEmpty() bool {
	return len(f.preds) == 0 && len(f.anyOf) == 0
}

// BSON renders the filter as a MongoDB query document
func (f Filter) BSON() bson.D {
	doc := bson.D{}
	for _, p := range f.preds {
		doc = append(doc, p.element())
	}
	if len(f.anyOf) > 0 {
		alts := bson.A{}
		for _, p := range f.anyOf {
			alts = append(alts, bson.D{p.element()})
		}
		doc = append(doc, bson.E{Key: "$or", Value: alts})
	}
	return doc
}

func (p Predicate) element() bson.E {
	var v any
	switch p.Op {
	case OpEq:
		v = first(p.Values)
	case OpIn:
		v = bson.D{{Key: "$in", Value: bson.A(p.Values)}}
	case OpNotIn:
		v = bson.D{{Key: "$nin", Value: bson.A(p.Values)}}
	case OpContains:
		v = bson.Regex{Pattern: regexp.QuoteMeta(p.Text), Options: "i"}
	case OpGt:
		v = bson.D{{Key: "$gt", Value: p.Lower}}
	case OpLt:
		v = bson.D{{Key: "$lt", Value: p.Upper}}
	case OpRange:
		v = bson.D{{Key: "$gte", Value: p.Lower}, {Key: "$lte", Value: p.Upper}}
	}
	return bson.E{Key: p.Field, Value: v}
}

func first(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[0]
}

// Document exposes stored field values for in-memory matching
type Document interface {
	FieldValue(name string) (any, bool)
}

// Match evaluates the filter against a document with the same semantics the
// BSON rendering has in MongoDB.
func (f Filter) Match(doc Document) bool {
	for _, p := range f.preds {
		if !p.Match(doc) {
			return false
		}
	}
	if len(f.anyOf) == 0 {
		return true
	}
	for _, p := range f.anyOf {
		if p.Match(doc) {
			return true
		}
	}
	return false
}

// Match evaluates a single predicate against a document
func (p Predicate) Match(doc Document) bool {
	v, ok := doc.FieldValue(p.Field)
	switch p.Op {
	case OpEq:
		return ok && equal(v, first(p.Values))
	case OpIn:
		return ok && containsValue(p.Values, v)
	case OpNotIn:
		return !ok || !containsValue(p.Values, v)
	case OpContains:
		s, isString := v.(string)
		return ok && isString && strings.Contains(strings.ToLower(s), strings.ToLower(p.Text))
	case OpGt:
		c, comparable := compare(v, p.Lower)
		return ok && comparable && c > 0
	case OpLt:
		c, comparable := compare(v, p.Upper)
		return ok && comparable && c < 0
	case OpRange:
		lo, okLo := compare(v, p.Lower)
		hi, okHi := compare(v, p.Upper)
		return ok && okLo && okHi && lo >= 0 && hi <= 0
	}
	return false
}

func containsValue(values []any, v any) bool {
	for _, candidate := range values {
		if equal(v, candidate) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	c, ok := compare(a, b)
	return ok && c == 0
}

// compare orders two values of the same kind. Numbers compare across Go
// numeric types. The second return value is false when the kinds differ.
func compare(a, b any) (int, bool) {
	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		return cmpOrdered(x, y), true
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	case bson.ObjectID:
		y, ok := b.(bson.ObjectID)
		if !ok {
			return 0, false
		}
		return strings.Compare(x.Hex(), y.Hex()), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cmpOrdered(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
