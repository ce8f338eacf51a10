package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
)

// ErrInvalidField is wrapped by every FieldError
var ErrInvalidField = errors.New("invalid field")

// FieldError names a field outside the allow-list
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("Invalid field: %s", e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// Compiler turns filter clauses into a Filter
type Compiler struct {
	fields     FieldSet
	dateFields FieldSet
	kinds      FieldKinds
	now        func() time.Time
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithClock sets the clock date presets are resolved against
func WithClock(now func() time.Time) CompilerOption {
	return func(c *Compiler) {
		c.now = now
	}
}

// WithFieldKinds sets the stored types operands are converted to. Without
// it every operand is compared as sent.
func WithFieldKinds(kinds FieldKinds) CompilerOption {
	return func(c *Compiler) {
		c.kinds = kinds
	}
}

// NewLeadCompiler creates the compiler for lead filters
func NewLeadCompiler(opts ...CompilerOption) *Compiler {
	return NewCompiler(LeadFields(), LeadDateFields(), append([]CompilerOption{WithFieldKinds(LeadFieldKinds())}, opts...)...)
}

// NewCompiler creates a compiler over the given allow-lists
func NewCompiler(fields, dateFields FieldSet, opts ...CompilerOption) *Compiler {
	c := &Compiler{
		fields:     fields,
		dateFields: dateFields,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile builds a new Filter from clauses
func (c *Compiler) Compile(clauses []domain.FilterClause) (Filter, error) {
	var f Filter
	if err := c.CompileInto(&f, clauses); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// CompileInto adds one predicate per usable clause to f. A clause on the same
// field as an earlier predicate replaces it. Operands are converted to the
// stored type of the field. Clauses missing the operands their condition
// needs, or with operands that do not convert, are skipped. A clause naming
// a field outside the allow-list fails the whole compilation with a
// *FieldError.
func (c *Compiler) CompileInto(f *Filter, clauses []domain.FilterClause) error {
	now := c.now()
	for _, clause := range clauses {
		if !c.fields.Allows(clause.Field) {
			return &FieldError{Field: clause.Field}
		}
		if p, ok := c.predicate(clause, now); ok {
			f.Set(p)
		}
	}
	return nil
}

func (c *Compiler) predicate(clause domain.FilterClause, now time.Time) (Predicate, bool) {
	field := clause.Field

	switch clause.Condition {
	case domain.ConditionEquals, domain.ConditionNotEquals:
		values, ok := c.setOperands(clause)
		if !ok {
			return Predicate{}, false
		}
		if clause.Condition == domain.ConditionEquals {
			return In(field, values...), true
		}
		return NotIn(field, values...), true

	case domain.ConditionContains:
		if len(clause.Values) == 0 || clause.Values[0] == "" {
			return Predicate{}, false
		}
		return Contains(field, clause.Values[0]), true

	case domain.ConditionGreaterThan:
		v, ok := c.bound(field, clause.Value)
		if !ok {
			return Predicate{}, false
		}
		return Gt(field, v), true

	case domain.ConditionLessThan:
		v, ok := c.bound(field, clause.Value)
		if !ok {
			return Predicate{}, false
		}
		return Lt(field, v), true

	case domain.ConditionBetween:
		lower, ok := c.bound(field, clause.Value)
		if !ok {
			return Predicate{}, false
		}
		upper, ok := c.bound(field, clause.Value2)
		if !ok {
			return Predicate{}, false
		}
		return Between(field, lower, upper), true

	case domain.ConditionPreset:
		if clause.Preset == "" || !c.dateFields.Allows(field) {
			return Predicate{}, false
		}
		r, ok := Resolve(clause.Preset, now)
		if !ok {
			return Predicate{}, false
		}
		return Between(field, r.Start, r.End), true

	case domain.ConditionCustomRange:
		if clause.StartDate == "" || clause.EndDate == "" || !c.dateFields.Allows(field) {
			return Predicate{}, false
		}
		start, err := ParseDate(clause.StartDate, now.Location())
		if err != nil {
			return Predicate{}, false
		}
		end, err := ParseDate(clause.EndDate, now.Location())
		if err != nil {
			return Predicate{}, false
		}
		return Between(field, start, end), true
	}
	return Predicate{}, false
}

// setOperands returns the operand set of an equals or not_equals clause.
// Values wins when non-empty; otherwise a non-zero Value is used.
func (c *Compiler) setOperands(clause domain.FilterClause) ([]any, bool) {
	if len(clause.Values) > 0 {
		values := make([]any, len(clause.Values))
		for i, raw := range clause.Values {
			v, ok := c.convert(clause.Field, raw)
			if !ok {
				return nil, false
			}
			values[i] = v
		}
		return values, true
	}
	if clause.Value != nil && *clause.Value != 0 {
		v, ok := c.number(clause.Field, *clause.Value)
		if !ok {
			return nil, false
		}
		return []any{v}, true
	}
	return nil, false
}

// convert turns a string operand into the stored type of field
func (c *Compiler) convert(field, raw string) (any, bool) {
	switch c.kinds.Of(field) {
	case KindObjectID:
		id, err := bson.ObjectIDFromHex(strings.TrimSpace(raw))
		return id, err == nil
	case KindNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		return n, err == nil && !math.IsNaN(n) && !math.IsInf(n, 0)
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		return b, err == nil
	case KindTime:
		t, err := ParseDate(strings.TrimSpace(raw), c.now().Location())
		return t, err == nil
	}
	return raw, true
}

// number turns a numeric operand into the stored type of field. Times are
// read as Unix milliseconds.
func (c *Compiler) number(field string, v float64) (any, bool) {
	if c.kinds.untyped() {
		return v, true
	}
	switch c.kinds.Of(field) {
	case KindNumber:
		return v, true
	case KindTime:
		return time.UnixMilli(int64(v)).UTC(), true
	case KindString:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return nil, false
}

// bound converts the operand of an ordering condition. Only number and time
// fields are ordered.
func (c *Compiler) bound(field string, v *float64) (any, bool) {
	if v == nil {
		return nil, false
	}
	if c.kinds.untyped() {
		return *v, true
	}
	switch c.kinds.Of(field) {
	case KindNumber, KindTime:
		return c.number(field, *v)
	}
	return nil, false
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseDate parses an ISO 8601 date or date-time. Bare dates are midnight
// UTC; date-times without an offset are read in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
