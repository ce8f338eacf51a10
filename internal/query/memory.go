package query

import (
	"context"
	"sort"
)

// Select returns the documents of items that satisfy the plan, ordered and
// paged the way MongoDB would. Missing values sort before present ones.
// Projection is not applied.
func Select[T Document](items []T, plan Plan) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if plan.Filter.Match(item) {
			out = append(out, item)
		}
	}

	sorts := plan.Sorts()
	sort.SliceStable(out, func(i, j int) bool {
		for _, s := range sorts {
			if s.Field == "" {
				continue
			}
			c := compareField(out[i], out[j], s.Field)
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if !plan.Paged() {
		return out
	}
	skip := int(plan.Skip())
	if skip >= len(out) {
		return []T{}
	}
	out = out[skip:]
	if len(out) > plan.Limit {
		out = out[:plan.Limit]
	}
	return out
}

func compareField(a, b Document, field string) int {
	va, okA := a.FieldValue(field)
	vb, okB := b.FieldValue(field)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}
	c, _ := compare(va, vb)
	return c
}

// Count returns the number of items matching filter
func Count[T Document](items []T, filter Filter) int64 {
	var n int64
	for _, item := range items {
		if filter.Match(item) {
			n++
		}
	}
	return n
}

// SliceSource is a Source over an in-memory slice
type SliceSource[T Document] []T

// Count implements Source
func (s SliceSource[T]) Count(_ context.Context, filter Filter) (int64, error) {
	return Count([]T(s), filter), nil
}

// Find implements Source
func (s SliceSource[T]) Find(_ context.Context, plan Plan) ([]T, error) {
	return Select([]T(s), plan), nil
}
