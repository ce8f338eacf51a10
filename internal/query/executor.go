package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
)

// Source is a collection the executor can count and page through
type Source[T any] interface {
	Count(ctx context.Context, filter Filter) (int64, error)
	Find(ctx context.Context, plan Plan) ([]T, error)
}

// Execute runs the count and the page fetch of a plan concurrently and
// assembles the page. Either failing fails the whole call.
func Execute[T any](ctx context.Context, src Source[T], plan Plan) (domain.PageResult[T], error) {
	var (
		total int64
		items []T
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := src.Count(gctx, plan.Filter)
		if err != nil {
			return fmt.Errorf("failed to count documents: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		found, err := src.Find(gctx, plan)
		if err != nil {
			return fmt.Errorf("failed to find documents: %w", err)
		}
		items = found
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.PageResult[T]{}, err
	}

	if items == nil {
		items = []T{}
	}
	return domain.PageResult[T]{
		Data: items,
		Meta: domain.NewPageMeta(total, plan.Page, plan.Limit),
	}, nil
}

// MapPage converts the items of a page, keeping its metadata
func MapPage[T, U any](page domain.PageResult[T], fn func(T) U) domain.PageResult[U] {
	out := make([]U, len(page.Data))
	for i, item := range page.Data {
		out[i] = fn(item)
	}
	return domain.PageResult[U]{Data: out, Meta: page.Meta}
}
