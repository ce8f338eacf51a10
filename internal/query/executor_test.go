package query_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
)

type memorySource struct {
	leads    []*domain.Lead
	countErr error
	findErr  error

	// barrier forces Count and Find to overlap when set
	barrier *sync.WaitGroup
}

func (s *memorySource) wait() {
	if s.barrier == nil {
		return
	}
	s.barrier.Done()
	s.barrier.Wait()
}

func (s *memorySource) Count(_ context.Context, f query.Filter) (int64, error) {
	s.wait()
	if s.countErr != nil {
		return 0, s.countErr
	}
	var n int64
	for _, l := range s.leads {
		if f.Match(l) {
			n++
		}
	}
	return n, nil
}

func (s *memorySource) Find(_ context.Context, plan query.Plan) ([]*domain.Lead, error) {
	s.wait()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []*domain.Lead
	skip := int(plan.Skip())
	for _, l := range s.leads {
		if !plan.Filter.Match(l) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		if plan.Paged() && len(out) == plan.Limit {
			break
		}
		out = append(out, l)
	}
	return out, nil
}

func leadsNamed(n int) []*domain.Lead {
	leads := make([]*domain.Lead, n)
	for i := range leads {
		leads[i] = &domain.Lead{FullName: string(rune('a' + i)), Status: "New"}
	}
	return leads
}

func TestExecute_PageMeta(t *testing.T) {
	src := &memorySource{leads: leadsNamed(23)}
	plan := query.Plan{Page: 3, Limit: 10}

	page, err := query.Execute[*domain.Lead](context.Background(), src, plan)
	require.NoError(t, err)

	assert.Len(t, page.Data, 3)
	assert.Equal(t, domain.PageMeta{
		Total:           23,
		Page:            3,
		LastPage:        3,
		HasNextPage:     false,
		HasPreviousPage: true,
	}, page.Meta)
}

func TestExecute_RunsCountAndFindConcurrently(t *testing.T) {
	var barrier sync.WaitGroup
	barrier.Add(2)
	src := &memorySource{leads: leadsNamed(5), barrier: &barrier}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := query.Execute[*domain.Lead](context.Background(), src, query.Plan{Page: 1, Limit: 2})
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("count and find did not overlap")
	}
}

func TestExecute_EmptyResult(t *testing.T) {
	page, err := query.Execute[*domain.Lead](context.Background(), &memorySource{}, query.Plan{Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.Meta.LastPage)
	assert.False(t, page.Meta.HasNextPage)
	assert.False(t, page.Meta.HasPreviousPage)
}

func TestExecute_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := query.Execute[*domain.Lead](context.Background(), &memorySource{countErr: boom}, query.Plan{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, boom)

	_, err = query.Execute[*domain.Lead](context.Background(), &memorySource{findErr: boom}, query.Plan{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, boom)
}

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name                 string
		total                int64
		page, limit          int
		lastPage             int
		hasNext, hasPrevious bool
	}{
		{"middle page", 23, 2, 10, 3, true, true},
		{"last page", 23, 3, 10, 3, false, true},
		{"first page", 23, 1, 10, 3, true, false},
		{"exact multiple", 20, 2, 10, 2, false, true},
		{"no results", 0, 1, 10, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := domain.NewPageMeta(tt.total, tt.page, tt.limit)
			assert.Equal(t, tt.lastPage, meta.LastPage)
			assert.Equal(t, tt.hasNext, meta.HasNextPage)
			assert.Equal(t, tt.hasPrevious, meta.HasPreviousPage)
		})
	}
}

func TestMapPage(t *testing.T) {
	page := domain.PageResult[int]{Data: []int{1, 2}, Meta: domain.NewPageMeta(2, 1, 10)}

	out := query.MapPage(page, func(i int) string { return string(rune('a' + i)) })

	assert.Equal(t, []string{"b", "c"}, out.Data)
	assert.Equal(t, page.Meta, out.Meta)
}
