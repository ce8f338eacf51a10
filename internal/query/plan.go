package query

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
)

// Sort orders results by a single field
type Sort struct {
	Field string
	Desc  bool
}

// Plan is a fully resolved search: what to match, how to order it, which
// page to return and which fields to keep.
type Plan struct {
	Filter Filter
	// Leading orderings apply before Sort, e.g. pinned notes first
	Leading    []Sort
	Sort       Sort
	Page       int
	Limit      int
	Projection []string
}

// Paged reports whether the plan selects a single page. Unpaged plans return
// every match.
func (p Plan) Paged() bool {
	return p.Limit > 0
}

// Skip returns the number of matches before the selected page
func (p Plan) Skip() int64 {
	if !p.Paged() || p.Page < 1 {
		return 0
	}
	return int64(p.Page-1) * int64(p.Limit)
}

// Unpaged returns a copy of the plan that selects every match
func (p Plan) Unpaged() Plan {
	p.Page = 0
	p.Limit = 0
	return p
}

// Sorts returns the leading orderings followed by Sort
func (p Plan) Sorts() []Sort {
	out := make([]Sort, 0, len(p.Leading)+1)
	out = append(out, p.Leading...)
	return append(out, p.Sort)
}

// SortBSON renders the sort as a MongoDB sort document
func (p Plan) SortBSON() bson.D {
	doc := bson.D{}
	for _, s := range p.Sorts() {
		if s.Field == "" {
			continue
		}
		dir := 1
		if s.Desc {
			dir = -1
		}
		doc = append(doc, bson.E{Key: s.Field, Value: dir})
	}
	return doc
}

// ProjectionBSON renders the projection, or nil when every field is kept
func (p Plan) ProjectionBSON() bson.D {
	if len(p.Projection) == 0 {
		return nil
	}
	doc := bson.D{}
	for _, field := range p.Projection {
		doc = append(doc, bson.E{Key: field, Value: 1})
	}
	return doc
}

// Planner resolves pagination options and filter clauses into a Plan
type Planner struct {
	compiler     *Compiler
	fields       FieldSet
	searchFields []string
	defaultSort  Sort
	defaultLimit int
}

// NewPlanner creates a planner. Searches that name no columns match
// searchFields; requests without a valid sort use defaultSort.
func NewPlanner(compiler *Compiler, fields FieldSet, searchFields []string, defaultSort Sort, defaultLimit int) *Planner {
	return &Planner{
		compiler:     compiler,
		fields:       fields,
		searchFields: searchFields,
		defaultSort:  defaultSort,
		defaultLimit: defaultLimit,
	}
}

// NewLeadPlanner creates the planner used by lead searches and exports
func NewLeadPlanner(compiler *Compiler) *Planner {
	return NewPlanner(compiler, LeadFields(), DefaultSearchFields, Sort{Field: "createdDate", Desc: true}, 25)
}

// Plan builds the plan for one request. The archived flag and the free-text
// search are applied first so that filter clauses on the same field replace
// them.
func (p *Planner) Plan(spec domain.PaginationSpec, clauses []domain.FilterClause) (Plan, error) {
	plan := Plan{
		Page:  spec.Page,
		Limit: spec.Limit,
		Sort:  p.defaultSort,
	}
	if plan.Page < 1 {
		plan.Page = 1
	}
	if plan.Limit < 1 {
		plan.Limit = p.defaultLimit
	}

	if spec.Archived != nil {
		plan.Filter.Set(Eq("isArchived", *spec.Archived))
	}
	p.search(&plan.Filter, spec)
	if err := p.compiler.CompileInto(&plan.Filter, clauses); err != nil {
		return Plan{}, err
	}

	if spec.SortBy != "" && p.fields.Allows(spec.SortBy) {
		plan.Sort = Sort{Field: spec.SortBy, Desc: spec.SortOrder != domain.SortAsc}
	}

	if cols := p.fields.Keep(spec.ColumnsToDisplay); len(cols) > 0 {
		plan.Projection = withID(cols)
	}
	return plan, nil
}

// Columns returns the requested columns the planner allows, in order
func (p *Planner) Columns(requested []string) []string {
	return p.fields.Keep(requested)
}

// search adds the free-text predicate: a single named field, else an OR over
// the requested columns, else an OR over the default search fields.
func (p *Planner) search(f *Filter, spec domain.PaginationSpec) {
	if spec.Search == "" {
		return
	}
	if spec.SearchBy != "" && p.fields.Allows(spec.SearchBy) {
		f.Set(Contains(spec.SearchBy, spec.Search))
		return
	}
	columns := p.searchFields
	if len(spec.ColumnsToSearch) > 0 {
		columns = p.fields.Keep(spec.ColumnsToSearch)
	}
	if len(columns) == 0 {
		return
	}
	alts := make([]Predicate, 0, len(columns))
	for _, column := range columns {
		alts = append(alts, Contains(column, spec.Search))
	}
	f.AnyOf(alts...)
}

func withID(cols []string) []string {
	for _, c := range cols {
		if c == "_id" {
			return cols
		}
	}
	return append([]string{"_id"}, cols...)
}
