package domain

// FilterCondition selects how a filter clause constrains its field
type FilterCondition string

const (
	ConditionEquals      FilterCondition = "equals"
	ConditionNotEquals   FilterCondition = "not_equals"
	ConditionContains    FilterCondition = "contains"
	ConditionGreaterThan FilterCondition = "greater_than"
	ConditionLessThan    FilterCondition = "less_than"
	ConditionBetween     FilterCondition = "between"
	ConditionPreset      FilterCondition = "preset"
	ConditionCustomRange FilterCondition = "custom_range"
)

// DatePreset names a pre-computed date range relative to now
type DatePreset string

const (
	PresetToday          DatePreset = "today"
	PresetYesterday      DatePreset = "yesterday"
	PresetThisMonth      DatePreset = "this_month"
	PresetThisYear       DatePreset = "this_year"
	PresetLast7Days      DatePreset = "last_7_days"
	PresetLast30Days     DatePreset = "last_30_days"
	PresetLast90Days     DatePreset = "last_90_days"
	PresetLast180Days    DatePreset = "last_180_days"
	PresetLast365Days    DatePreset = "last_365_days"
	PresetThisFiscalYear DatePreset = "this_fiscal_year"
	PresetLastFiscalYear DatePreset = "last_fiscal_year"
)

// SortOrder is the direction of a sort
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterClause is one structured predicate of an advanced search request.
// Which operands are read depends on Condition.
type FilterClause struct {
	Field     string          `bson:"field" json:"field" validate:"required"`
	Condition FilterCondition `bson:"condition" json:"condition" validate:"required"`
	Values    []string        `bson:"values,omitempty" json:"values,omitempty"`
	Value     *float64        `bson:"value,omitempty" json:"value,omitempty"`
	Value2    *float64        `bson:"value2,omitempty" json:"value2,omitempty"`
	Preset    DatePreset      `bson:"preset,omitempty" json:"preset,omitempty"`
	StartDate string          `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   string          `bson:"endDate,omitempty" json:"endDate,omitempty"`
}

// PaginationSpec carries paging, sorting, searching and projection options
type PaginationSpec struct {
	Page             int
	Limit            int
	Search           string
	SearchBy         string
	SortBy           string
	SortOrder        SortOrder
	ColumnsToDisplay []string
	ColumnsToSearch  []string
	Archived         *bool
}

// PageMeta describes the position of a page within a result set
type PageMeta struct {
	Total           int64 `json:"total"`
	Page            int   `json:"page"`
	LastPage        int   `json:"lastPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPageMeta computes page metadata. lastPage is ceil(total/limit).
func NewPageMeta(total int64, page, limit int) PageMeta {
	lastPage := 0
	if limit > 0 {
		lastPage = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageMeta{
		Total:           total,
		Page:            page,
		LastPage:        lastPage,
		HasNextPage:     page < lastPage,
		HasPreviousPage: page > 1,
	}
}

// PageResult is one page of results with its metadata
type PageResult[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}
