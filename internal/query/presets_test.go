package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/query"
)

func date(y int, m time.Month, d, h, min, s, ms int) time.Time {
	return time.Date(y, m, d, h, min, s, ms*int(time.Millisecond), time.UTC)
}

func TestResolve(t *testing.T) {
	now := date(2024, time.March, 15, 10, 0, 0, 0)
	endOfToday := date(2024, time.March, 15, 23, 59, 59, 999)

	tests := []struct {
		name   string
		preset domain.DatePreset
		start  time.Time
		end    time.Time
	}{
		{"today", domain.PresetToday, date(2024, time.March, 15, 0, 0, 0, 0), endOfToday},
		{"yesterday", domain.PresetYesterday, date(2024, time.March, 14, 0, 0, 0, 0), date(2024, time.March, 14, 23, 59, 59, 999)},
		{"this month", domain.PresetThisMonth, date(2024, time.March, 1, 0, 0, 0, 0), endOfToday},
		{"this year", domain.PresetThisYear, date(2024, time.January, 1, 0, 0, 0, 0), endOfToday},
		{"last 7 days", domain.PresetLast7Days, date(2024, time.March, 8, 0, 0, 0, 0), endOfToday},
		{"last 30 days", domain.PresetLast30Days, date(2024, time.February, 14, 0, 0, 0, 0), endOfToday},
		{"last 90 days", domain.PresetLast90Days, date(2023, time.December, 16, 0, 0, 0, 0), endOfToday},
		{"last 180 days", domain.PresetLast180Days, date(2023, time.September, 17, 0, 0, 0, 0), endOfToday},
		{"last 365 days", domain.PresetLast365Days, date(2023, time.March, 16, 0, 0, 0, 0), endOfToday},
		{"this fiscal year", domain.PresetThisFiscalYear, date(2023, time.April, 1, 0, 0, 0, 0), endOfToday},
		{"last fiscal year", domain.PresetLastFiscalYear, date(2022, time.April, 1, 0, 0, 0, 0), date(2023, time.March, 31, 23, 59, 59, 999)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := query.Resolve(tt.preset, now)
			require.True(t, ok)
			assert.True(t, tt.start.Equal(r.Start), "start: want %s, got %s", tt.start, r.Start)
			assert.True(t, tt.end.Equal(r.End), "end: want %s, got %s", tt.end, r.End)
		})
	}
}

func TestResolve_FiscalYearBoundary(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		start time.Time
	}{
		{"before april", date(2024, time.February, 1, 0, 0, 0, 0), date(2023, time.April, 1, 0, 0, 0, 0)},
		{"after april", date(2024, time.May, 1, 0, 0, 0, 0), date(2024, time.April, 1, 0, 0, 0, 0)},
		{"on april first", date(2024, time.April, 1, 8, 0, 0, 0), date(2024, time.April, 1, 0, 0, 0, 0)},
		{"on march 31", date(2024, time.March, 31, 8, 0, 0, 0), date(2023, time.April, 1, 0, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := query.Resolve(domain.PresetThisFiscalYear, tt.now)
			require.True(t, ok)
			assert.True(t, tt.start.Equal(r.Start), "want %s, got %s", tt.start, r.Start)
		})
	}
}

func TestResolve_LastFiscalYearAfterApril(t *testing.T) {
	r, ok := query.Resolve(domain.PresetLastFiscalYear, date(2024, time.May, 1, 0, 0, 0, 0))
	require.True(t, ok)
	assert.True(t, date(2023, time.April, 1, 0, 0, 0, 0).Equal(r.Start))
	assert.True(t, date(2024, time.March, 31, 23, 59, 59, 999).Equal(r.End))
}

func TestResolve_KeepsLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, time.March, 15, 1, 0, 0, 0, loc)

	r, ok := query.Resolve(domain.PresetToday, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, loc), r.Start)
	assert.Equal(t, loc, r.End.Location())
}

func TestResolve_Unknown(t *testing.T) {
	_, ok := query.Resolve(domain.DatePreset("next_week"), time.Now())
	assert.False(t, ok)
}

func TestRange_Contains(t *testing.T) {
	r := query.Range{Start: date(2024, time.March, 1, 0, 0, 0, 0), End: date(2024, time.March, 31, 0, 0, 0, 0)}

	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.Contains(r.End))
	assert.True(t, r.Contains(date(2024, time.March, 15, 0, 0, 0, 0)))
	assert.False(t, r.Contains(r.End.Add(time.Millisecond)))
	assert.False(t, r.Contains(r.Start.Add(-time.Millisecond)))
}
