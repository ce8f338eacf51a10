package jobs

import (
	"context"

	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/metrics"
)

// LeadStatsJobName is the name of the lead gauge refresh job
const LeadStatsJobName = "lead_stats"

// LeadCounter reports lead totals. The lead service implements it.
type LeadCounter interface {
	Counts(ctx context.Context) (total, archived int64, err error)
}

// LeadStatsJob refreshes the leads_total and leads_archived gauges
type LeadStatsJob struct {
	leads   LeadCounter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewLeadStatsJob(leads LeadCounter, m *metrics.Metrics, logger *zap.Logger) *LeadStatsJob {
	return &LeadStatsJob{
		leads:   leads,
		metrics: m,
		logger:  logger,
	}
}

func (j *LeadStatsJob) Name() string {
	return LeadStatsJobName
}

// Run counts the leads and publishes the result. The gauges keep their last
// value when counting fails.
func (j *LeadStatsJob) Run(ctx context.Context) error {
	total, archived, err := j.leads.Counts(ctx)
	if err != nil {
		return err
	}
	j.metrics.SetLeadCounts(total, archived)
	j.logger.Debug("lead stats refreshed",
		zap.Int64("total", total),
		zap.Int64("archived", archived))
	return nil
}
