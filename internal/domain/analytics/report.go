package analytics

import (
	"context"

	"github.com/rs/zerolog/log"
)

// ReportJob emits the daily platform report. The report is an operator
// artifact: it is logged and, when a sink is configured, mailed out.
type ReportJob struct {
	svc  *Service
	sink ReportSink
}

// ReportSink receives the rendered daily report.
type ReportSink interface {
	SendDailyReport(ctx context.Context, overview *PlatformOverview) error
}

func NewReportJob(svc *Service, sink ReportSink) *ReportJob {
	return &ReportJob{svc: svc, sink: sink}
}

// Run computes and emits one report.
func (j *ReportJob) Run(ctx context.Context) error {
	overview, err := j.svc.Overview(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("active_deposits", overview.ActiveDeposits).
		Int("depleted_deposits", overview.DepletedDeposits).
		Str("total_balance", overview.TotalBalance).
		Int("leads_today", overview.LeadsToday).
		Int("pending_leads", overview.PendingLeads).
		Str("revenue_this_month", overview.RevenueThisMonth).
		Int("merchants_low_tier", overview.MerchantsLowTier).
		Msg("daily platform report")

	if j.sink != nil {
		if err := j.sink.SendDailyReport(ctx, overview); err != nil {
			log.Error().Err(err).Msg("failed to deliver daily report")
		}
	}
	return nil
}
