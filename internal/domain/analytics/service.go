package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/leadflow/leadflow-api/internal/domain/deposit"
	"github.com/leadflow/leadflow-api/internal/domain/lead"
)

// MerchantKPIs is the merchant-facing performance summary.
type MerchantKPIs struct {
	Deposits      *deposit.Stats `json:"deposits"`
	Leads         *lead.Stats    `json:"leads"`
	AvgLeadCost   string         `json:"avg_lead_cost"`
	SpendLast30d  string         `json:"spend_last_30d"`
	LeadsLast30d  int            `json:"leads_last_30d"`
}

// PlatformOverview is the operator-facing totals snapshot.
type PlatformOverview struct {
	ActiveDeposits     int    `json:"active_deposits"`
	DepletedDeposits   int    `json:"depleted_deposits"`
	TotalBalance       string `json:"total_balance"`
	TotalReserved      string `json:"total_reserved"`
	ActiveCampaigns    int    `json:"active_campaigns"`
	PausedCampaigns    int    `json:"paused_campaigns"`
	LeadsToday         int    `json:"leads_today"`
	PendingLeads       int    `json:"pending_leads"`
	RevenueThisMonth   string `json:"revenue_this_month"`
	MerchantsLowTier   int    `json:"merchants_low_tier"`
}

// Service computes reporting views. Reads only; never mutates balances.
type Service struct {
	db       *sqlx.DB
	deposits *deposit.Service
	depRepo  *deposit.Repository
	leads    *lead.Service
}

func NewService(db *sqlx.DB, deposits *deposit.Service, depRepo *deposit.Repository, leads *lead.Service) *Service {
	return &Service{db: db, deposits: deposits, depRepo: depRepo, leads: leads}
}

// Forecast projects the merchant's active deposit runway.
func (s *Service) Forecast(ctx context.Context, merchantID uuid.UUID, campaignID *uuid.UUID) (*Forecast, error) {
	d, err := s.deposits.GetActive(ctx, merchantID, campaignID)
	if err != nil {
		if errors.Is(err, deposit.ErrDepositNotFound) {
			return &Forecast{HasDeposit: false, DaysRemaining: 0}, nil
		}
		return nil, err
	}

	now := time.Now()
	windowSpend, err := s.depRepo.SumDeductionsSince(ctx, d.ID, now.Add(-BurnRateWindow))
	if err != nil {
		return nil, err
	}

	f := ComputeForecast(d.CurrentBalance, windowSpend, now)
	f.AvailableBalance = d.AvailableBalance()
	return &f, nil
}

// KPIs summarizes the merchant's funnel and spend.
func (s *Service) KPIs(ctx context.Context, merchantID uuid.UUID) (*MerchantKPIs, error) {
	depStats, err := s.deposits.Stats(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	leadStats, err := s.leads.Stats(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	kpis := &MerchantKPIs{
		Deposits:    depStats,
		Leads:       leadStats,
		AvgLeadCost: "0",
	}

	settled := leadStats.Validated + leadStats.Converted
	if settled > 0 {
		kpis.AvgLeadCost = leadStats.TotalCommission.Div(decimal.NewFromInt(int64(settled))).Round(2).String()
	}

	var row struct {
		Spend decimal.NullDecimal `db:"spend"`
		Leads int                 `db:"leads"`
	}
	err = s.db.GetContext(ctx, &row, `
		SELECT
			COALESCE(SUM(ABS(t.amount)), 0) AS spend,
			COUNT(DISTINCT l.id) AS leads
		FROM deposit_transactions t
		LEFT JOIN leads l ON l.merchant_id = t.merchant_id AND l.created_at >= now() - interval '30 days'
		WHERE t.merchant_id = $1
		  AND t.transaction_type = 'deduction'
		  AND t.created_at >= now() - interval '30 days'
	`, merchantID)
	if err != nil {
		return nil, err
	}

	kpis.SpendLast30d = "0"
	if row.Spend.Valid {
		kpis.SpendLast30d = row.Spend.Decimal.String()
	}
	kpis.LeadsLast30d = row.Leads
	return kpis, nil
}

// Overview computes the operator totals snapshot.
func (s *Service) Overview(ctx context.Context) (*PlatformOverview, error) {
	var row struct {
		ActiveDeposits   int                 `db:"active_deposits"`
		DepletedDeposits int                 `db:"depleted_deposits"`
		TotalBalance     decimal.NullDecimal `db:"total_balance"`
		TotalReserved    decimal.NullDecimal `db:"total_reserved"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'active') AS active_deposits,
			COUNT(*) FILTER (WHERE status = 'depleted') AS depleted_deposits,
			COALESCE(SUM(current_balance) FILTER (WHERE status = 'active'), 0) AS total_balance,
			COALESCE(SUM(reserved_amount) FILTER (WHERE status = 'active'), 0) AS total_reserved
		FROM company_deposits
	`)
	if err != nil {
		return nil, err
	}

	overview := &PlatformOverview{
		ActiveDeposits:   row.ActiveDeposits,
		DepletedDeposits: row.DepletedDeposits,
		TotalBalance:     decimal.Zero.String(),
		TotalReserved:    decimal.Zero.String(),
	}
	if row.TotalBalance.Valid {
		overview.TotalBalance = row.TotalBalance.Decimal.String()
	}
	if row.TotalReserved.Valid {
		overview.TotalReserved = row.TotalReserved.Decimal.String()
	}

	var campaigns struct {
		Active int `db:"active"`
		Paused int `db:"paused"`
	}
	err = s.db.GetContext(ctx, &campaigns, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'paused') AS paused
		FROM campaigns
	`)
	if err != nil {
		return nil, err
	}
	overview.ActiveCampaigns = campaigns.Active
	overview.PausedCampaigns = campaigns.Paused

	var leads struct {
		Today   int `db:"today"`
		Pending int `db:"pending"`
	}
	err = s.db.GetContext(ctx, &leads, `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())) AS today,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending
		FROM leads
	`)
	if err != nil {
		return nil, err
	}
	overview.LeadsToday = leads.Today
	overview.PendingLeads = leads.Pending

	var revenue decimal.NullDecimal
	err = s.db.GetContext(ctx, &revenue, `
		SELECT COALESCE(SUM(ABS(amount)), 0)
		FROM deposit_transactions
		WHERE transaction_type = 'deduction'
		  AND created_at >= date_trunc('month', now())
	`)
	if err != nil {
		return nil, err
	}
	overview.RevenueThisMonth = decimal.Zero.String()
	if revenue.Valid {
		overview.RevenueThisMonth = revenue.Decimal.String()
	}

	// Active deposits at or below 20% of their initial amount.
	err = s.db.GetContext(ctx, &overview.MerchantsLowTier, `
		SELECT COUNT(*)
		FROM company_deposits
		WHERE status = 'active'
		  AND initial_amount > 0
		  AND current_balance <= initial_amount * 0.2
	`)
	if err != nil {
		return nil, err
	}

	return overview, nil
}
