package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// BurnRateWindow is the lookback used to estimate spend velocity.
const BurnRateWindow = 7 * 24 * time.Hour

// DaysUnlimited is the days-remaining sentinel for a deposit with no recent
// spend: at the current rate it never runs out.
const DaysUnlimited = -1

// Forecast projects when a deposit runs dry at the current spend rate.
type Forecast struct {
	HasDeposit          bool            `json:"has_deposit"`
	CurrentBalance      decimal.Decimal `json:"current_balance"`
	AvailableBalance    decimal.Decimal `json:"available_balance"`
	WindowSpend         decimal.Decimal `json:"window_spend"`
	AvgDailySpend       decimal.Decimal `json:"avg_daily_spend"`
	DaysRemaining       int             `json:"days_remaining"`
	ProjectedDepletion  string          `json:"projected_depletion,omitempty"`
	RecommendedRecharge decimal.Decimal `json:"recommended_recharge"`
}

var (
	windowDays = decimal.NewFromInt(7)
	monthDays  = decimal.NewFromInt(30)
)

// ComputeForecast derives the projection from the deposit's current balance
// and its deduction volume over the burn-rate window. Runway counts the full
// balance, reservations included, since reserved funds settle back into
// either a deduction or a release. Zero recent spend yields the unlimited
// sentinel, no depletion date and no recharge recommendation.
func ComputeForecast(balance, windowSpend decimal.Decimal, now time.Time) Forecast {
	f := Forecast{
		HasDeposit:          true,
		CurrentBalance:      balance,
		WindowSpend:         windowSpend,
		AvgDailySpend:       decimal.Zero,
		DaysRemaining:       DaysUnlimited,
		RecommendedRecharge: decimal.Zero,
	}

	if windowSpend.Sign() <= 0 {
		return f
	}

	f.AvgDailySpend = windowSpend.Div(windowDays)

	days := balance.Div(f.AvgDailySpend)
	f.DaysRemaining = int(days.IntPart())
	if f.DaysRemaining < 0 {
		f.DaysRemaining = 0
	}
	f.ProjectedDepletion = now.AddDate(0, 0, f.DaysRemaining).Format("2006-01-02")

	// A month of runway at the observed rate.
	f.RecommendedRecharge = f.AvgDailySpend.Mul(monthDays)
	return f
}
