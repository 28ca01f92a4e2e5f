package analytics_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leadflow/leadflow-api/internal/domain/analytics"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeForecastSteadySpend(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// 700 spent over 7 days = 100/day against a 1500 balance.
	f := analytics.ComputeForecast(dec("1500"), dec("700"), now)

	if !f.AvgDailySpend.Equal(dec("100")) {
		t.Fatalf("expected avg daily spend 100, got %s", f.AvgDailySpend)
	}
	if f.DaysRemaining != 15 {
		t.Fatalf("expected 15 days remaining, got %d", f.DaysRemaining)
	}
	if f.ProjectedDepletion != "2026-03-25" {
		t.Fatalf("expected depletion 2026-03-25, got %s", f.ProjectedDepletion)
	}
	if !f.RecommendedRecharge.Equal(dec("3000")) {
		t.Fatalf("expected recommended recharge 3000, got %s", f.RecommendedRecharge)
	}
}

func TestComputeForecastCountsFullBalance(t *testing.T) {
	// 70 over 7 days = 10/day. Runway divides the full 700 balance, not the
	// balance net of reservations, and the recommendation is exactly a month
	// of spend with no floor.
	f := analytics.ComputeForecast(dec("700"), dec("70"), time.Now())

	if f.DaysRemaining != 70 {
		t.Fatalf("expected 70 days remaining, got %d", f.DaysRemaining)
	}
	if !f.RecommendedRecharge.Equal(dec("300")) {
		t.Fatalf("expected recommended recharge 300, got %s", f.RecommendedRecharge)
	}
}

func TestComputeForecastNoSpend(t *testing.T) {
	f := analytics.ComputeForecast(dec("1500"), dec("0"), time.Now())

	if f.DaysRemaining != analytics.DaysUnlimited {
		t.Fatalf("expected unlimited sentinel, got %d", f.DaysRemaining)
	}
	if f.ProjectedDepletion != "" {
		t.Fatalf("expected no depletion date, got %s", f.ProjectedDepletion)
	}
	if !f.RecommendedRecharge.Equal(decimal.Zero) {
		t.Fatalf("expected no recommendation without spend, got %s", f.RecommendedRecharge)
	}
}

func TestComputeForecastExhaustedBalance(t *testing.T) {
	f := analytics.ComputeForecast(dec("0"), dec("700"), time.Now())

	if f.DaysRemaining != 0 {
		t.Fatalf("expected 0 days remaining, got %d", f.DaysRemaining)
	}
}
