package deposit_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/leadflow/leadflow-api/internal/domain/deposit"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestClassifyBands(t *testing.T) {
	initial := dec("1000")
	threshold := dec("0")

	cases := []struct {
		name    string
		balance string
		want    deposit.Tier
	}{
		{"zero balance", "0", deposit.TierDepleted},
		{"negative balance", "-5", deposit.TierDepleted},
		{"below ten percent", "95", deposit.TierCritical},
		{"exactly ten percent", "100", deposit.TierCritical},
		{"below twenty percent", "150", deposit.TierWarning},
		{"exactly twenty percent", "200", deposit.TierWarning},
		{"below fifty percent", "450", deposit.TierAttention},
		{"exactly fifty percent", "500", deposit.TierAttention},
		{"above fifty percent", "600", deposit.TierHealthy},
		{"full balance", "1000", deposit.TierHealthy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := deposit.Classify(dec(tc.balance), initial, threshold)
			if got != tc.want {
				t.Fatalf("Classify(%s, 1000) = %s, want %s", tc.balance, got, tc.want)
			}
		})
	}
}

func TestClassifyMostSevereWins(t *testing.T) {
	// 50 of 1000 satisfies both the 10% and 20% bands; the most severe
	// applies.
	got := deposit.Classify(dec("50"), dec("1000"), dec("0"))
	if got != deposit.TierCritical {
		t.Fatalf("expected CRITICAL, got %s", got)
	}
}

func TestClassifyThresholdFloor(t *testing.T) {
	// 600 of 1000 is healthy by percentage, but a merchant floor of 700
	// promotes it to ATTENTION.
	got := deposit.Classify(dec("600"), dec("1000"), dec("700"))
	if got != deposit.TierAttention {
		t.Fatalf("expected ATTENTION, got %s", got)
	}

	// The floor never demotes a more severe percentage band.
	got = deposit.Classify(dec("50"), dec("1000"), dec("700"))
	if got != deposit.TierCritical {
		t.Fatalf("expected CRITICAL, got %s", got)
	}

	// A floor below the balance changes nothing.
	got = deposit.Classify(dec("600"), dec("1000"), dec("100"))
	if got != deposit.TierHealthy {
		t.Fatalf("expected HEALTHY, got %s", got)
	}
}

func TestClassifyZeroInitialAmount(t *testing.T) {
	// Degenerate deposit: no percentage bands, only the zero check.
	if got := deposit.Classify(dec("0"), dec("0"), dec("0")); got != deposit.TierDepleted {
		t.Fatalf("expected DEPLETED, got %s", got)
	}
	if got := deposit.Classify(dec("10"), dec("0"), dec("0")); got != deposit.TierHealthy {
		t.Fatalf("expected HEALTHY, got %s", got)
	}
}

func TestChannelsForEscalation(t *testing.T) {
	cases := []struct {
		tier deposit.Tier
		want []deposit.Channel
	}{
		{deposit.TierAttention, []deposit.Channel{deposit.ChannelEmail, deposit.ChannelDashboard}},
		{deposit.TierWarning, []deposit.Channel{deposit.ChannelEmail, deposit.ChannelSMS, deposit.ChannelDashboard}},
		{deposit.TierCritical, []deposit.Channel{deposit.ChannelEmail, deposit.ChannelSMS, deposit.ChannelPush, deposit.ChannelDashboard}},
		{deposit.TierDepleted, []deposit.Channel{deposit.ChannelEmail, deposit.ChannelSMS, deposit.ChannelPush, deposit.ChannelDashboard}},
		{deposit.TierHealthy, nil},
	}

	for _, tc := range cases {
		got := deposit.ChannelsFor(tc.tier)
		if len(got) != len(tc.want) {
			t.Fatalf("ChannelsFor(%s) = %v, want %v", tc.tier, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("ChannelsFor(%s) = %v, want %v", tc.tier, got, tc.want)
			}
		}
	}
}
