package deposit

import "github.com/shopspring/decimal"

// Tier is an alert severity derived from the share of the initial amount
// still on the balance.
type Tier string

const (
	TierHealthy   Tier = "HEALTHY"
	TierAttention Tier = "ATTENTION"
	TierWarning   Tier = "WARNING"
	TierCritical  Tier = "CRITICAL"
	TierDepleted  Tier = "DEPLETED"
)

// Channel names a delivery route for an alert.
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelSMS       Channel = "sms"
	ChannelPush      Channel = "push"
	ChannelDashboard Channel = "dashboard"
)

var (
	pctCritical  = decimal.NewFromInt(10)
	pctWarning   = decimal.NewFromInt(20)
	pctAttention = decimal.NewFromInt(50)
	hundred      = decimal.NewFromInt(100)
)

// Classify maps a balance to an alert tier using the percentage of the
// initial amount remaining. Bands are evaluated most-severe-first so exact
// boundary values resolve to the stricter tier. The merchant-configured
// alertThreshold acts as an absolute floor that promotes HEALTHY to
// ATTENTION; it never demotes a stricter tier.
func Classify(currentBalance, initialAmount, alertThreshold decimal.Decimal) Tier {
	if currentBalance.Sign() <= 0 {
		return TierDepleted
	}

	remaining := hundred
	if initialAmount.Sign() > 0 {
		remaining = currentBalance.Div(initialAmount).Mul(hundred)
	}

	switch {
	case remaining.LessThanOrEqual(pctCritical):
		return TierCritical
	case remaining.LessThanOrEqual(pctWarning):
		return TierWarning
	case remaining.LessThanOrEqual(pctAttention):
		return TierAttention
	case currentBalance.LessThanOrEqual(alertThreshold):
		return TierAttention
	default:
		return TierHealthy
	}
}

// ChannelsFor returns the delivery channels for a tier, strongest set first.
func ChannelsFor(tier Tier) []Channel {
	switch tier {
	case TierDepleted, TierCritical:
		return []Channel{ChannelEmail, ChannelSMS, ChannelPush, ChannelDashboard}
	case TierWarning:
		return []Channel{ChannelEmail, ChannelSMS, ChannelDashboard}
	case TierAttention:
		return []Channel{ChannelEmail, ChannelDashboard}
	default:
		return nil
	}
}
