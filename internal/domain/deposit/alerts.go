package deposit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AlertNotifier receives tier alerts. Implementations must be
// fire-and-forget: a delivery failure is theirs to log, never to return.
type AlertNotifier interface {
	LowBalance(ctx context.Context, d *Deposit, tier Tier, channels []Channel)
	Depleted(ctx context.Context, d *Deposit, campaignPaused bool)
}

// CampaignPauser pauses a campaign when its deposit runs dry. Must be
// idempotent.
type CampaignPauser interface {
	Pause(ctx context.Context, campaignID uuid.UUID, reason string) error
}

// DefaultAlertCooldown suppresses repeat alerts for the same deposit.
const DefaultAlertCooldown = 24 * time.Hour

// AlertJob sweeps active deposits, classifies each balance and dispatches at
// most one alert per cooldown window. One deposit failing never aborts the
// sweep for the rest.
type AlertJob struct {
	svc      *Service
	notifier AlertNotifier
	pauser   CampaignPauser
	cooldown time.Duration
	now      func() time.Time
}

func NewAlertJob(svc *Service, notifier AlertNotifier, pauser CampaignPauser, cooldown time.Duration) *AlertJob {
	if cooldown <= 0 {
		cooldown = DefaultAlertCooldown
	}
	return &AlertJob{
		svc:      svc,
		notifier: notifier,
		pauser:   pauser,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Run executes one sweep over all active deposits.
func (j *AlertJob) Run(ctx context.Context) error {
	deposits, err := j.svc.repo.ListActive(ctx)
	if err != nil {
		return err
	}

	counts := map[Tier]int{}
	for _, d := range deposits {
		tier := j.sweepOne(ctx, d)
		counts[tier]++
	}

	log.Info().
		Int("total", len(deposits)).
		Int("attention", counts[TierAttention]).
		Int("warning", counts[TierWarning]).
		Int("critical", counts[TierCritical]).
		Int("depleted", counts[TierDepleted]).
		Msg("deposit alert sweep finished")
	return nil
}

// sweepOne processes a single deposit and reports its tier. Errors are
// logged and swallowed so the sweep continues.
func (j *AlertJob) sweepOne(ctx context.Context, d *Deposit) Tier {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("deposit_id", d.ID.String()).
				Interface("panic", r).
				Msg("deposit sweep panicked")
		}
	}()

	tier := Classify(d.CurrentBalance, d.InitialAmount, d.AlertThreshold)
	if tier == TierHealthy {
		return tier
	}

	if tier == TierDepleted {
		j.handleDepleted(ctx, d)
		j.maybeAutoRecharge(ctx, d)
		return tier
	}

	if j.inCooldown(d) {
		return tier
	}

	if j.notifier != nil {
		j.notifier.LowBalance(ctx, d, tier, ChannelsFor(tier))
	}
	if err := j.svc.repo.TouchLastAlertSent(ctx, d.ID, j.now()); err != nil {
		log.Error().Err(err).Str("deposit_id", d.ID.String()).Msg("failed to record alert time")
	}

	if tier == TierCritical {
		j.maybeAutoRecharge(ctx, d)
	}
	return tier
}

func (j *AlertJob) handleDepleted(ctx context.Context, d *Deposit) {
	// Idempotent: the commit path usually flips status first.
	if err := j.svc.repo.MarkDepleted(ctx, d.ID); err != nil {
		log.Error().Err(err).Str("deposit_id", d.ID.String()).Msg("failed to mark deposit depleted")
		return
	}

	paused := false
	if d.CampaignID.Valid && j.pauser != nil {
		if err := j.pauser.Pause(ctx, d.CampaignID.UUID, "deposit depleted"); err != nil {
			log.Error().Err(err).
				Str("campaign_id", d.CampaignID.UUID.String()).
				Msg("failed to pause campaign")
		} else {
			paused = true
		}
	}

	if j.inCooldown(d) {
		return
	}
	if j.notifier != nil {
		j.notifier.Depleted(ctx, d, paused)
	}
	if err := j.svc.repo.TouchLastAlertSent(ctx, d.ID, j.now()); err != nil {
		log.Error().Err(err).Str("deposit_id", d.ID.String()).Msg("failed to record alert time")
	}
}

// maybeAutoRecharge tops up a configured deposit when it crosses into
// CRITICAL or DEPLETED. The daily reference makes the trigger at-most-once
// per day regardless of sweep frequency.
func (j *AlertJob) maybeAutoRecharge(ctx context.Context, d *Deposit) {
	if !d.AutoRecharge || !d.AutoRechargeAmount.Valid {
		return
	}

	reference := "auto:" + d.ID.String() + ":" + j.now().Format("2006-01-02")
	_, err := j.svc.Recharge(ctx, d.ID, d.MerchantID, d.AutoRechargeAmount.Decimal, "auto_recharge", reference, uuid.NullUUID{})
	if err != nil {
		log.Error().Err(err).Str("deposit_id", d.ID.String()).Msg("auto-recharge failed")
		return
	}
	log.Info().
		Str("deposit_id", d.ID.String()).
		Str("amount", d.AutoRechargeAmount.Decimal.String()).
		Msg("auto-recharge applied")
}

func (j *AlertJob) inCooldown(d *Deposit) bool {
	return d.LastAlertSent.Valid && j.now().Sub(d.LastAlertSent.Time) < j.cooldown
}
