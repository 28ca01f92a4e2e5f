package deposit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DepletedHandler is invoked after a commit drives a balance to zero. It is
// fire-and-forget: balance correctness never depends on it.
type DepletedHandler func(ctx context.Context, d *Deposit)

// Service owns the balance mutation rules. Every mutation is serialized per
// deposit by the repository and produces an immutable ledger row.
type Service struct {
	repo       *Repository
	cache      *BalanceCache
	onDepleted DepletedHandler
}

// NewService creates the deposit engine. cache and onDepleted may be nil.
func NewService(repo *Repository, cache *BalanceCache, onDepleted DepletedHandler) *Service {
	return &Service{repo: repo, cache: cache, onDepleted: onDepleted}
}

// CreateParams collects the inputs for opening a deposit.
type CreateParams struct {
	MerchantID         uuid.UUID
	InitialAmount      decimal.Decimal
	CampaignID         *uuid.UUID
	AlertThreshold     *decimal.Decimal
	AutoRecharge       bool
	AutoRechargeAmount *decimal.Decimal
	PaymentMethod      string
	PaymentReference   string
	CreatedBy          uuid.NullUUID
}

// Create opens a prepaid deposit. The deposit row and its seeding initial
// transaction are written atomically: no deposit exists without its log.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Deposit, error) {
	if p.InitialAmount.LessThan(MinInitialAmount) {
		return nil, ErrMinimumDeposit
	}

	threshold := DefaultAlertThreshold
	if p.AlertThreshold != nil {
		if p.AlertThreshold.Sign() < 0 {
			return nil, ErrInvalidThreshold
		}
		threshold = *p.AlertThreshold
	}

	var autoAmount decimal.NullDecimal
	if p.AutoRecharge {
		if p.AutoRechargeAmount == nil || p.AutoRechargeAmount.LessThan(MinAutoRechargeAmount) {
			return nil, ErrMinimumAutoRecharge
		}
		autoAmount = decimal.NullDecimal{Decimal: *p.AutoRechargeAmount, Valid: true}
	}

	now := time.Now()
	d := &Deposit{
		ID:                 uuid.New(),
		MerchantID:         p.MerchantID,
		InitialAmount:      p.InitialAmount,
		CurrentBalance:     p.InitialAmount,
		ReservedAmount:     decimal.Zero,
		AlertThreshold:     threshold,
		AutoRecharge:       p.AutoRecharge,
		AutoRechargeAmount: autoAmount,
		Status:             StatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if p.CampaignID != nil {
		d.CampaignID = uuid.NullUUID{UUID: *p.CampaignID, Valid: true}
	}

	if err := s.repo.Create(ctx, d, p.PaymentMethod, p.PaymentReference, p.CreatedBy); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, p.MerchantID)
	log.Info().
		Str("deposit_id", d.ID.String()).
		Str("merchant_id", p.MerchantID.String()).
		Str("amount", p.InitialAmount.String()).
		Msg("deposit created")
	return d, nil
}

// Recharge credits a deposit and reactivates it if depleted. A replayed
// payment reference is acknowledged without double-crediting.
func (s *Service) Recharge(ctx context.Context, depositID, merchantID uuid.UUID, amount decimal.Decimal, paymentMethod, paymentReference string, createdBy uuid.NullUUID) (*Deposit, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	d, err := s.repo.Recharge(ctx, depositID, merchantID, amount, paymentMethod, paymentReference, createdBy)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, merchantID)
	log.Info().
		Str("deposit_id", depositID.String()).
		Str("amount", amount.String()).
		Str("payment_method", paymentMethod).
		Str("payment_reference", paymentReference).
		Msg("deposit recharged")
	return d, nil
}

// Reserve earmarks funds for a pending lead. reference is the lead ID, which
// makes the reservation replay-safe.
func (s *Service) Reserve(ctx context.Context, depositID uuid.UUID, amount decimal.Decimal, reference string) (*Deposit, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	d, err := s.repo.Reserve(ctx, depositID, amount, reference)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, d.MerchantID)
	return d, nil
}

// Commit deducts a reserved amount on lead validation. When the balance hits
// zero the depleted handler is invoked; its failure is logged, never
// propagated.
func (s *Service) Commit(ctx context.Context, depositID uuid.UUID, amount decimal.Decimal, reference string, createdBy uuid.NullUUID) (*Deposit, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	d, err := s.repo.Commit(ctx, depositID, amount, reference, createdBy)
	if err != nil {
		if err == ErrReservationExceeded {
			log.Error().
				Str("deposit_id", depositID.String()).
				Str("amount", amount.String()).
				Str("reference", reference).
				Msg("commit exceeds reserved funds")
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, d.MerchantID)

	if d.Status == StatusDepleted && s.onDepleted != nil {
		s.onDepleted(ctx, d)
	}
	return d, nil
}

// Release returns reserved funds on lead rejection or expiry. Idempotent per
// reference: a second call with the same reference is a no-op.
func (s *Service) Release(ctx context.Context, depositID uuid.UUID, amount decimal.Decimal, reference string) (*Deposit, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	d, err := s.repo.Release(ctx, depositID, amount, reference)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, d.MerchantID)
	return d, nil
}

// Suspend stops the deposit without touching the balance.
func (s *Service) Suspend(ctx context.Context, depositID, merchantID uuid.UUID, reason string, createdBy uuid.NullUUID) (*Deposit, error) {
	d, err := s.repo.Suspend(ctx, depositID, merchantID, reason, createdBy)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, merchantID)
	log.Info().
		Str("deposit_id", depositID.String()).
		Str("reason", reason).
		Msg("deposit suspended")
	return d, nil
}

// GetActive returns the deposit authoritative for new reservations.
func (s *Service) GetActive(ctx context.Context, merchantID uuid.UUID, campaignID *uuid.UUID) (*Deposit, error) {
	return s.repo.GetActive(ctx, merchantID, campaignID)
}

// GetByID returns a deposit scoped to its merchant.
func (s *Service) GetByID(ctx context.Context, depositID, merchantID uuid.UUID) (*Deposit, error) {
	return s.repo.GetByID(ctx, depositID, merchantID)
}

// GetBalance computes the merchant-facing balance view. No active deposit is
// a valid state, not an error.
func (s *Service) GetBalance(ctx context.Context, merchantID uuid.UUID, campaignID *uuid.UUID) (*BalanceView, error) {
	if view, ok := s.cache.Get(ctx, merchantID, campaignID); ok {
		return view, nil
	}

	d, err := s.repo.GetActive(ctx, merchantID, campaignID)
	if err != nil {
		if err == ErrDepositNotFound {
			return &BalanceView{
				HasDeposit:     false,
				AlertThreshold: DefaultAlertThreshold,
				Tier:           TierDepleted,
				IsDepleted:     true,
			}, nil
		}
		return nil, err
	}

	tier := Classify(d.CurrentBalance, d.InitialAmount, d.AlertThreshold)
	view := &BalanceView{
		HasDeposit:       true,
		DepositID:        d.ID,
		InitialAmount:    d.InitialAmount,
		CurrentBalance:   d.CurrentBalance,
		ReservedAmount:   d.ReservedAmount,
		AvailableBalance: d.AvailableBalance(),
		AlertThreshold:   d.AlertThreshold,
		Tier:             tier,
		IsLow:            tier != TierHealthy,
		IsCritical:       tier == TierCritical || tier == TierDepleted,
		IsDepleted:       tier == TierDepleted,
		AutoRecharge:     d.AutoRecharge,
		Status:           d.Status,
	}

	s.cache.Set(ctx, merchantID, campaignID, view)
	return view, nil
}

func (s *Service) UpdateAlertThreshold(ctx context.Context, depositID, merchantID uuid.UUID, threshold decimal.Decimal) (*Deposit, error) {
	if threshold.Sign() < 0 {
		return nil, ErrInvalidThreshold
	}

	d, err := s.repo.UpdateAlertThreshold(ctx, depositID, merchantID, threshold)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, merchantID)
	return d, nil
}

func (s *Service) ConfigureAutoRecharge(ctx context.Context, depositID, merchantID uuid.UUID, enabled bool, amount *decimal.Decimal) (*Deposit, error) {
	var autoAmount decimal.NullDecimal
	if enabled {
		if amount == nil || amount.LessThan(MinAutoRechargeAmount) {
			return nil, ErrMinimumAutoRecharge
		}
		autoAmount = decimal.NullDecimal{Decimal: *amount, Valid: true}
	}

	d, err := s.repo.ConfigureAutoRecharge(ctx, depositID, merchantID, enabled, autoAmount)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, merchantID)
	return d, nil
}

// List returns the merchant's deposits, optionally filtered by status.
func (s *Service) List(ctx context.Context, merchantID uuid.UUID, status *Status) ([]*Deposit, error) {
	return s.repo.ListByMerchant(ctx, merchantID, status)
}

// History returns the merchant's ledger, newest first.
func (s *Service) History(ctx context.Context, merchantID uuid.UUID, filters HistoryFilters) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, merchantID, filters)
}

// Stats aggregates the merchant's deposits and ledger activity.
func (s *Service) Stats(ctx context.Context, merchantID uuid.UUID) (*Stats, error) {
	deposits, err := s.repo.ListByMerchant(ctx, merchantID, nil)
	if err != nil {
		return nil, err
	}

	transactions, err := s.repo.ListTransactions(ctx, merchantID, HistoryFilters{Limit: 1000})
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalDeposits:       len(deposits),
		TotalTransactions:   len(transactions),
		TotalDeposited:      decimal.Zero,
		TotalCurrentBalance: decimal.Zero,
		TotalReserved:       decimal.Zero,
		TotalAvailable:      decimal.Zero,
		TotalSpent:          decimal.Zero,
		TotalRecharged:      decimal.Zero,
	}

	for _, d := range deposits {
		stats.TotalDeposited = stats.TotalDeposited.Add(d.InitialAmount)
		switch d.Status {
		case StatusActive:
			stats.ActiveDeposits++
			stats.TotalCurrentBalance = stats.TotalCurrentBalance.Add(d.CurrentBalance)
			stats.TotalReserved = stats.TotalReserved.Add(d.ReservedAmount)
		case StatusDepleted:
			stats.DepletedDeposits++
		}
	}
	stats.TotalAvailable = stats.TotalCurrentBalance.Sub(stats.TotalReserved)

	for _, t := range transactions {
		switch t.TransactionType {
		case TxTypeDeduction:
			stats.TotalSpent = stats.TotalSpent.Add(t.Amount.Abs())
		case TxTypeRecharge:
			stats.TotalRecharged = stats.TotalRecharged.Add(t.Amount)
		}
	}
	return stats, nil
}
