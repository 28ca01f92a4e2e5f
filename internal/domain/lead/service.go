package lead

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/leadflow/leadflow-api/internal/domain/campaign"
	"github.com/leadflow/leadflow-api/internal/domain/deposit"
)

// Notifier receives lead lifecycle events. Fire-and-forget.
type Notifier interface {
	LeadReceived(ctx context.Context, merchantID, leadID uuid.UUID, amount string)
	LeadValidated(ctx context.Context, merchantID, leadID uuid.UUID, amount string)
	LeadRejected(ctx context.Context, merchantID, leadID uuid.UUID, amount string)
}

// Service drives the lead lifecycle. Every status transition settles against
// the deposit first; the lead row only moves once the money has.
type Service struct {
	repo      *Repository
	deposits  *deposit.Service
	campaigns *campaign.Service
	notifier  Notifier
}

// NewService creates the lead service. notifier may be nil.
func NewService(repo *Repository, deposits *deposit.Service, campaigns *campaign.Service, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		deposits:  deposits,
		campaigns: campaigns,
		notifier:  notifier,
	}
}

// SubmitParams collects the inputs for routing a lead.
type SubmitParams struct {
	CampaignID     uuid.UUID
	ContactName    string
	ContactPhone   string
	ContactEmail   string
	Source         string
	Notes          string
	EstimatedValue *decimal.Decimal
}

// Submit routes a lead to a campaign. The campaign's lead price is reserved
// on the merchant's active deposit before the lead is stored; no funds, no
// lead.
func (s *Service) Submit(ctx context.Context, p SubmitParams) (*Lead, error) {
	c, err := s.campaigns.GetByID(ctx, p.CampaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != campaign.StatusActive {
		return nil, ErrCampaignInactive
	}

	if c.DailyLeadCap > 0 {
		count, err := s.repo.CountToday(ctx, c.ID, time.Now())
		if err != nil {
			return nil, err
		}
		if count >= c.DailyLeadCap {
			return nil, ErrCampaignInactive
		}
	}

	d, err := s.deposits.GetActive(ctx, c.MerchantID, nil)
	if err != nil {
		if errors.Is(err, deposit.ErrDepositNotFound) {
			return nil, ErrNoActiveDeposit
		}
		return nil, err
	}

	now := time.Now()
	l := &Lead{
		ID:               uuid.New(),
		CampaignID:       c.ID,
		MerchantID:       c.MerchantID,
		DepositID:        d.ID,
		ContactName:      p.ContactName,
		Source:           p.Source,
		CommissionAmount: c.LeadPrice,
		Status:           StatusPending,
		ExpiresAt:        now.Add(ValidationWindow),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if p.ContactPhone != "" {
		l.ContactPhone.String, l.ContactPhone.Valid = p.ContactPhone, true
	}
	if p.ContactEmail != "" {
		l.ContactEmail.String, l.ContactEmail.Valid = p.ContactEmail, true
	}
	if p.Notes != "" {
		l.Notes.String, l.Notes.Valid = p.Notes, true
	}
	if p.EstimatedValue != nil {
		l.EstimatedValue = decimal.NullDecimal{Decimal: *p.EstimatedValue, Valid: true}
	}

	// The lead ID is the reservation reference, which makes a retried submit
	// replay-safe on the money side.
	if _, err := s.deposits.Reserve(ctx, d.ID, c.LeadPrice, l.ID.String()); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, l); err != nil {
		// Hand the reservation back; the expiry sweep would catch a leak,
		// but there is no reason to wait for it.
		if _, relErr := s.deposits.Release(ctx, d.ID, c.LeadPrice, l.ID.String()); relErr != nil {
			log.Error().Err(relErr).Str("lead_id", l.ID.String()).Msg("failed to release reservation for failed lead insert")
		}
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.LeadReceived(ctx, c.MerchantID, l.ID, c.LeadPrice.String())
	}

	log.Info().
		Str("lead_id", l.ID.String()).
		Str("campaign_id", c.ID.String()).
		Str("commission", c.LeadPrice.String()).
		Msg("lead routed")
	return l, nil
}

// Validate confirms a pending lead and settles its commission.
func (s *Service) Validate(ctx context.Context, leadID, merchantID uuid.UUID) (*Lead, error) {
	l, err := s.getOwned(ctx, leadID, merchantID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	if _, err := s.deposits.Commit(ctx, l.DepositID, l.CommissionAmount, l.ID.String(), uuid.NullUUID{UUID: merchantID, Valid: true}); err != nil {
		return nil, err
	}

	if err := s.repo.MarkValidated(ctx, leadID); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.LeadValidated(ctx, merchantID, leadID, l.CommissionAmount.String())
	}
	return s.repo.GetByID(ctx, leadID)
}

// Reject writes off a pending lead and returns its reservation.
func (s *Service) Reject(ctx context.Context, leadID, merchantID uuid.UUID, reason string) (*Lead, error) {
	l, err := s.getOwned(ctx, leadID, merchantID)
	if err != nil {
		return nil, err
	}
	if l.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	if _, err := s.deposits.Release(ctx, l.DepositID, l.CommissionAmount, l.ID.String()); err != nil {
		return nil, err
	}

	if err := s.repo.MarkRejected(ctx, leadID, reason); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.LeadRejected(ctx, merchantID, leadID, l.CommissionAmount.String())
	}
	return s.repo.GetByID(ctx, leadID)
}

// Convert marks a validated lead as a won customer.
func (s *Service) Convert(ctx context.Context, leadID, merchantID uuid.UUID) (*Lead, error) {
	if _, err := s.getOwned(ctx, leadID, merchantID); err != nil {
		return nil, err
	}

	if err := s.repo.MarkConverted(ctx, leadID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, leadID)
}

func (s *Service) GetByID(ctx context.Context, leadID, merchantID uuid.UUID) (*Lead, error) {
	return s.getOwned(ctx, leadID, merchantID)
}

func (s *Service) List(ctx context.Context, merchantID uuid.UUID, filters ListFilters) ([]*Lead, error) {
	return s.repo.ListByMerchant(ctx, merchantID, filters)
}

func (s *Service) Stats(ctx context.Context, merchantID uuid.UUID) (*Stats, error) {
	return s.repo.Stats(ctx, merchantID)
}

func (s *Service) getOwned(ctx context.Context, leadID, merchantID uuid.UUID) (*Lead, error) {
	l, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if l.MerchantID != merchantID {
		return nil, ErrLeadNotFound
	}
	return l, nil
}
