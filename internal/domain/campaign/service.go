package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PausedReasonDepleted marks campaigns stopped by a dry deposit, so a later
// recharge can resume exactly those and no others.
const PausedReasonDepleted = "deposit depleted"

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateParams collects the inputs for a new campaign.
type CreateParams struct {
	MerchantID   uuid.UUID
	Name         string
	Description  string
	Category     string
	LeadPrice    decimal.Decimal
	DailyLeadCap int
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*Campaign, error) {
	if p.LeadPrice.Sign() <= 0 {
		return nil, ErrInvalidLeadPrice
	}

	now := time.Now()
	c := &Campaign{
		ID:           uuid.New(),
		MerchantID:   p.MerchantID,
		Name:         p.Name,
		Category:     p.Category,
		LeadPrice:    p.LeadPrice,
		DailyLeadCap: p.DailyLeadCap,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.Description != "" {
		c.Description.String = p.Description
		c.Description.Valid = true
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	log.Info().
		Str("campaign_id", c.ID.String()).
		Str("merchant_id", p.MerchantID.String()).
		Msg("campaign created")
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, campaignID uuid.UUID) (*Campaign, error) {
	return s.repo.GetByID(ctx, campaignID)
}

func (s *Service) List(ctx context.Context, merchantID uuid.UUID, status *Status) ([]*Campaign, error) {
	return s.repo.ListByMerchant(ctx, merchantID, status)
}

// Pause satisfies the deposit engine's pauser contract.
func (s *Service) Pause(ctx context.Context, campaignID uuid.UUID, reason string) error {
	if err := s.repo.Pause(ctx, campaignID, reason); err != nil {
		return err
	}
	log.Info().
		Str("campaign_id", campaignID.String()).
		Str("reason", reason).
		Msg("campaign paused")
	return nil
}

func (s *Service) Resume(ctx context.Context, campaignID uuid.UUID) error {
	return s.repo.Resume(ctx, campaignID)
}

// ResumeDepleted reactivates the merchant's campaigns that were paused for a
// dry deposit. Called after a successful recharge.
func (s *Service) ResumeDepleted(ctx context.Context, merchantID uuid.UUID) {
	resumed, err := s.repo.ResumeByMerchant(ctx, merchantID, PausedReasonDepleted)
	if err != nil {
		log.Error().Err(err).
			Str("merchant_id", merchantID.String()).
			Msg("failed to resume campaigns after recharge")
		return
	}
	if resumed > 0 {
		log.Info().
			Str("merchant_id", merchantID.String()).
			Int64("resumed", resumed).
			Msg("campaigns resumed after recharge")
	}
}

func (s *Service) Archive(ctx context.Context, campaignID, merchantID uuid.UUID) error {
	return s.repo.Archive(ctx, campaignID, merchantID)
}
