package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/leadflow/leadflow-api/internal/domain/deposit"
	"github.com/leadflow/leadflow-api/internal/pkg/robokassa"
)

// DepositRecharger credits a settled invoice onto the deposit ledger.
type DepositRecharger interface {
	GetByID(ctx context.Context, depositID, merchantID uuid.UUID) (*deposit.Deposit, error)
	Recharge(ctx context.Context, depositID, merchantID uuid.UUID, amount decimal.Decimal, paymentMethod, paymentReference string, createdBy uuid.NullUUID) (*deposit.Deposit, error)
}

// CampaignResumer reactivates campaigns that were paused on depletion.
type CampaignResumer interface {
	ResumeDepleted(ctx context.Context, merchantID uuid.UUID)
}

// GatewayConfig holds the Robokassa integration settings.
type GatewayConfig struct {
	MerchantLogin string
	Password1     string
	Password2     string
	TestMode      bool
	HashAlgo      string
}

// Service handles recharge checkout and gateway callbacks.
type Service struct {
	repo      Repository
	deposits  DepositRecharger
	campaigns CampaignResumer
	gateway   *robokassa.Client
	password1 string
	password2 string
	algo      robokassa.HashAlgorithm
	testMode  bool
}

// NewService creates a payment service wired to the Robokassa gateway.
func NewService(repo Repository, deposits DepositRecharger, campaigns CampaignResumer, cfg GatewayConfig) *Service {
	algo, err := robokassa.NormalizeHashAlgorithm(cfg.HashAlgo)
	if err != nil {
		algo = robokassa.HashSHA256
	}
	client := robokassa.NewClient(robokassa.Config{
		MerchantLogin: cfg.MerchantLogin,
		Password1:     strings.TrimSpace(cfg.Password1),
		Password2:     strings.TrimSpace(cfg.Password2),
		TestMode:      cfg.TestMode,
		HashAlgo:      algo,
	})
	return &Service{
		repo:      repo,
		deposits:  deposits,
		campaigns: campaigns,
		gateway:   client,
		password1: strings.TrimSpace(cfg.Password1),
		password2: strings.TrimSpace(cfg.Password2),
		algo:      algo,
		testMode:  cfg.TestMode,
	}
}

// CheckoutParams describes one recharge checkout.
type CheckoutParams struct {
	MerchantID  uuid.UUID
	DepositID   uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// CheckoutResponse is the redirect payload for the payment form.
type CheckoutResponse struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	InvID      int64     `json:"inv_id"`
	PaymentURL string    `json:"payment_url"`
	Status     string    `json:"status"`
}

// InitRecharge creates a pending invoice for the merchant's deposit and
// returns the gateway payment URL. The money only moves when the gateway
// confirms through the result callback.
func (s *Service) InitRecharge(ctx context.Context, p CheckoutParams) (*CheckoutResponse, error) {
	if p.Amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	// Ownership check before creating an invoice against the deposit.
	if _, err := s.deposits.GetByID(ctx, p.DepositID, p.MerchantID); err != nil {
		return nil, err
	}

	invID, err := s.repo.NextInvID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice id: %w", err)
	}

	outSum := p.Amount.StringFixed(2)
	rawInit, _ := json.Marshal(map[string]string{"OutSum": outSum, "InvId": strconv.FormatInt(invID, 10)})

	payment := &Payment{
		ID:             uuid.New(),
		MerchantID:     p.MerchantID,
		DepositID:      p.DepositID,
		InvID:          invID,
		Amount:         p.Amount,
		Currency:       "KZT",
		Status:         StatusPending,
		Provider:       ProviderRobokassa,
		Description:    sql.NullString{String: p.Description, Valid: p.Description != ""},
		RawInitPayload: rawInit,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	resp, err := s.gateway.CreatePayment(ctx, robokassa.CreatePaymentRequest{
		Amount:      p.Amount.InexactFloat64(),
		OutSum:      outSum,
		InvID:       invID,
		Description: p.Description,
		Shp:         map[string]string{"deposit": p.DepositID.String()},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate payment link: %w", err)
	}

	return &CheckoutResponse{
		PaymentID:  payment.ID,
		InvID:      invID,
		PaymentURL: resp.PaymentURL,
		Status:     string(StatusPending),
	}, nil
}

// ProcessResult handles the gateway result callback (Result URL).
//
// The callback is verified against password #2, matched against the stored
// invoice amount, and then credited onto the deposit ledger with the
// invoice as payment reference. The ledger reference makes the credit
// replay-safe: a duplicate callback for a settled invoice acknowledges
// without moving money again.
func (s *Service) ProcessResult(ctx context.Context, form url.Values) (string, error) {
	payload, err := robokassa.ParseWebhookForm(form)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}
	if !robokassa.VerifyResultSignatureWithAlgo(payload.OutSum, payload.InvId, payload.SignatureValue, s.password2, payload.Shp, s.algo) {
		return "", ErrInvalidSignature
	}

	payment, err := s.repo.GetByInvID(ctx, payload.InvId)
	if err != nil {
		return "", err
	}

	callbackAmount, err := robokassa.ParseAmount(strings.ReplaceAll(payload.OutSum, ",", "."))
	if err != nil {
		return "", ErrInvalidAmount
	}
	expectedAmount, err := robokassa.ParseAmount(payment.Amount.StringFixed(2))
	if err != nil {
		return "", ErrInvalidAmount
	}
	if !robokassa.AmountsEqual(expectedAmount, callbackAmount) {
		return "", ErrAmountMismatch
	}

	ack := "OK" + strconv.FormatInt(payload.InvId, 10)
	if payment.IsPaid() {
		return ack, nil
	}

	// Credit the ledger first. If marking the invoice fails afterwards the
	// gateway retries, and the recharge replays idempotently on the same
	// payment reference.
	if _, err := s.deposits.Recharge(ctx, payment.DepositID, payment.MerchantID, payment.Amount, "card", payment.Reference(), uuid.NullUUID{}); err != nil {
		return "", err
	}

	raw, _ := json.Marshal(flattenForm(form))
	settled, err := s.repo.MarkCompleted(ctx, payload.InvId, raw)
	if err != nil {
		return "", err
	}
	if !settled {
		// Lost the race to another callback; the ledger is already correct.
		return ack, nil
	}

	log.Info().
		Int64("inv_id", payload.InvId).
		Str("merchant_id", payment.MerchantID.String()).
		Str("deposit_id", payment.DepositID.String()).
		Str("amount", payment.Amount.String()).
		Msg("deposit recharge settled")

	if s.campaigns != nil {
		s.campaigns.ResumeDepleted(ctx, payment.MerchantID)
	}
	return ack, nil
}

// VerifySuccessRedirect checks the signature on the SuccessURL redirect.
// The redirect is informational only; settlement happens on the result
// callback.
func (s *Service) VerifySuccessRedirect(form url.Values) bool {
	payload, err := robokassa.ParseWebhookForm(form)
	if err != nil {
		return false
	}
	return robokassa.VerifySuccessSignatureWithAlgo(payload.OutSum, payload.InvId, payload.SignatureValue, s.password1, payload.Shp, s.algo)
}

// MarkFailed records a failed or abandoned checkout.
func (s *Service) MarkFailed(ctx context.Context, invID int64) error {
	return s.repo.MarkFailed(ctx, invID)
}

// History returns the merchant's recharge attempts, newest first.
func (s *Service) History(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Payment, error) {
	return s.repo.ListByMerchant(ctx, merchantID, limit, offset)
}

func flattenForm(form url.Values) map[string]string {
	flat := make(map[string]string, len(form))
	for key, values := range form {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}
	return flat
}
