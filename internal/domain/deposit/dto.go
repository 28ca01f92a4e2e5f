package deposit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDepositRequest opens a prepaid deposit. Amounts travel as strings so
// no precision is lost in JSON.
type CreateDepositRequest struct {
	InitialAmount      string `json:"initial_amount" validate:"required"`
	CampaignID         string `json:"campaign_id,omitempty" validate:"omitempty,uuid"`
	AlertThreshold     string `json:"alert_threshold,omitempty"`
	AutoRecharge       bool   `json:"auto_recharge,omitempty"`
	AutoRechargeAmount string `json:"auto_recharge_amount,omitempty"`
	PaymentMethod      string `json:"payment_method" validate:"required,payment_method"`
	PaymentReference   string `json:"payment_reference,omitempty"`
}

// RechargeRequest credits an existing deposit.
type RechargeRequest struct {
	Amount           string `json:"amount" validate:"required"`
	PaymentMethod    string `json:"payment_method" validate:"required,payment_method"`
	PaymentReference string `json:"payment_reference,omitempty"`
}

// SuspendRequest stops a deposit without touching its balance.
type SuspendRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// UpdateThresholdRequest changes the merchant-configured alert floor.
type UpdateThresholdRequest struct {
	AlertThreshold string `json:"alert_threshold" validate:"required"`
}

// AutoRechargeRequest toggles automatic top-ups.
type AutoRechargeRequest struct {
	Enabled bool   `json:"enabled"`
	Amount  string `json:"amount,omitempty"`
}

// DepositResponse is the API shape of a deposit.
type DepositResponse struct {
	ID                 uuid.UUID       `json:"id"`
	MerchantID         uuid.UUID       `json:"merchant_id"`
	CampaignID         string          `json:"campaign_id,omitempty"`
	InitialAmount      decimal.Decimal `json:"initial_amount"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
	ReservedAmount     decimal.Decimal `json:"reserved_amount"`
	AvailableBalance   decimal.Decimal `json:"available_balance"`
	AlertThreshold     decimal.Decimal `json:"alert_threshold"`
	AutoRecharge       bool            `json:"auto_recharge"`
	AutoRechargeAmount string          `json:"auto_recharge_amount,omitempty"`
	Status             Status          `json:"status"`
	CreatedAt          string          `json:"created_at"`
	DepletedAt         string          `json:"depleted_at,omitempty"`
}

// ToResponse converts entity to response
func ToResponse(d *Deposit) *DepositResponse {
	resp := &DepositResponse{
		ID:               d.ID,
		MerchantID:       d.MerchantID,
		InitialAmount:    d.InitialAmount,
		CurrentBalance:   d.CurrentBalance,
		ReservedAmount:   d.ReservedAmount,
		AvailableBalance: d.AvailableBalance(),
		AlertThreshold:   d.AlertThreshold,
		AutoRecharge:     d.AutoRecharge,
		Status:           d.Status,
		CreatedAt:        d.CreatedAt.Format(time.RFC3339),
	}
	if d.CampaignID.Valid {
		resp.CampaignID = d.CampaignID.UUID.String()
	}
	if d.AutoRechargeAmount.Valid {
		resp.AutoRechargeAmount = d.AutoRechargeAmount.Decimal.String()
	}
	if d.DepletedAt.Valid {
		resp.DepletedAt = d.DepletedAt.Time.Format(time.RFC3339)
	}
	return resp
}
