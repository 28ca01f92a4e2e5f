package payment

import "github.com/shopspring/decimal"

// InitRechargeRequest is the checkout request body.
type InitRechargeRequest struct {
	DepositID   string `json:"deposit_id" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

// PaymentResponse is the API shape for a recharge attempt.
type PaymentResponse struct {
	ID          string `json:"id"`
	DepositID   string `json:"deposit_id"`
	InvID       int64  `json:"inv_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Provider    string `json:"provider"`
	Description string `json:"description,omitempty"`
	PaidAt      string `json:"paid_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ToResponse converts a payment to its API shape.
func ToResponse(p *Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:        p.ID.String(),
		DepositID: p.DepositID.String(),
		InvID:     p.InvID,
		Amount:    p.Amount.String(),
		Currency:  p.Currency,
		Status:    string(p.Status),
		Provider:  string(p.Provider),
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if p.Description.Valid {
		resp.Description = p.Description.String
	}
	if p.PaidAt.Valid {
		resp.PaidAt = p.PaidAt.Time.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func parseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(raw)
}
