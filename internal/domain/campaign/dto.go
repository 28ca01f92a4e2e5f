package campaign

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateCampaignRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=200"`
	Description  string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category     string `json:"category" validate:"required,max=100"`
	LeadPrice    string `json:"lead_price" validate:"required"`
	DailyLeadCap int    `json:"daily_lead_cap,omitempty" validate:"omitempty,gte=0"`
}

type CampaignResponse struct {
	ID           uuid.UUID       `json:"id"`
	MerchantID   uuid.UUID       `json:"merchant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category"`
	LeadPrice    decimal.Decimal `json:"lead_price"`
	DailyLeadCap int             `json:"daily_lead_cap"`
	Status       Status          `json:"status"`
	PausedReason string          `json:"paused_reason,omitempty"`
	PausedAt     string          `json:"paused_at,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

// ToResponse converts entity to response
func ToResponse(c *Campaign) *CampaignResponse {
	resp := &CampaignResponse{
		ID:           c.ID,
		MerchantID:   c.MerchantID,
		Name:         c.Name,
		Category:     c.Category,
		LeadPrice:    c.LeadPrice,
		DailyLeadCap: c.DailyLeadCap,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
	if c.Description.Valid {
		resp.Description = c.Description.String
	}
	if c.PausedReason.Valid {
		resp.PausedReason = c.PausedReason.String
	}
	if c.PausedAt.Valid {
		resp.PausedAt = c.PausedAt.Time.Format(time.RFC3339)
	}
	return resp
}
