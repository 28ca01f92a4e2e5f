package lead

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitLeadRequest routes a new lead into a campaign.
type SubmitLeadRequest struct {
	CampaignID     string `json:"campaign_id" validate:"required,uuid"`
	ContactName    string `json:"contact_name" validate:"required,min=2,max=200"`
	ContactPhone   string `json:"contact_phone,omitempty" validate:"omitempty,max=30"`
	ContactEmail   string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Source         string `json:"source" validate:"required,max=100"`
	Notes          string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	EstimatedValue string `json:"estimated_value,omitempty"`
}

// RejectLeadRequest writes off a pending lead.
type RejectLeadRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// LeadResponse is the API shape of a lead.
type LeadResponse struct {
	ID               uuid.UUID       `json:"id"`
	CampaignID       uuid.UUID       `json:"campaign_id"`
	ContactName      string          `json:"contact_name"`
	ContactPhone     string          `json:"contact_phone,omitempty"`
	ContactEmail     string          `json:"contact_email,omitempty"`
	Source           string          `json:"source"`
	Notes            string          `json:"notes,omitempty"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	EstimatedValue   string          `json:"estimated_value,omitempty"`
	Status           Status          `json:"status"`
	RejectReason     string          `json:"reject_reason,omitempty"`
	ExpiresAt        string          `json:"expires_at"`
	CreatedAt        string          `json:"created_at"`
}

// ToResponse converts entity to response
func ToResponse(l *Lead) *LeadResponse {
	resp := &LeadResponse{
		ID:               l.ID,
		CampaignID:       l.CampaignID,
		ContactName:      l.ContactName,
		Source:           l.Source,
		CommissionAmount: l.CommissionAmount,
		Status:           l.Status,
		ExpiresAt:        l.ExpiresAt.Format(time.RFC3339),
		CreatedAt:        l.CreatedAt.Format(time.RFC3339),
	}
	if l.ContactPhone.Valid {
		resp.ContactPhone = l.ContactPhone.String
	}
	if l.ContactEmail.Valid {
		resp.ContactEmail = l.ContactEmail.String
	}
	if l.Notes.Valid {
		resp.Notes = l.Notes.String
	}
	if l.EstimatedValue.Valid {
		resp.EstimatedValue = l.EstimatedValue.Decimal.String()
	}
	if l.RejectReason.Valid {
		resp.RejectReason = l.RejectReason.String
	}
	return resp
}
