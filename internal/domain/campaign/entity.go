package campaign

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents campaign lifecycle state
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusArchived Status = "archived"
)

// Campaign is a merchant's lead-buying campaign. Leads route to a campaign
// and draw on its deposit; a depleted deposit pauses the campaign.
type Campaign struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	MerchantID    uuid.UUID       `db:"merchant_id" json:"merchant_id"`
	Name          string          `db:"name" json:"name"`
	Description   sql.NullString  `db:"description" json:"-"`
	Category      string          `db:"category" json:"category"`
	LeadPrice     decimal.Decimal `db:"lead_price" json:"lead_price"`
	DailyLeadCap  int             `db:"daily_lead_cap" json:"daily_lead_cap"`
	Status        Status          `db:"status" json:"status"`
	PausedReason  sql.NullString  `db:"paused_reason" json:"-"`
	PausedAt      sql.NullTime    `db:"paused_at" json:"-"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
