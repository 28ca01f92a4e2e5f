package lead

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents lead lifecycle state
type Status string

const (
	StatusPending   Status = "pending"   // Routed, funds reserved, awaiting validation
	StatusValidated Status = "validated" // Confirmed genuine, commission charged
	StatusRejected  Status = "rejected"  // Not genuine, funds released
	StatusLost      Status = "lost"      // Validation window expired, funds released
	StatusConverted Status = "converted" // Validated lead became a customer
)

// ValidationWindow is how long a pending lead can wait before it is written
// off as lost and its reservation returned.
const ValidationWindow = 72 * time.Hour

// Lead is a prospect routed to a merchant's campaign. Its commission is
// reserved on the deposit while pending and settled on validation.
type Lead struct {
	ID               uuid.UUID           `db:"id" json:"id"`
	CampaignID       uuid.UUID           `db:"campaign_id" json:"campaign_id"`
	MerchantID       uuid.UUID           `db:"merchant_id" json:"merchant_id"`
	DepositID        uuid.UUID           `db:"deposit_id" json:"deposit_id"`
	ContactName      string              `db:"contact_name" json:"contact_name"`
	ContactPhone     sql.NullString      `db:"contact_phone" json:"-"`
	ContactEmail     sql.NullString      `db:"contact_email" json:"-"`
	Source           string              `db:"source" json:"source"`
	Notes            sql.NullString      `db:"notes" json:"-"`
	CommissionAmount decimal.Decimal     `db:"commission_amount" json:"commission_amount"`
	EstimatedValue   decimal.NullDecimal `db:"estimated_value" json:"-"`
	Status           Status              `db:"status" json:"status"`
	RejectReason     sql.NullString      `db:"reject_reason" json:"-"`
	ValidatedAt      sql.NullTime        `db:"validated_at" json:"-"`
	RejectedAt       sql.NullTime        `db:"rejected_at" json:"-"`
	ExpiresAt        time.Time           `db:"expires_at" json:"expires_at"`
	CreatedAt        time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updated_at"`
}

// Stats aggregates a merchant's lead funnel.
type Stats struct {
	Total           int             `json:"total"`
	Pending         int             `json:"pending"`
	Validated       int             `json:"validated"`
	Rejected        int             `json:"rejected"`
	Lost            int             `json:"lost"`
	Converted       int             `json:"converted"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	ConversionRate  float64         `json:"conversion_rate"`
}
