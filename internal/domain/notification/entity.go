package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Type represents notification type
type Type string

const (
	TypeLowBalance      Type = "low_balance"      // Merchant: deposit crossed an alert tier
	TypeDepositDepleted Type = "deposit_depleted" // Merchant: deposit hit zero
	TypeAutoRecharge    Type = "auto_recharge"    // Merchant: automatic top-up applied
	TypeCampaignPaused  Type = "campaign_paused"  // Merchant: campaign stopped
	TypeLeadReceived    Type = "lead_received"    // Merchant: new lead routed
	TypeLeadValidated   Type = "lead_validated"   // Merchant: lead validated, commission charged
	TypeLeadRejected    Type = "lead_rejected"    // Merchant: lead rejected, funds released
)

// Level represents notification severity
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Notification represents a merchant notification
type Notification struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	MerchantID uuid.UUID       `db:"merchant_id" json:"merchant_id"`
	Type       Type            `db:"type" json:"type"`
	Level      Level           `db:"level" json:"level"`
	Title      string          `db:"title" json:"title"`
	Message    sql.NullString  `db:"message" json:"message,omitempty"`
	Data       json.RawMessage `db:"data" json:"data,omitempty"`
	Channels   pq.StringArray  `db:"channels" json:"channels"`
	IsRead     bool            `db:"is_read" json:"is_read"`
	ReadAt     sql.NullTime    `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// NotificationData for linking to entities
type NotificationData struct {
	DepositID      *uuid.UUID `json:"deposit_id,omitempty"`
	CampaignID     *uuid.UUID `json:"campaign_id,omitempty"`
	LeadID         *uuid.UUID `json:"lead_id,omitempty"`
	Tier           string     `json:"tier,omitempty"`
	CurrentBalance string     `json:"current_balance,omitempty"`
	Amount         string     `json:"amount,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *NotificationData) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}

// GetData decodes data from JSON
func (n *Notification) GetData() *NotificationData {
	if n.Data == nil {
		return &NotificationData{}
	}
	var data NotificationData
	_ = json.Unmarshal(n.Data, &data)
	return &data
}
