package payment

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents payment status
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Provider represents payment provider
type Provider string

const (
	ProviderRobokassa Provider = "robokassa"
	ProviderManual    Provider = "manual"
)

// JSONRawMessage handles NULL json fields from DB
type JSONRawMessage []byte

func (j *JSONRawMessage) Scan(src any) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", src)
	}
	return nil
}

func (j JSONRawMessage) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// Payment represents one deposit recharge attempt through the gateway.
// The invoice ID is the gateway-side order identifier; once the gateway
// confirms it, the amount lands on the deposit ledger with the invoice as
// the payment reference.
type Payment struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	MerchantID         uuid.UUID       `db:"merchant_id" json:"merchant_id"`
	DepositID          uuid.UUID       `db:"deposit_id" json:"deposit_id"`
	InvID              int64           `db:"inv_id" json:"inv_id"`
	Amount             decimal.Decimal `db:"amount" json:"amount"`
	Currency           string          `db:"currency" json:"currency"`
	Status             Status          `db:"status" json:"status"`
	Provider           Provider        `db:"provider" json:"provider"`
	Description        sql.NullString  `db:"description" json:"description,omitempty"`
	RawInitPayload     JSONRawMessage  `db:"raw_init_payload" json:"-"`
	RawCallbackPayload JSONRawMessage  `db:"raw_callback_payload" json:"-"`
	PaidAt             sql.NullTime    `db:"paid_at" json:"paid_at,omitempty"`
	FailedAt           sql.NullTime    `db:"failed_at" json:"failed_at,omitempty"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// IsPaid reports whether the payment already settled.
func (p *Payment) IsPaid() bool {
	return p.Status == StatusCompleted
}

// Reference is the ledger payment reference for this invoice.
func (p *Payment) Reference() string {
	return fmt.Sprintf("robokassa:%d", p.InvID)
}
