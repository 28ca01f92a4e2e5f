package deposit

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents deposit lifecycle status
type Status string

const (
	StatusActive    Status = "active"
	StatusDepleted  Status = "depleted"
	StatusSuspended Status = "suspended"
)

// TxType defines supported ledger transaction types.
type TxType string

const (
	TxTypeInitial     TxType = "initial"
	TxTypeRecharge    TxType = "recharge"
	TxTypeReservation TxType = "reservation"
	TxTypeDeduction   TxType = "deduction"
	TxTypeRelease     TxType = "release"
	TxTypeAdjustment  TxType = "adjustment"
)

// MinInitialAmount is the smallest accepted opening deposit.
var MinInitialAmount = decimal.NewFromInt(2000)

// MinAutoRechargeAmount is the smallest accepted auto-recharge amount.
var MinAutoRechargeAmount = decimal.NewFromInt(1000)

// DefaultAlertThreshold is applied when a merchant does not configure one.
var DefaultAlertThreshold = decimal.NewFromInt(500)

// Deposit is one prepaid balance, optionally scoped to a campaign.
type Deposit struct {
	ID                 uuid.UUID           `db:"id" json:"id"`
	MerchantID         uuid.UUID           `db:"merchant_id" json:"merchant_id"`
	CampaignID         uuid.NullUUID       `db:"campaign_id" json:"campaign_id,omitempty"`
	InitialAmount      decimal.Decimal     `db:"initial_amount" json:"initial_amount"`
	CurrentBalance     decimal.Decimal     `db:"current_balance" json:"current_balance"`
	ReservedAmount     decimal.Decimal     `db:"reserved_amount" json:"reserved_amount"`
	AlertThreshold     decimal.Decimal     `db:"alert_threshold" json:"alert_threshold"`
	AutoRecharge       bool                `db:"auto_recharge" json:"auto_recharge"`
	AutoRechargeAmount decimal.NullDecimal `db:"auto_recharge_amount" json:"auto_recharge_amount,omitempty"`
	Status             Status              `db:"status" json:"status"`
	LastAlertSent      sql.NullTime        `db:"last_alert_sent" json:"last_alert_sent,omitempty"`
	CreatedAt          time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `db:"updated_at" json:"updated_at"`
	DepletedAt         sql.NullTime        `db:"depleted_at" json:"depleted_at,omitempty"`
}

// AvailableBalance is the portion of the balance not earmarked for pending leads.
func (d *Deposit) AvailableBalance() decimal.Decimal {
	return d.CurrentBalance.Sub(d.ReservedAmount)
}

// Transaction is an append-only ledger row, one per balance mutation.
// Rows are immutable once written; balance_after of row N equals
// balance_before of the deposit's next row, so the log replays to the
// current balance exactly.
type Transaction struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	DepositID        uuid.UUID       `db:"deposit_id" json:"deposit_id"`
	MerchantID       uuid.UUID       `db:"merchant_id" json:"merchant_id"`
	TransactionType  TxType          `db:"transaction_type" json:"transaction_type"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	BalanceBefore    decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter     decimal.Decimal `db:"balance_after" json:"balance_after"`
	Description      string          `db:"description" json:"description"`
	PaymentMethod    sql.NullString  `db:"payment_method" json:"payment_method,omitempty"`
	PaymentReference sql.NullString  `db:"payment_reference" json:"payment_reference,omitempty"`
	CreatedBy        uuid.NullUUID   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// BalanceView is the merchant-facing balance snapshot. Absence of an active
// deposit is a valid state: HasDeposit=false, IsDepleted=true.
type BalanceView struct {
	HasDeposit       bool            `json:"has_deposit"`
	DepositID        uuid.UUID       `json:"deposit_id,omitempty"`
	InitialAmount    decimal.Decimal `json:"initial_amount"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	ReservedAmount   decimal.Decimal `json:"reserved_amount"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	AlertThreshold   decimal.Decimal `json:"alert_threshold"`
	Tier             Tier            `json:"tier"`
	IsLow            bool            `json:"is_low"`
	IsCritical       bool            `json:"is_critical"`
	IsDepleted       bool            `json:"is_depleted"`
	AutoRecharge     bool            `json:"auto_recharge"`
	Status           Status          `json:"status,omitempty"`
}

// Stats aggregates a merchant's deposits and ledger activity.
type Stats struct {
	TotalDeposits       int             `json:"total_deposits"`
	ActiveDeposits      int             `json:"active_deposits"`
	DepletedDeposits    int             `json:"depleted_deposits"`
	TotalDeposited      decimal.Decimal `json:"total_deposited"`
	TotalCurrentBalance decimal.Decimal `json:"total_current_balance"`
	TotalReserved       decimal.Decimal `json:"total_reserved"`
	TotalAvailable      decimal.Decimal `json:"total_available"`
	TotalSpent          decimal.Decimal `json:"total_spent"`
	TotalRecharged      decimal.Decimal `json:"total_recharged"`
	TotalTransactions   int             `json:"total_transactions"`
}

// HistoryFilters narrows transaction log queries.
type HistoryFilters struct {
	DepositID *uuid.UUID
	TxType    *TxType
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}
