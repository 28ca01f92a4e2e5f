package merchant

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Role represents account role
type Role string

const (
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// IsValidRole checks role value
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleMerchant, RoleAdmin:
		return true
	}
	return false
}

// Merchant is a company account that funds deposits and buys leads.
type Merchant struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Role         Role           `db:"role" json:"role"`
	CompanyName  string         `db:"company_name" json:"company_name"`
	ContactName  sql.NullString `db:"contact_name" json:"contact_name,omitempty"`
	Phone        sql.NullString `db:"phone" json:"phone,omitempty"`
	DeviceTokens pq.StringArray `db:"device_tokens" json:"-"`
	IsSuspended  bool           `db:"is_suspended" json:"is_suspended"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
