package notification

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SQLDirectory resolves merchant contacts from the merchants table.
type SQLDirectory struct {
	db *sqlx.DB
}

func NewSQLDirectory(db *sqlx.DB) *SQLDirectory {
	return &SQLDirectory{db: db}
}

func (d *SQLDirectory) Contact(ctx context.Context, merchantID uuid.UUID) (*MerchantContact, error) {
	var row struct {
		Email        string         `db:"email"`
		CompanyName  string         `db:"company_name"`
		Phone        sql.NullString `db:"phone"`
		DeviceTokens pq.StringArray `db:"device_tokens"`
	}
	err := d.db.GetContext(ctx, &row, `
		SELECT email, company_name, phone, device_tokens
		FROM merchants WHERE id = $1
	`, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("merchant not found")
		}
		return nil, err
	}

	contact := &MerchantContact{
		Email:        row.Email,
		Name:         row.CompanyName,
		DeviceTokens: []string(row.DeviceTokens),
	}
	if row.Phone.Valid {
		contact.Phone = row.Phone.String
	}
	return contact, nil
}
