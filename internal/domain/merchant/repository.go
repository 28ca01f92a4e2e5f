package merchant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository handles merchant persistence.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates merchant repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, m *Merchant) error {
	query := `
		INSERT INTO merchants (id, email, password_hash, role, company_name, contact_name, phone, device_tokens, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.Email,
		m.PasswordHash,
		m.Role,
		m.CompanyName,
		m.ContactName,
		m.Phone,
		pq.StringArray(m.DeviceTokens),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create merchant: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Merchant, error) {
	var m Merchant
	err := r.db.GetContext(ctx, &m, `SELECT * FROM merchants WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &m, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Merchant, error) {
	var m Merchant
	err := r.db.GetContext(ctx, &m, `SELECT * FROM merchants WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant by email: %w", err)
	}
	return &m, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, companyName string, contactName, phone sql.NullString) error {
	query := `
		UPDATE merchants
		SET company_name = $2, contact_name = $3, phone = $4, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, companyName, contactName, phone)
	if err != nil {
		return fmt.Errorf("failed to update merchant: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrMerchantNotFound
	}
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE merchants SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// AddDeviceToken registers a push token, deduplicated in SQL.
func (r *Repository) AddDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `
		UPDATE merchants
		SET device_tokens = array_append(device_tokens, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(device_tokens))
	`
	_, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("failed to add device token: %w", err)
	}
	return nil
}

func (r *Repository) RemoveDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `
		UPDATE merchants
		SET device_tokens = array_remove(device_tokens, $2), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("failed to remove device token: %w", err)
	}
	return nil
}
