package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines payment data access
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetByInvID(ctx context.Context, invID int64) (*Payment, error)
	NextInvID(ctx context.Context) (int64, error)
	MarkCompleted(ctx context.Context, invID int64, rawCallback []byte) (bool, error)
	MarkFailed(ctx context.Context, invID int64) error
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Payment, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (id, merchant_id, deposit_id, inv_id, amount, currency, status, provider, description, raw_init_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.MerchantID,
		p.DepositID,
		p.InvID,
		p.Amount,
		p.Currency,
		p.Status,
		p.Provider,
		p.Description,
		p.RawInitPayload,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT * FROM payments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

func (r *repository) GetByInvID(ctx context.Context, invID int64) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT * FROM payments WHERE inv_id = $1`, invID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by inv_id: %w", err)
	}
	return &p, nil
}

// NextInvID generates the next gateway invoice ID from a database sequence.
func (r *repository) NextInvID(ctx context.Context) (int64, error) {
	var invID int64
	err := r.db.QueryRowContext(ctx, `SELECT nextval('payment_invoice_seq')`).Scan(&invID)
	if err != nil {
		return 0, fmt.Errorf("failed to generate invoice id: %w", err)
	}
	return invID, nil
}

// MarkCompleted settles a pending invoice. Returns false when the invoice
// was not pending, so a duplicate callback is a no-op.
func (r *repository) MarkCompleted(ctx context.Context, invID int64, rawCallback []byte) (bool, error) {
	query := `
		UPDATE payments
		SET status = 'completed', raw_callback_payload = $2, paid_at = NOW(), updated_at = NOW()
		WHERE inv_id = $1 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, invID, rawCallback)
	if err != nil {
		return false, fmt.Errorf("failed to complete payment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *repository) MarkFailed(ctx context.Context, invID int64) error {
	query := `
		UPDATE payments
		SET status = 'failed', failed_at = NOW(), updated_at = NOW()
		WHERE inv_id = $1 AND status = 'pending'
	`
	_, err := r.db.ExecContext(ctx, query, invID)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return nil
}

func (r *repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	payments := []*Payment{}
	err := r.db.SelectContext(ctx, &payments, query, merchantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
