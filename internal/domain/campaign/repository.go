package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *Campaign) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (
			id, merchant_id, name, description, category, lead_price,
			daily_lead_cap, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.MerchantID, c.Name, c.Description, c.Category, c.LeadPrice,
		c.DailyLeadCap, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert campaign", ErrInternal)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, campaignID uuid.UUID) (*Campaign, error) {
	var c Campaign
	err := r.db.GetContext(ctx, &c, `SELECT * FROM campaigns WHERE id = $1`, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("%w: get campaign", ErrInternal)
	}
	return &c, nil
}

func (r *Repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, status *Status) ([]*Campaign, error) {
	query := `SELECT * FROM campaigns WHERE merchant_id = $1`
	args := []interface{}{merchantID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	campaigns := make([]*Campaign, 0)
	if err := r.db.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list campaigns", ErrInternal)
	}
	return campaigns, nil
}

// Pause stops an active campaign. Idempotent: pausing an already-paused
// campaign changes nothing.
func (r *Repository) Pause(ctx context.Context, campaignID uuid.UUID, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET status = 'paused', paused_reason = $2, paused_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'active'
	`, campaignID, reason)
	if err != nil {
		return fmt.Errorf("%w: pause campaign", ErrInternal)
	}
	return nil
}

// Resume reactivates a paused campaign. Idempotent.
func (r *Repository) Resume(ctx context.Context, campaignID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET status = 'active', paused_reason = NULL, paused_at = NULL, updated_at = now()
		WHERE id = $1 AND status = 'paused'
	`, campaignID)
	if err != nil {
		return fmt.Errorf("%w: resume campaign", ErrInternal)
	}
	return nil
}

// ResumeByMerchant reactivates every campaign the given merchant paused for
// the given reason. Used after a recharge revives a depleted deposit.
func (r *Repository) ResumeByMerchant(ctx context.Context, merchantID uuid.UUID, reason string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		SET status = 'active', paused_reason = NULL, paused_at = NULL, updated_at = now()
		WHERE merchant_id = $1 AND status = 'paused' AND paused_reason = $2
	`, merchantID, reason)
	if err != nil {
		return 0, fmt.Errorf("%w: resume campaigns", ErrInternal)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

func (r *Repository) Archive(ctx context.Context, campaignID, merchantID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns SET status = 'archived', updated_at = now()
		WHERE id = $1 AND merchant_id = $2
	`, campaignID, merchantID)
	if err != nil {
		return fmt.Errorf("%w: archive campaign", ErrInternal)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrCampaignNotFound
	}
	return nil
}
