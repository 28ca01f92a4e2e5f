package lead

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, l *Lead) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (
			id, campaign_id, merchant_id, deposit_id, contact_name, contact_phone,
			contact_email, source, notes, commission_amount, estimated_value,
			status, expires_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, l.ID, l.CampaignID, l.MerchantID, l.DepositID, l.ContactName, l.ContactPhone,
		l.ContactEmail, l.Source, l.Notes, l.CommissionAmount, l.EstimatedValue,
		l.Status, l.ExpiresAt, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert lead", ErrInternal)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, leadID uuid.UUID) (*Lead, error) {
	var l Lead
	err := r.db.GetContext(ctx, &l, `SELECT * FROM leads WHERE id = $1`, leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("%w: get lead", ErrInternal)
	}
	return &l, nil
}

// ListFilters narrows ListByMerchant.
type ListFilters struct {
	CampaignID *uuid.UUID
	Status     *Status
	Limit      int
	Offset     int
}

func (r *Repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, filters ListFilters) ([]*Lead, error) {
	query := `SELECT * FROM leads WHERE merchant_id = $1`
	args := []interface{}{merchantID}
	idx := 2

	if filters.CampaignID != nil {
		query += fmt.Sprintf(" AND campaign_id = $%d", idx)
		args = append(args, *filters.CampaignID)
		idx++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *filters.Status)
		idx++
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filters.Offset)

	leads := make([]*Lead, 0)
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list leads", ErrInternal)
	}
	return leads, nil
}

// transition moves a lead between statuses with a WHERE guard on the current
// status, so concurrent settlements cannot double-apply.
func (r *Repository) transition(ctx context.Context, leadID uuid.UUID, from, to Status, set string, args ...interface{}) error {
	query := fmt.Sprintf(`
		UPDATE leads SET status = '%s', updated_at = now()%s
		WHERE id = $1 AND status = '%s'
	`, to, set, from)

	res, err := r.db.ExecContext(ctx, query, append([]interface{}{leadID}, args...)...)
	if err != nil {
		return fmt.Errorf("%w: transition lead", ErrInternal)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *Repository) MarkValidated(ctx context.Context, leadID uuid.UUID) error {
	return r.transition(ctx, leadID, StatusPending, StatusValidated, ", validated_at = now()")
}

func (r *Repository) MarkRejected(ctx context.Context, leadID uuid.UUID, reason string) error {
	return r.transition(ctx, leadID, StatusPending, StatusRejected, ", rejected_at = now(), reject_reason = $2", reason)
}

func (r *Repository) MarkLost(ctx context.Context, leadID uuid.UUID) error {
	return r.transition(ctx, leadID, StatusPending, StatusLost, "")
}

func (r *Repository) MarkConverted(ctx context.Context, leadID uuid.UUID) error {
	return r.transition(ctx, leadID, StatusValidated, StatusConverted, "")
}

// ListExpired returns pending leads whose validation window has closed.
func (r *Repository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*Lead, error) {
	if limit <= 0 {
		limit = 500
	}

	leads := make([]*Lead, 0)
	err := r.db.SelectContext(ctx, &leads, `
		SELECT * FROM leads
		WHERE status = 'pending' AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list expired leads", ErrInternal)
	}
	return leads, nil
}

// Stats aggregates the merchant's lead funnel in one query.
func (r *Repository) Stats(ctx context.Context, merchantID uuid.UUID) (*Stats, error) {
	var row struct {
		Total           int                 `db:"total"`
		Pending         int                 `db:"pending"`
		Validated       int                 `db:"validated"`
		Rejected        int                 `db:"rejected"`
		Lost            int                 `db:"lost"`
		Converted       int                 `db:"converted"`
		TotalCommission decimal.NullDecimal `db:"total_commission"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'validated') AS validated,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
			COUNT(*) FILTER (WHERE status = 'lost') AS lost,
			COUNT(*) FILTER (WHERE status = 'converted') AS converted,
			SUM(commission_amount) FILTER (WHERE status IN ('validated', 'converted')) AS total_commission
		FROM leads WHERE merchant_id = $1
	`, merchantID)
	if err != nil {
		return nil, fmt.Errorf("%w: lead stats", ErrInternal)
	}

	stats := &Stats{
		Total:           row.Total,
		Pending:         row.Pending,
		Validated:       row.Validated,
		Rejected:        row.Rejected,
		Lost:            row.Lost,
		Converted:       row.Converted,
		TotalCommission: decimal.Zero,
	}
	if row.TotalCommission.Valid {
		stats.TotalCommission = row.TotalCommission.Decimal
	}
	settled := row.Validated + row.Converted
	if settled+row.Rejected+row.Lost > 0 {
		stats.ConversionRate = float64(settled) / float64(settled+row.Rejected+row.Lost)
	}
	return stats, nil
}

// CountToday returns leads routed to the campaign since midnight UTC, for
// the daily cap.
func (r *Repository) CountToday(ctx context.Context, campaignID uuid.UUID, now time.Time) (int, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM leads WHERE campaign_id = $1 AND created_at >= $2
	`, campaignID, midnight)
	if err != nil {
		return 0, fmt.Errorf("%w: count leads", ErrInternal)
	}
	return count, nil
}
