package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines notification data access
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Notification, error)
	CountUnread(ctx context.Context, merchantID uuid.UUID) (int, error)
	MarkAsRead(ctx context.Context, id, merchantID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, merchantID uuid.UUID) error
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates notification repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (id, merchant_id, type, level, title, message, data, channels, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.MerchantID,
		n.Type,
		n.Level,
		n.Title,
		n.Message,
		n.Data,
		n.Channels,
		n.IsRead,
		n.CreatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	query := `SELECT * FROM notifications WHERE id = $1`
	var n Notification
	err := r.db.GetContext(ctx, &n, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	notifications := make([]*Notification, 0)
	err := r.db.SelectContext(ctx, &notifications, query, merchantID, limit, offset)
	return notifications, err
}

func (r *repository) CountUnread(ctx context.Context, merchantID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE merchant_id = $1 AND NOT is_read`
	var count int
	err := r.db.GetContext(ctx, &count, query, merchantID)
	return count, err
}

func (r *repository) MarkAsRead(ctx context.Context, id, merchantID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, read_at = NOW() WHERE id = $1 AND merchant_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, merchantID)
	return err
}

func (r *repository) MarkAllAsRead(ctx context.Context, merchantID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, read_at = NOW() WHERE merchant_id = $1 AND NOT is_read`
	_, err := r.db.ExecContext(ctx, query, merchantID)
	return err
}

// DeleteOlderThan removes all notifications older than the specified duration
func (r *repository) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	query := `DELETE FROM notifications WHERE created_at < $1`
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
