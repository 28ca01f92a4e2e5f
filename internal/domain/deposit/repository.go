package deposit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const queryTimeout = 3 * time.Second

// Repository provides deposit and ledger storage. Every balance mutation
// locks the deposit row (FOR UPDATE) and writes its ledger entry in the same
// database transaction, so the log and the balance can never diverge.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, d *Deposit, paymentMethod, paymentReference string, createdBy uuid.NullUUID) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx2, `
		INSERT INTO company_deposits (
			id, merchant_id, campaign_id, initial_amount, current_balance,
			reserved_amount, alert_threshold, auto_recharge, auto_recharge_amount,
			status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, d.ID, d.MerchantID, d.CampaignID, d.InitialAmount, d.CurrentBalance,
		d.ReservedAmount, d.AlertThreshold, d.AutoRecharge, d.AutoRechargeAmount,
		d.Status, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert deposit", ErrInternal)
	}

	entry := ledgerEntry{
		txType:           TxTypeInitial,
		amount:           d.InitialAmount,
		balanceBefore:    decimal.Zero,
		balanceAfter:     d.InitialAmount,
		description:      "Initial deposit",
		paymentMethod:    paymentMethod,
		paymentReference: paymentReference,
		createdBy:        createdBy,
	}
	if err := r.insertLedger(ctx2, tx, d.ID, d.MerchantID, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx", ErrInternal)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, depositID, merchantID uuid.UUID) (*Deposit, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var d Deposit
	err := r.db.GetContext(ctx2, &d, `
		SELECT * FROM company_deposits WHERE id = $1 AND merchant_id = $2
	`, depositID, merchantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, fmt.Errorf("%w: get deposit", ErrInternal)
	}
	return &d, nil
}

// GetActive returns the most recently created active deposit for the
// merchant (and campaign, when given). That deposit is authoritative for new
// reservations.
func (r *Repository) GetActive(ctx context.Context, merchantID uuid.UUID, campaignID *uuid.UUID) (*Deposit, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT * FROM company_deposits WHERE merchant_id = $1 AND status = 'active'`
	args := []interface{}{merchantID}
	if campaignID != nil {
		query += ` AND campaign_id = $2`
		args = append(args, *campaignID)
	}
	query += ` ORDER BY created_at DESC LIMIT 1`

	var d Deposit
	err := r.db.GetContext(ctx2, &d, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, fmt.Errorf("%w: get active deposit", ErrInternal)
	}
	return &d, nil
}

func (r *Repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, status *Status) ([]*Deposit, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT * FROM company_deposits WHERE merchant_id = $1`
	args := []interface{}{merchantID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	deposits := make([]*Deposit, 0)
	if err := r.db.SelectContext(ctx2, &deposits, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list deposits", ErrInternal)
	}
	return deposits, nil
}

// ListActive returns every active deposit, for the alert sweep.
func (r *Repository) ListActive(ctx context.Context) ([]*Deposit, error) {
	deposits := make([]*Deposit, 0)
	err := r.db.SelectContext(ctx, &deposits, `
		SELECT * FROM company_deposits WHERE status = 'active' ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list active deposits", ErrInternal)
	}
	return deposits, nil
}

// ledgerEntry carries one pending ledger row through apply.
type ledgerEntry struct {
	txType           TxType
	amount           decimal.Decimal
	balanceBefore    decimal.Decimal
	balanceAfter     decimal.Decimal
	description      string
	paymentMethod    string
	paymentReference string
	createdBy        uuid.NullUUID
}

// Recharge credits the balance and reactivates a depleted deposit. Replays
// of the same payment reference are detected inside the transaction and
// acknowledged without double-crediting.
func (r *Repository) Recharge(ctx context.Context, depositID, merchantID uuid.UUID, amount decimal.Decimal, paymentMethod, paymentReference string, createdBy uuid.NullUUID) (*Deposit, error) {
	if _, err := r.GetByID(ctx, depositID, merchantID); err != nil {
		return nil, err
	}

	return r.apply(ctx, depositID, TxTypeRecharge, paymentReference, amount, func(tx *sqlx.Tx, d *Deposit) (*ledgerEntry, error) {
		newBalance := d.CurrentBalance.Add(amount)
		_, err := tx.ExecContext(ctx, `
			UPDATE company_deposits
			SET current_balance = $2, status = 'active', depleted_at = NULL, updated_at = now()
			WHERE id = $1
		`, d.ID, newBalance)
		if err != nil {
			return nil, fmt.Errorf("%w: update balance", ErrInternal)
		}

		return &ledgerEntry{
			txType:           TxTypeRecharge,
			amount:           amount,
			balanceBefore:    d.CurrentBalance,
			balanceAfter:     newBalance,
			description:      "Deposit recharge via " + paymentMethod,
			paymentMethod:    paymentMethod,
			paymentReference: paymentReference,
			createdBy:        createdBy,
		}, nil
	})
}

// Reserve earmarks funds for a pending lead. Only the reserved pool moves;
// the balance snapshots in the ledger row stay equal.
func (r *Repository) Reserve(ctx context.Context, depositID uuid.UUID, amount decimal.Decimal, reference string) (*Deposit, error) {
	return r.apply(ctx, depositID, TxTypeReservation, reference, amount, func(tx *sqlx.Tx, d *Deposit) (*ledgerEntry, error) {
		if d.Status != StatusActive {
			return nil, ErrDepositNotActive
		}
		if amount.GreaterThan(d.AvailableBalance()) {
			return nil, ErrInsufficientFunds
		}

		newReserved := d.ReservedAmount.Add(amount)
		_, err := tx.ExecContext(ctx, `
			UPDATE company_deposits SET reserved_amount = $2, updated_at = now() WHERE id = $1
		`, d.ID, newReserved)
		if err != nil {
			return nil, fmt.Errorf("%w: update reserved", ErrInternal)
		}

		return &ledgerEntry{
			txType:           TxTypeReservation,
			amount:           amount,
			balanceBefore:    d.CurrentBalance,
			balanceAfter:     d.CurrentBalance,
			description:      "Funds reserved for pending lead",
			paymentReference: reference,
		}, nil
	})
}

// Commit deducts a previously reserved amount from both pools. When the
// balance hits zero the deposit transitions to depleted in the same
// transaction, never by a later read-then-write.
func (r *Repository) Commit(ctx context.Context, depositID uuid.UUID, amount decimal.Decimal, reference string, createdBy uuid.NullUUID) (*Deposit, error) {
	return r.apply(ctx, depositID, TxTypeDeduction, reference, amount.Neg(), func(tx *sqlx.Tx, d *Deposit) (*ledgerEntry, error) {
		if amount.GreaterThan(d.ReservedAmount) {
			return nil, ErrReservationExceeded
		}

		newBalance := d.CurrentBalance.Sub(amount)
		newReserved := d.ReservedAmount.Sub(amount)
		if newBalance.Sign() < 0 {
			return nil, ErrReservationExceeded
		}

		if newBalance.Sign() == 0 {
			_, err := tx.ExecContext(ctx, `
				UPDATE company_deposits
				SET current_balance = $2, reserved_amount = $3,
				    status = 'depleted', depleted_at = now(), updated_at = now()
				WHERE id = $1
			`, d.ID, newBalance, newReserved)
			if err != nil {
				return nil, fmt.Errorf("%w: update balance", ErrInternal)
			}
		} else {
			_, err := tx.ExecContext(ctx, `
				UPDATE company_deposits
				SET current_balance = $2, reserved_amount = $3, updated_at = now()
				WHERE id = $1
			`, d.ID, newBalance, newReserved)
			if err != nil {
				return nil, fmt.Errorf("%w: update balance", ErrInternal)
			}
		}

		return &ledgerEntry{
			txType:           TxTypeDeduction,
			amount:           amount.Neg(),
			balanceBefore:    d.CurrentBalance,
			balanceAfter:     newBalance,
			description:      "Commission deducted for validated lead",
			paymentReference: reference,
			createdBy:        createdBy,
		}, nil
	})
}

// Release returns reserved funds to the available pool on lead rejection or
// expiry. Replaying the same reference is a no-op.
func (r *Repository) Release(ctx context.Context, depositID uuid.UUID, amount decimal.Decimal, reference string) (*Deposit, error) {
	return r.apply(ctx, depositID, TxTypeRelease, reference, amount, func(tx *sqlx.Tx, d *Deposit) (*ledgerEntry, error) {
		if amount.GreaterThan(d.ReservedAmount) {
			return nil, ErrReservationExceeded
		}

		newReserved := d.ReservedAmount.Sub(amount)
		_, err := tx.ExecContext(ctx, `
			UPDATE company_deposits SET reserved_amount = $2, updated_at = now() WHERE id = $1
		`, d.ID, newReserved)
		if err != nil {
			return nil, fmt.Errorf("%w: update reserved", ErrInternal)
		}

		return &ledgerEntry{
			txType:           TxTypeRelease,
			amount:           amount,
			balanceBefore:    d.CurrentBalance,
			balanceAfter:     d.CurrentBalance,
			description:      "Reserved funds released",
			paymentReference: reference,
		}, nil
	})
}

// Suspend stops a deposit without touching the balance and leaves a
// zero-amount adjustment in the ledger for the audit trail.
func (r *Repository) Suspend(ctx context.Context, depositID, merchantID uuid.UUID, reason string, createdBy uuid.NullUUID) (*Deposit, error) {
	if _, err := r.GetByID(ctx, depositID, merchantID); err != nil {
		return nil, err
	}

	return r.apply(ctx, depositID, TxTypeAdjustment, "", decimal.Zero, func(tx *sqlx.Tx, d *Deposit) (*ledgerEntry, error) {
		_, err := tx.ExecContext(ctx, `
			UPDATE company_deposits SET status = 'suspended', updated_at = now() WHERE id = $1
		`, d.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: suspend deposit", ErrInternal)
		}

		desc := "Deposit suspended"
		if reason != "" {
			desc += ": " + reason
		}
		return &ledgerEntry{
			txType:        TxTypeAdjustment,
			amount:        decimal.Zero,
			balanceBefore: d.CurrentBalance,
			balanceAfter:  d.CurrentBalance,
			description:   desc,
			createdBy:     createdBy,
		}, nil
	})
}

// MarkDepleted flags a deposit whose balance already reached zero.
// Idempotent: the commit path usually gets there first.
func (r *Repository) MarkDepleted(ctx context.Context, depositID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE company_deposits
		SET status = 'depleted', depleted_at = COALESCE(depleted_at, now()), updated_at = now()
		WHERE id = $1 AND current_balance <= 0 AND status = 'active'
	`, depositID)
	if err != nil {
		return fmt.Errorf("%w: mark depleted", ErrInternal)
	}
	return nil
}

// TouchLastAlertSent records an alert dispatch for cooldown tracking. A
// benign race here yields at most one duplicate alert, which is accepted.
func (r *Repository) TouchLastAlertSent(ctx context.Context, depositID uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE company_deposits SET last_alert_sent = $2, updated_at = now() WHERE id = $1
	`, depositID, at)
	if err != nil {
		return fmt.Errorf("%w: touch last alert", ErrInternal)
	}
	return nil
}

func (r *Repository) UpdateAlertThreshold(ctx context.Context, depositID, merchantID uuid.UUID, threshold decimal.Decimal) (*Deposit, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx2, `
		UPDATE company_deposits SET alert_threshold = $3, updated_at = now()
		WHERE id = $1 AND merchant_id = $2
	`, depositID, merchantID, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: update alert threshold", ErrInternal)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, ErrDepositNotFound
	}
	return r.GetByID(ctx, depositID, merchantID)
}

func (r *Repository) ConfigureAutoRecharge(ctx context.Context, depositID, merchantID uuid.UUID, enabled bool, amount decimal.NullDecimal) (*Deposit, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx2, `
		UPDATE company_deposits SET auto_recharge = $3, auto_recharge_amount = $4, updated_at = now()
		WHERE id = $1 AND merchant_id = $2
	`, depositID, merchantID, enabled, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: configure auto recharge", ErrInternal)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, ErrDepositNotFound
	}
	return r.GetByID(ctx, depositID, merchantID)
}

// ListTransactions returns the merchant's ledger, newest first.
func (r *Repository) ListTransactions(ctx context.Context, merchantID uuid.UUID, filters HistoryFilters) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	base := `
		SELECT id, deposit_id, merchant_id, transaction_type, amount,
		       balance_before, balance_after, description, payment_method,
		       payment_reference, created_by, created_at
		FROM deposit_transactions
		WHERE merchant_id = $1`
	args := []interface{}{merchantID}
	idx := 2

	if filters.DepositID != nil {
		base += fmt.Sprintf(" AND deposit_id = $%d", idx)
		args = append(args, *filters.DepositID)
		idx++
	}
	if filters.TxType != nil && *filters.TxType != "" {
		base += fmt.Sprintf(" AND transaction_type = $%d", idx)
		args = append(args, *filters.TxType)
		idx++
	}
	if filters.DateFrom != nil {
		base += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filters.DateFrom)
		idx++
	}
	if filters.DateTo != nil {
		base += fmt.Sprintf(" AND created_at <= $%d", idx)
		args = append(args, *filters.DateTo)
		idx++
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}
	base = strings.TrimSpace(base) + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filters.Offset)

	transactions := make([]Transaction, 0)
	if err := r.db.SelectContext(ctx2, &transactions, base, args...); err != nil {
		return nil, fmt.Errorf("%w: list transactions", ErrInternal)
	}
	return transactions, nil
}

// ListTransactionsByDeposit returns a deposit's full log in write order, for
// audit replay.
func (r *Repository) ListTransactionsByDeposit(ctx context.Context, depositID uuid.UUID) ([]Transaction, error) {
	transactions := make([]Transaction, 0)
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, deposit_id, merchant_id, transaction_type, amount,
		       balance_before, balance_after, description, payment_method,
		       payment_reference, created_by, created_at
		FROM deposit_transactions
		WHERE deposit_id = $1
		ORDER BY created_at, id
	`, depositID)
	if err != nil {
		return nil, fmt.Errorf("%w: list deposit transactions", ErrInternal)
	}
	return transactions, nil
}

// SumDeductionsSince totals deduction volume after the cutoff, for burn-rate
// forecasting.
func (r *Repository) SumDeductionsSince(ctx context.Context, depositID uuid.UUID, since time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.GetContext(ctx, &total, `
		SELECT SUM(ABS(amount)) FROM deposit_transactions
		WHERE deposit_id = $1 AND transaction_type = 'deduction' AND created_at >= $2
	`, depositID, since)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: sum deductions", ErrInternal)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// apply runs one balance mutation under a FOR UPDATE row lock. The row lock
// serializes writers per deposit, so the reference pre-check sees every
// committed ledger entry before mutate runs: a replayed reference with the
// same signed amount is acknowledged with the current state, a different
// amount is a conflict. The mutate callback performs the balance update and
// describes the ledger row; apply commits both as a unit.
func (r *Repository) apply(ctx context.Context, depositID uuid.UUID, txType TxType, reference string, amount decimal.Decimal, mutate func(tx *sqlx.Tx, d *Deposit) (*ledgerEntry, error)) (*Deposit, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	d, err := r.lockDeposit(ctx2, tx, depositID)
	if err != nil {
		return nil, err
	}

	if reference != "" {
		existing, found, err := r.getTransactionByRef(ctx2, tx, depositID, txType, reference)
		if err != nil {
			return nil, err
		}
		if found {
			if !existing.Amount.Equal(amount) {
				return nil, ErrReferenceConflict
			}
			// Replay of an already-applied mutation: report current state.
			return d, nil
		}
	}

	entry, err := mutate(tx, d)
	if err != nil {
		return nil, err
	}

	if err := r.insertLedger(ctx2, tx, d.ID, d.MerchantID, *entry); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			// The aborted transaction can serve no more queries; re-check
			// against the committed log.
			tx.Rollback()
			existing, found, checkErr := r.getTransactionByRef(ctx2, r.db, depositID, txType, reference)
			if checkErr != nil {
				return nil, checkErr
			}
			if !found || !existing.Amount.Equal(amount) {
				return nil, ErrReferenceConflict
			}
			return r.getAnyByID(ctx2, depositID)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit tx", ErrInternal)
	}

	updated := *d
	updated.CurrentBalance = entry.balanceAfter
	switch entry.txType {
	case TxTypeReservation:
		updated.ReservedAmount = d.ReservedAmount.Add(entry.amount)
	case TxTypeDeduction:
		updated.ReservedAmount = d.ReservedAmount.Sub(entry.amount.Abs())
		if updated.CurrentBalance.Sign() == 0 {
			updated.Status = StatusDepleted
		}
	case TxTypeRelease:
		updated.ReservedAmount = d.ReservedAmount.Sub(entry.amount)
	case TxTypeRecharge:
		updated.Status = StatusActive
	case TxTypeAdjustment:
		updated.Status = StatusSuspended
	}
	return &updated, nil
}

func (r *Repository) lockDeposit(ctx context.Context, tx *sqlx.Tx, depositID uuid.UUID) (*Deposit, error) {
	var d Deposit
	err := tx.GetContext(ctx, &d, `SELECT * FROM company_deposits WHERE id = $1 FOR UPDATE`, depositID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, fmt.Errorf("%w: lock deposit row", ErrInternal)
	}
	return &d, nil
}

func (r *Repository) getAnyByID(ctx context.Context, depositID uuid.UUID) (*Deposit, error) {
	var d Deposit
	err := r.db.GetContext(ctx, &d, `SELECT * FROM company_deposits WHERE id = $1`, depositID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepositNotFound
		}
		return nil, fmt.Errorf("%w: get deposit", ErrInternal)
	}
	return &d, nil
}

func (r *Repository) getTransactionByRef(ctx context.Context, q sqlx.QueryerContext, depositID uuid.UUID, txType TxType, reference string) (*Transaction, bool, error) {
	if reference == "" {
		return nil, false, nil
	}

	var t Transaction
	err := sqlx.GetContext(ctx, q, &t, `
		SELECT id, deposit_id, merchant_id, transaction_type, amount,
		       balance_before, balance_after, description, payment_method,
		       payment_reference, created_by, created_at
		FROM deposit_transactions
		WHERE deposit_id = $1 AND transaction_type = $2 AND payment_reference = $3
		LIMIT 1
	`, depositID, string(txType), reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: check reference", ErrInternal)
	}
	return &t, true, nil
}

func (r *Repository) insertLedger(ctx context.Context, tx *sqlx.Tx, depositID, merchantID uuid.UUID, e ledgerEntry) error {
	var method, reference interface{}
	if e.paymentMethod != "" {
		method = e.paymentMethod
	}
	if e.paymentReference != "" {
		reference = e.paymentReference
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO deposit_transactions (
			id, deposit_id, merchant_id, transaction_type, amount,
			balance_before, balance_after, description, payment_method,
			payment_reference, created_by
		)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, depositID, merchantID, string(e.txType), e.amount,
		e.balanceBefore, e.balanceAfter, e.description, method, reference, e.createdBy)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return fmt.Errorf("%w: insert transaction", ErrInternal)
	}
	return nil
}
