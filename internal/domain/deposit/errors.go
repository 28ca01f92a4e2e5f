package deposit

import "errors"

var (
	// ErrMinimumDeposit is returned when the opening amount is below the minimum
	ErrMinimumDeposit = errors.New("initial amount below minimum deposit")

	// ErrInvalidAmount is returned when an amount is zero or negative
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInvalidThreshold is returned when an alert threshold is negative
	ErrInvalidThreshold = errors.New("alert threshold must not be negative")

	// ErrMinimumAutoRecharge is returned when the auto-recharge amount is below the minimum
	ErrMinimumAutoRecharge = errors.New("auto-recharge amount below minimum")

	// ErrDepositNotFound is returned when no deposit matches the (id, merchant) pair
	ErrDepositNotFound = errors.New("deposit not found")

	// ErrDepositNotActive is returned when mutating a suspended deposit
	ErrDepositNotActive = errors.New("deposit is not active")

	// ErrInsufficientFunds is returned when a reservation exceeds the available balance
	ErrInsufficientFunds = errors.New("insufficient available balance")

	// ErrReservationExceeded signals a caller bug: committing or releasing more
	// than is currently reserved. Never clamped silently.
	ErrReservationExceeded = errors.New("amount exceeds reserved funds")

	// ErrDuplicateReference is returned when a payment reference was already applied
	ErrDuplicateReference = errors.New("payment reference already applied")

	// ErrReferenceConflict is returned when a reference replay carries a different amount
	ErrReferenceConflict = errors.New("payment reference conflicts with a different amount")

	ErrInternal = errors.New("internal error")
)
