package models

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents the lifecycle status of an account
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "active"
	AccountStatusSuspended   AccountStatus = "suspended"
	AccountStatusDeactivated AccountStatus = "deactivated"
)

// Account represents a customer account whose balance is bounded by its product cap
type Account struct {
	CreatedOn      time.Time     `db:"created_on"`
	LastModifiedOn time.Time     `db:"last_modified_on"`
	ExpiresAt      *time.Time    `db:"expires_at"`
	LastModifiedBy *uuid.UUID    `db:"last_modified_by"`
	AccountNumber  string        `db:"account_number"`
	Status         AccountStatus `db:"status"`
	Product        Product
	BalanceCents   int64     `db:"balance_cents"`
	ID             uuid.UUID `db:"id"`
	OwnerID        uuid.UUID `db:"owner_id"`
}

// IsActive reports whether the account may take part in transactions.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Headroom is how much can still be credited before the product cap is reached.
func (a *Account) Headroom() int64 {
	return a.Product.MaximumAmountCents - a.BalanceCents
}

// CanCredit reports whether crediting amount keeps the balance within the product cap.
// It compares against the headroom so that very large amounts cannot overflow.
func (a *Account) CanCredit(amount int64) bool {
	return amount <= a.Headroom()
}

// CanDebit reports whether debiting amount keeps the balance non-negative.
func (a *Account) CanDebit(amount int64) bool {
	return amount <= a.BalanceCents
}
