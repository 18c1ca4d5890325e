package domain

import "github.com/shopspring/decimal"

// Account is a named balance holder. The ID is immutable after creation;
// the balance is only ever mutated under the account's own lock, which is
// owned by the store.
type Account struct {
	ID      string          `json:"account_id"`
	Balance decimal.Decimal `json:"balance"`
}

// Validate checks the invariants required at creation time.
func (a Account) Validate() error {
	if a.ID == "" {
		return ErrEmptyAccountID
	}
	if a.Balance.IsNegative() {
		return ErrNegativeBalance
	}
	return nil
}
