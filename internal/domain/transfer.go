package domain

import "github.com/shopspring/decimal"

// Transfer is an immutable request to move an amount between two accounts.
// TransferID is assigned at the boundary for log/journal correlation; the
// engine generates one when it is empty. It carries no idempotency
// semantics.
type Transfer struct {
	TransferID  string          `json:"transfer_id"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
}

// Validate applies the request-level rules: distinct accounts and a
// strictly positive amount. Account existence is checked by the engine.
func (t Transfer) Validate() error {
	if t.FromAccount == t.ToAccount {
		return ErrSameAccountTransfer
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
