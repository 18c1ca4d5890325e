package domain

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to the boundary layer. The handler maps these to
// HTTP statuses; the engine and store never retry or swallow them.
var (
	ErrDuplicateAccount    = errors.New("account id already exists")
	ErrAccountNotFound     = errors.New("account not found")
	ErrSameAccountTransfer = errors.New("cannot transfer to the same account")
	ErrInvalidAmount       = errors.New("amount to transfer must be positive")
	ErrOverdraft           = errors.New("insufficient funds")
	ErrEmptyAccountID      = errors.New("account id must not be empty")
	ErrNegativeBalance     = errors.New("initial balance must not be negative")
)

// Sides of a transfer, used to tag lookup failures.
const (
	SideFrom = "from"
	SideTo   = "to"
)

// NotFoundError reports a missing account, optionally naming which side of
// a transfer referenced it. It matches ErrAccountNotFound under errors.Is.
type NotFoundError struct {
	AccountID string
	Side      string
}

func (e *NotFoundError) Error() string {
	if e.Side != "" {
		return fmt.Sprintf("%s account %s not found", e.Side, e.AccountID)
	}
	return fmt.Sprintf("account %s not found", e.AccountID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// WithSide returns a copy tagged with the transfer side that referenced
// the missing account.
func (e *NotFoundError) WithSide(side string) *NotFoundError {
	return &NotFoundError{AccountID: e.AccountID, Side: side}
}
