package store

import (
	"fmt"
	"sync"

	"github.com/nathanyu/account-transfer/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountStore is the in-memory source of truth for account records.
//
// Two separate synchronization concerns live here and must not be merged:
// the RWMutex protects the map structure for concurrent create/get, while
// each entry carries its own mutex serializing balance updates for that
// account. Transfers on disjoint account pairs proceed in parallel.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*entry
}

type entry struct {
	lock sync.Mutex
	acc  *domain.Account
}

// Handle is a live reference to a stored account and its lock, valid for
// the duration of one transfer. Accounts are never deleted in normal
// operation, so a handle does not go stale.
type Handle struct {
	entry *entry
}

// Account returns the mutable record behind the handle. Callers must hold
// the handle's lock before touching the balance.
func (h *Handle) Account() *domain.Account {
	return h.entry.acc
}

// NewAccountStore creates an empty store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*entry)}
}

// Create inserts a new account. The existence check and the insert are one
// operation under the map lock: two concurrent creates of the same id
// yield exactly one success.
func (s *AccountStore) Create(acc domain.Account) error {
	if err := acc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acc.ID]; exists {
		return fmt.Errorf("account id %s: %w", acc.ID, domain.ErrDuplicateAccount)
	}

	s.accounts[acc.ID] = &entry{acc: &acc}
	return nil
}

// Get returns a snapshot copy of the account, or a NotFoundError.
func (s *AccountStore) Get(id string) (domain.Account, error) {
	s.mu.RLock()
	e, ok := s.accounts[id]
	s.mu.RUnlock()
	if !ok {
		return domain.Account{}, &domain.NotFoundError{AccountID: id}
	}

	e.lock.Lock()
	snapshot := *e.acc
	e.lock.Unlock()
	return snapshot, nil
}

// Acquire returns a live handle for the account, for use inside a transfer
// critical section. The handle is not locked yet; use LockPair.
func (s *AccountStore) Acquire(id string) (*Handle, error) {
	s.mu.RLock()
	e, ok := s.accounts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, &domain.NotFoundError{AccountID: id}
	}
	return &Handle{entry: e}, nil
}

// Update writes the balance back for an existing account. The caller must
// already hold that account's lock; only the map read-lock is taken here.
func (s *AccountStore) Update(acc domain.Account) error {
	s.mu.RLock()
	e, ok := s.accounts[acc.ID]
	s.mu.RUnlock()
	if !ok {
		return &domain.NotFoundError{AccountID: acc.ID}
	}

	e.acc.Balance = acc.Balance
	return nil
}

// Clear removes all accounts. Test isolation only.
func (s *AccountStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[string]*entry)
}

// Len returns the number of accounts.
func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// TotalBalance returns the sum over all accounts. Balances are read under
// each account's lock; the total is not a point-in-time snapshot across
// concurrent transfers, which is fine for metrics.
func (s *AccountStore) TotalBalance() decimal.Decimal {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.accounts))
	for _, e := range s.accounts {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	total := decimal.Zero
	for _, e := range entries {
		e.lock.Lock()
		total = total.Add(e.acc.Balance)
		e.lock.Unlock()
	}
	return total
}

// All returns snapshot copies of every account.
func (s *AccountStore) All() []domain.Account {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.accounts))
	for _, e := range s.accounts {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]domain.Account, 0, len(entries))
	for _, e := range entries {
		e.lock.Lock()
		out = append(out, *e.acc)
		e.lock.Unlock()
	}
	return out
}

// LockPair acquires both account locks in lexicographic id order regardless
// of argument position, so that opposite-direction transfers between the
// same pair can never deadlock. The returned func releases both locks.
//
// Account ids are unique, so two distinct handles can never compare equal;
// a collision means the ordering key is broken and we fail loudly instead
// of falling back to a third lock.
func LockPair(a, b *Handle) (unlock func()) {
	idA, idB := a.entry.acc.ID, b.entry.acc.ID
	if idA == idB {
		panic(fmt.Sprintf("store: lock ordering collision for account %s", idA))
	}

	first, second := a.entry, b.entry
	if idA > idB {
		first, second = b.entry, a.entry
	}

	first.lock.Lock()
	second.lock.Lock()
	return func() {
		second.lock.Unlock()
		first.lock.Unlock()
	}
}
